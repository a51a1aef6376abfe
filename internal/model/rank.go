package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/Brownie44l1/vision-api/internal/labels"
)

func score(class string, confidence float64) ClassScore {
	return ClassScore{
		Class:       class,
		Confidence:  confidence,
		Probability: fmt.Sprintf("%.2f%%", confidence*100),
	}
}

// rankBinary maps a sigmoid output to the predicted class and its
// complement. names[0] is the negative class and names[1] the positive one.
func rankBinary(raw float32, threshold float64, names *labels.Store) *Prediction {
	r := float64(raw)
	switch {
	case math.IsNaN(r) || r < 0:
		r = 0
	case r > 1:
		r = 1
	}

	predicted, other := names.Name(0), names.Name(1)
	p := 1 - r
	if r >= threshold {
		predicted, other = other, predicted
		p = r
	}

	// p >= 0.5, so 1-p is exact and the pair sums to 1.
	top := score(predicted, p)
	return &Prediction{
		Predictions:   []ClassScore{top, score(other, 1-p)},
		TopPrediction: top,
		RawPrediction: &r,
	}
}

// rankTopK returns the k most confident classes, ties in output order.
func rankTopK(out []float32, k int, names *labels.Store) *Prediction {
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	val := func(i int) float64 {
		v := float64(out[i])
		if math.IsNaN(v) {
			return math.Inf(-1)
		}
		return v
	}
	sort.SliceStable(idx, func(a, b int) bool { return val(idx[a]) > val(idx[b]) })

	if k > len(idx) {
		k = len(idx)
	}
	scores := make([]ClassScore, k)
	for i := 0; i < k; i++ {
		c := float64(out[idx[i]])
		if math.IsNaN(c) {
			c = 0
		}
		scores[i] = score(names.Name(idx[i]), c)
	}

	p := &Prediction{Predictions: scores}
	if k > 0 {
		p.TopPrediction = scores[0]
	}
	return p
}
