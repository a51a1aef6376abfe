package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Brownie44l1/vision-api/internal/imaging"
	"github.com/Brownie44l1/vision-api/internal/labels"
)

// Kind is the shape of a model's output.
type Kind string

const (
	// KindBinary models emit one sigmoid value.
	KindBinary Kind = "binary"
	// KindMultiClass models emit one probability per class.
	KindMultiClass Kind = "multiclass"
)

// BinaryThreshold is the sigmoid value at or above which the positive class wins.
const BinaryThreshold = 0.5

// TopK bounds the ranked predictions returned for multi-class models.
const TopK = 5

// Variant is the fixed contract of one served model family.
type Variant struct {
	Name        string
	ModelName   string
	Kind        Kind
	InputWidth  int
	InputHeight int
	Outputs     int

	// Preprocessing is the default transform. When Required is set, no
	// other transform is accepted.
	Preprocessing imaging.Mode
	Required      bool

	// Labels is fixed for binary models; multi-class models read a label
	// file and fall back to placeholders.
	Labels   []string
	Fallback labels.Fallback

	Threshold float64
	RepoID    string
}

var variants = map[string]Variant{
	"binary": {
		Name:          "binary",
		ModelName:     "VGG16 Cat vs Dog Classifier",
		Kind:          KindBinary,
		InputWidth:    150,
		InputHeight:   150,
		Outputs:       1,
		Preprocessing: imaging.ModeVGG16,
		Required:      true,
		Labels:        []string{"Dog", "Cat"},
		Threshold:     BinaryThreshold,
		RepoID:        "carlosaguayo/cats_vs_dogs",
	},
	"fruits": {
		Name:          "fruits",
		ModelName:     "VGG16 Fruits Classifier",
		Kind:          KindMultiClass,
		InputWidth:    100,
		InputHeight:   100,
		Outputs:       131,
		Preprocessing: imaging.ModeVGG16,
		Required:      true,
		Fallback:      labels.Fallback{Prefix: "fruit", Count: 131},
	},
	"generic": {
		Name:          "generic",
		ModelName:     "Image Classifier",
		Kind:          KindMultiClass,
		InputWidth:    150,
		InputHeight:   150,
		Outputs:       10,
		Preprocessing: imaging.ModeRescale,
		Fallback:      labels.Fallback{Prefix: "class", Count: 10},
	},
}

// LookupVariant returns the catalogue entry for name.
func LookupVariant(name string) (Variant, error) {
	v, ok := variants[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Variant{}, fmt.Errorf("unknown model variant %q (known: %s)", name, strings.Join(VariantNames(), ", "))
	}
	v.Labels = append([]string(nil), v.Labels...)
	return v, nil
}

// VariantNames lists the catalogue in sorted order.
func VariantNames() []string {
	names := make([]string, 0, len(variants))
	for n := range variants {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// WithPreprocessing applies a configured transform. An empty value keeps
// the default; a value that contradicts a required pairing is rejected,
// since the mismatch would silently degrade accuracy.
func (v Variant) WithPreprocessing(configured string) (Variant, error) {
	if strings.TrimSpace(configured) == "" {
		return v, nil
	}
	mode, err := imaging.ParseMode(configured)
	if err != nil {
		return v, err
	}
	if v.Required && mode != v.Preprocessing {
		return v, fmt.Errorf("variant %q was trained with %q preprocessing, %q configured", v.Name, v.Preprocessing, mode)
	}
	v.Preprocessing = mode
	return v, nil
}

// WithInputSize overrides the spatial input size; zero keeps the default.
func (v Variant) WithInputSize(width, height int) (Variant, error) {
	if width < 0 || height < 0 {
		return v, fmt.Errorf("invalid input size %dx%d", width, height)
	}
	if width > 0 {
		v.InputWidth = width
	}
	if height > 0 {
		v.InputHeight = height
	}
	return v, nil
}

// WithOutputs overrides the multi-class output cardinality; zero keeps the
// default. Binary models always have one output.
func (v Variant) WithOutputs(n int) (Variant, error) {
	switch {
	case n < 0:
		return v, fmt.Errorf("invalid output count %d", n)
	case n == 0:
		return v, nil
	case v.Kind == KindBinary && n != 1:
		return v, fmt.Errorf("binary variant has exactly one output, %d configured", n)
	}
	v.Outputs = n
	if v.Kind == KindMultiClass {
		v.Fallback.Count = n
	}
	return v, nil
}
