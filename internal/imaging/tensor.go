package imaging

// Channels is the number of color channels in every preprocessed tensor.
const Channels = 3

// Tensor is a float32 image in height, width, channel order.
type Tensor struct {
	Height   int
	Width    int
	Channels int
	Data     []float32
}

// NewTensor allocates a zeroed RGB tensor.
func NewTensor(height, width int) *Tensor {
	return &Tensor{
		Height:   height,
		Width:    width,
		Channels: Channels,
		Data:     make([]float32, height*width*Channels),
	}
}

// Shape returns (height, width, channels).
func (t *Tensor) Shape() []int64 {
	return []int64{int64(t.Height), int64(t.Width), int64(t.Channels)}
}

// BatchShape is the model input shape for one height x width image:
// (1, height, width, channels).
func BatchShape(height, width int) []int64 {
	return []int64{1, int64(height), int64(width), Channels}
}

// At returns the value at row y, column x, channel c.
func (t *Tensor) At(y, x, c int) float32 {
	return t.Data[(y*t.Width+x)*t.Channels+c]
}

func (t *Tensor) set(y, x int, mode Mode, r, g, b float32) {
	i := (y*t.Width + x) * t.Channels
	switch mode {
	case ModeVGG16:
		t.Data[i] = b - vggMeans[0]
		t.Data[i+1] = g - vggMeans[1]
		t.Data[i+2] = r - vggMeans[2]
	default:
		t.Data[i] = r / 255
		t.Data[i+1] = g / 255
		t.Data[i+2] = b / 255
	}
}
