package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Mode selects the numeric transform applied after resizing.
type Mode string

const (
	// ModeRescale divides every channel value by 255.
	ModeRescale Mode = "rescale"
	// ModeVGG16 reorders channels to BGR and subtracts the ImageNet means,
	// matching Keras' "caffe" preprocessing used when VGG16 was trained.
	ModeVGG16 Mode = "vgg16"
)

// ImageNet channel means in BGR order.
var vggMeans = [3]float32{103.939, 116.779, 123.68}

// ParseMode validates a configured preprocessing name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeRescale, ModeVGG16:
		return m, nil
	default:
		return "", fmt.Errorf("unknown preprocessing mode %q", s)
	}
}

// DefaultMaxPixels is the largest width*height Decode accepts when no
// limit is configured.
const DefaultMaxPixels int64 = 178_956_970

var errNotImage = errors.New("content is not an image")

// ErrImageTooLarge is wrapped by the DecodeError returned for images whose
// declared dimensions exceed the pixel limit.
var ErrImageTooLarge = errors.New("image dimensions exceed the pixel limit")

// DecodeError reports bytes that could not be decoded into an image.
type DecodeError struct {
	MIME string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode image (%s): %v", e.MIME, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Preprocess decodes data, converts it to opaque RGB, stretches it to
// width x height and returns the transformed HWC tensor.
func Preprocess(data []byte, width, height int, mode Mode) (*Tensor, error) {
	return PreprocessWithLimit(data, width, height, mode, DefaultMaxPixels)
}

// PreprocessWithLimit is Preprocess with an explicit pixel limit; a
// non-positive maxPixels uses DefaultMaxPixels.
func PreprocessWithLimit(data []byte, width, height int, mode Mode, maxPixels int64) (*Tensor, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}

	img, err := Decode(data, maxPixels)
	if err != nil {
		return nil, err
	}

	resized := resize.Resize(uint(width), uint(height), toRGB(img), resize.Lanczos3)

	t := NewTensor(height, width)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			t.set(y, x, mode, float32(r>>8), float32(g>>8), float32(b>>8))
		}
	}
	return t, nil
}

// Decode sniffs and decodes raw image bytes. The header is read first so
// that images above maxPixels are rejected before any pixel is allocated.
func Decode(data []byte, maxPixels int64) (image.Image, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, &DecodeError{MIME: mime.String(), Err: errNotImage}
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{MIME: mime.String(), Err: err}
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > maxPixels {
		return nil, &DecodeError{
			MIME: mime.String(),
			Err:  fmt.Errorf("%w: %dx%d is more than %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels),
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{MIME: mime.String(), Err: err}
	}
	return img, nil
}

// toRGB drops alpha without compositing against a background.
func toRGB(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return dst
}
