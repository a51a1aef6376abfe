package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Brownie44l1/vision-api/internal/imaging"
	"github.com/Brownie44l1/vision-api/internal/metrics"
	"github.com/Brownie44l1/vision-api/internal/model"
)

const imageField = "image"

// DefaultMaxUploadBytes bounds the request body of /predict.
const DefaultMaxUploadBytes = 16 << 20

// Classifier is the model surface the HTTP layer needs.
type Classifier interface {
	IsModelLoaded() bool
	Info() model.Info
	Predict(data []byte) (*model.Prediction, error)
}

type Handler struct {
	classifier Classifier
	metrics    *metrics.Metrics
	logger     *zap.Logger
	maxUpload  int64
}

func NewHandler(classifier Classifier, m *metrics.Metrics, maxUpload int64, logger *zap.Logger) *Handler {
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		classifier: classifier,
		metrics:    m,
		logger:     logger.Named("handlers"),
		maxUpload:  maxUpload,
	}
}

// Register mounts the API routes.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/model/info", h.ModelInfo)
	r.POST("/predict", h.Predict)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": h.classifier.IsModelLoaded(),
	})
}

func (h *Handler) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.classifier.Info())
}

type predictResponse struct {
	Success bool `json:"success"`
	*model.Prediction
}

func errorBody(msg string) gin.H {
	return gin.H{"error": msg}
}

func (h *Handler) Predict(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	filename, data, err := readImage(c.Request)
	switch {
	case err == nil:
	case isTooLarge(err):
		c.JSON(http.StatusRequestEntityTooLarge, errorBody("File too large"))
		return
	case errors.Is(err, errEmptyFilename):
		c.JSON(http.StatusBadRequest, errorBody("No image file selected"))
		return
	case errors.Is(err, errReadUpload):
		h.internalError(c, "read upload", err)
		return
	default:
		h.logger.Debug("rejecting upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, errorBody("No image file provided"))
		return
	}

	start := time.Now()
	pred, err := h.classifier.Predict(data)
	elapsed := time.Since(start)
	if err != nil {
		h.observe(predictionOutcome(err), "", elapsed)
		if errors.Is(err, model.ErrModelNotLoaded) {
			c.JSON(http.StatusOK, errorBody("Model not loaded"))
			return
		}
		h.logger.Warn("prediction failed",
			zap.String("filename", filename),
			zap.Int("bytes", len(data)),
			zap.Error(err))
		c.JSON(http.StatusOK, errorBody("Prediction failed: "+err.Error()))
		return
	}

	h.observe(metrics.OutcomeSuccess, pred.TopPrediction.Class, elapsed)
	h.logger.Info("prediction",
		zap.String("filename", filename),
		zap.String("class", pred.TopPrediction.Class),
		zap.Float64("confidence", pred.TopPrediction.Confidence),
		zap.Duration("elapsed", elapsed))
	c.JSON(http.StatusOK, predictResponse{Success: true, Prediction: pred})
}

var (
	errNoImage       = errors.New("no image file part")
	errEmptyFilename = errors.New("image part has an empty filename")
	errReadUpload    = errors.New("read upload")
)

// readImage streams the multipart body and returns the first file part
// named image. A part is a file only when its Content-Disposition carries
// a filename parameter; text fields with the same name are skipped.
func readImage(r *http.Request) (string, []byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, err
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", nil, errNoImage
		}
		if err != nil {
			return "", nil, err
		}
		if part.FormName() != imageField {
			continue
		}
		_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
		if err != nil {
			continue
		}
		raw, isFile := params["filename"]
		if !isFile {
			continue
		}
		if strings.TrimSpace(raw) == "" {
			return "", nil, errEmptyFilename
		}

		data, err := io.ReadAll(part)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", errReadUpload, err)
		}
		return part.FileName(), data, nil
	}
}

func (h *Handler) internalError(c *gin.Context, op string, err error) {
	h.logger.Error(op, zap.Error(err))
	h.observe(metrics.OutcomeError, "", 0)
	c.JSON(http.StatusInternalServerError, errorBody("Internal server error"))
}

func (h *Handler) observe(outcome, class string, elapsed time.Duration) {
	if h.metrics != nil {
		h.metrics.ObservePrediction(outcome, class, elapsed.Seconds())
	}
}

func predictionOutcome(err error) string {
	var decodeErr *imaging.DecodeError
	switch {
	case errors.Is(err, model.ErrModelNotLoaded):
		return metrics.OutcomeNotLoaded
	case errors.As(err, &decodeErr):
		return metrics.OutcomeDecodeError
	default:
		return metrics.OutcomeError
	}
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}
