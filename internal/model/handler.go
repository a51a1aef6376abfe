package model

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Brownie44l1/vision-api/internal/artifact"
	"github.com/Brownie44l1/vision-api/internal/imaging"
	"github.com/Brownie44l1/vision-api/internal/labels"
)

// State is the lifecycle position of a Handler.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateLoaded
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "UNINITIALIZED"
	case StateLoading:
		return "LOADING"
	case StateLoaded:
		return "LOADED"
	case StateLoadFailed:
		return "LOAD_FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	DefaultInputName  = "input"
	DefaultOutputName = "output"
)

// Options configures a Handler.
type Options struct {
	Variant   Variant
	ModelPath string

	InputName  string
	OutputName string

	// MaxPixels bounds the declared size of uploaded images; zero uses
	// imaging.DefaultMaxPixels.
	MaxPixels int64

	// Labels is ignored for binary variants, which use their fixed pair.
	Labels *labels.Store

	Open   Opener
	Source artifact.Source
	Logger *zap.Logger
}

// Handler owns the loaded model for the lifetime of the process. All
// fields are written during NewHandler only, so a Handler is safe for
// concurrent use.
type Handler struct {
	variant    Variant
	modelPath  string
	inputName  string
	outputName string
	maxPixels  int64
	labels     *labels.Store
	logger     *zap.Logger

	state   State
	origin  string
	session Session
	loadErr error
}

// NewHandler loads the model, from the cache path first and from
// opts.Source when the cache is missing or unusable. A failed load leaves
// the handler in StateLoadFailed; it never returns an error.
func NewHandler(ctx context.Context, opts Options) *Handler {
	h := &Handler{
		variant:    opts.Variant,
		modelPath:  opts.ModelPath,
		inputName:  opts.InputName,
		outputName: opts.OutputName,
		maxPixels:  opts.MaxPixels,
		labels:     opts.Labels,
		logger:     opts.Logger,
		state:      StateUninitialized,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	h.logger = h.logger.Named("model")
	if h.inputName == "" {
		h.inputName = DefaultInputName
	}
	if h.outputName == "" {
		h.outputName = DefaultOutputName
	}
	if h.variant.Kind == KindBinary || h.labels == nil {
		if len(h.variant.Labels) > 0 {
			h.labels = labels.New(h.variant.Labels...)
		} else {
			h.labels = labels.New(h.variant.Fallback.Names()...)
		}
	}

	h.state = StateLoading
	if err := h.load(ctx, opts.Open, opts.Source); err != nil {
		h.state = StateLoadFailed
		h.loadErr = err
		h.logger.Error("model load failed", zap.String("path", h.modelPath), zap.Error(err))
		return h
	}
	h.state = StateLoaded

	h.logger.Info("model loaded",
		zap.String("variant", h.variant.Name),
		zap.String("path", h.modelPath),
		zap.String("source", h.origin),
		zap.Int("width", h.variant.InputWidth),
		zap.Int("height", h.variant.InputHeight),
		zap.Int("outputs", h.variant.Outputs),
		zap.String("preprocessing", string(h.variant.Preprocessing)))
	if h.variant.Kind == KindMultiClass && h.labels.Len() != h.variant.Outputs {
		h.logger.Warn("label count does not match model outputs",
			zap.Int("labels", h.labels.Len()),
			zap.Int("outputs", h.variant.Outputs))
	}
	return h
}

func (h *Handler) sessionSpec() SessionSpec {
	return SessionSpec{
		InputName:   h.inputName,
		OutputName:  h.outputName,
		InputShape:  imaging.BatchShape(h.variant.InputHeight, h.variant.InputWidth),
		OutputShape: []int64{1, int64(h.variant.Outputs)},
	}
}

func (h *Handler) load(ctx context.Context, open Opener, src artifact.Source) error {
	if open == nil {
		return &LoadError{Path: h.modelPath, CacheErr: errors.New("no model runtime configured")}
	}

	sess, cacheErr := h.openCached(open)
	if cacheErr == nil {
		h.session = sess
		h.origin = "cache"
		return nil
	}
	h.logger.Warn("cached model unavailable, fetching", zap.String("path", h.modelPath), zap.Error(cacheErr))

	if src == nil {
		return &LoadError{Path: h.modelPath, CacheErr: cacheErr, FetchErr: artifact.ErrNoSource}
	}
	if err := artifact.Fetch(ctx, src, h.modelPath); err != nil {
		return &LoadError{Path: h.modelPath, CacheErr: cacheErr, FetchErr: err}
	}
	sess, err := open(h.modelPath, h.sessionSpec())
	if err != nil {
		return &LoadError{Path: h.modelPath, CacheErr: cacheErr, FetchErr: fmt.Errorf("open fetched model: %w", err)}
	}
	h.session = sess
	h.origin = src.String()
	return nil
}

func (h *Handler) openCached(open Opener) (Session, error) {
	if h.modelPath == "" {
		return nil, errors.New("model path is empty")
	}
	if _, err := os.Stat(h.modelPath); err != nil {
		return nil, err
	}
	return open(h.modelPath, h.sessionSpec())
}

// IsModelLoaded reports whether Predict can run.
func (h *Handler) IsModelLoaded() bool {
	return h.state == StateLoaded
}

// State returns the lifecycle state.
func (h *Handler) State() State { return h.state }

// LoadErr returns the recorded load failure, if any.
func (h *Handler) LoadErr() error { return h.loadErr }

// Info always succeeds, including after a failed load.
func (h *Handler) Info() Info {
	info := Info{
		ModelLoaded:        h.IsModelLoaded(),
		State:              h.state.String(),
		ModelName:          h.variant.ModelName,
		ModelPath:          h.modelPath,
		Source:             h.origin,
		Variant:            h.variant.Name,
		InputSize:          [2]int{h.variant.InputHeight, h.variant.InputWidth},
		NumClasses:         h.labels.Len(),
		TotalClasses:       h.labels.Len(),
		Classes:            h.labels.Names(),
		ClassificationType: string(h.variant.Kind),
		Preprocessing:      string(h.variant.Preprocessing),
		InputName:          h.inputName,
		OutputName:         h.outputName,
	}
	if h.variant.Kind == KindBinary {
		t := h.variant.Threshold
		info.Threshold = &t
	}
	if h.loadErr != nil {
		info.LoadError = h.loadErr.Error()
	}
	return info
}

// Predict classifies one encoded image. Decode failures are returned as
// *imaging.DecodeError and runtime failures as *InferenceError.
func (h *Handler) Predict(data []byte) (pred *Prediction, err error) {
	if !h.IsModelLoaded() {
		return nil, ErrModelNotLoaded
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("inference panicked", zap.Any("panic", r))
			pred, err = nil, &InferenceError{Err: fmt.Errorf("inference panicked: %v", r)}
		}
	}()

	t, err := imaging.PreprocessWithLimit(data, h.variant.InputWidth, h.variant.InputHeight, h.variant.Preprocessing, h.maxPixels)
	if err != nil {
		return nil, err
	}

	out, err := h.session.Run(t.Data)
	if err != nil {
		return nil, &InferenceError{Err: err}
	}
	if len(out) != h.variant.Outputs {
		return nil, &InferenceError{Err: fmt.Errorf("expected %d model outputs, got %d", h.variant.Outputs, len(out))}
	}

	if h.variant.Kind == KindBinary {
		pred = rankBinary(out[0], h.variant.Threshold, h.labels)
		pred.Model = h.variant.ModelName
		return pred, nil
	}
	return rankTopK(out, TopK, h.labels), nil
}

// Close releases the runtime session.
func (h *Handler) Close() error {
	if h.session == nil {
		return nil
	}
	return h.session.Close()
}
