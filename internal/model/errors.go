package model

import (
	"errors"
	"fmt"
)

// ErrModelNotLoaded is returned by Predict unless the model loaded.
var ErrModelNotLoaded = errors.New("model not loaded")

// LoadError records why neither the cached nor the remote artifact could
// be opened.
type LoadError struct {
	Path     string
	CacheErr error
	FetchErr error
}

func (e *LoadError) Error() string {
	if e.FetchErr == nil {
		return fmt.Sprintf("load model %s: %v", e.Path, e.CacheErr)
	}
	return fmt.Sprintf("load model %s: cache: %v; fetch: %v", e.Path, e.CacheErr, e.FetchErr)
}

func (e *LoadError) Unwrap() []error {
	var errs []error
	if e.CacheErr != nil {
		errs = append(errs, e.CacheErr)
	}
	if e.FetchErr != nil {
		errs = append(errs, e.FetchErr)
	}
	return errs
}

// InferenceError wraps a failed forward pass.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string { return e.Err.Error() }

func (e *InferenceError) Unwrap() error { return e.Err }
