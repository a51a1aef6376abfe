package model

// SessionSpec describes the tensors of a model with one input and one output.
type SessionSpec struct {
	InputName   string
	OutputName  string
	InputShape  []int64
	OutputShape []int64
}

// Session runs forward passes on a loaded model.
type Session interface {
	// Run evaluates the model once on a batch-of-one input and returns a
	// copy of the output values.
	Run(input []float32) ([]float32, error)
	Close() error
}

// Opener loads the model artifact at path.
type Opener func(path string, spec SessionSpec) (Session, error)
