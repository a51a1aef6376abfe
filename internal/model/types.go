package model

// ClassScore is one ranked entry of a prediction.
type ClassScore struct {
	Class       string  `json:"class"`
	Confidence  float64 `json:"confidence"`
	Probability string  `json:"probability"`
}

// Prediction is the outcome of one forward pass.
type Prediction struct {
	Predictions   []ClassScore `json:"predictions"`
	TopPrediction ClassScore   `json:"top_prediction"`

	// Set for binary models only.
	RawPrediction *float64 `json:"raw_prediction,omitempty"`
	Model         string   `json:"model,omitempty"`
}

// Info describes the handler for the model info endpoint.
type Info struct {
	ModelLoaded        bool     `json:"model_loaded"`
	State              string   `json:"state"`
	ModelName          string   `json:"model_name"`
	ModelPath          string   `json:"model_path"`
	Source             string   `json:"source,omitempty"`
	Variant            string   `json:"variant"`
	InputSize          [2]int   `json:"input_size"`
	NumClasses         int      `json:"num_classes"`
	TotalClasses       int      `json:"total_classes"`
	Classes            []string `json:"classes"`
	ClassificationType string   `json:"classification_type"`
	Preprocessing      string   `json:"preprocessing"`
	InputName          string   `json:"input_name"`
	OutputName         string   `json:"output_name"`
	Threshold          *float64 `json:"threshold,omitempty"`
	LoadError          string   `json:"load_error,omitempty"`
}
