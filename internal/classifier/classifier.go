package classifier

import "context"

// Prediction is one label emitted by an image classifier.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier labels a property image. Predictions are ordered best first.
type Classifier interface {
	Classify(ctx context.Context, image []byte) ([]Prediction, error)
	Name() string
}
