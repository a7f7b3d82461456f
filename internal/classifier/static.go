package classifier

import "context"

// StaticClassifier returns fixed predictions, or a fixed error, for development and testing.
type StaticClassifier struct {
	Predictions []Prediction
	Err         error
}

func (s *StaticClassifier) Name() string { return "static" }

func (s *StaticClassifier) Classify(ctx context.Context, _ []byte) ([]Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]Prediction, len(s.Predictions))
	copy(out, s.Predictions)
	return out, nil
}
