// Package predict suggests a category for a task from its title and
// description, either with a local keyword classifier or by asking an LLM
// provider's HTTP API.
package predict

import (
	"context"
	"errors"
	"fmt"

	"github.com/imkarma/taskboard/internal/config"
)

// ErrNoPrediction is returned when no category could be derived.
var ErrNoPrediction = errors.New("no category predicted")

// Predictor is the interface every category predictor implements.
type Predictor interface {
	// Predict returns a category for the task.
	Predict(ctx context.Context, title, description string) (string, error)

	// Name identifies the predictor in logs.
	Name() string
}

// New creates the predictor selected by cfg.Mode.
func New(cfg config.Predictor) (Predictor, error) {
	switch cfg.Mode {
	case "", "keyword":
		return NewKeyword(), nil
	case "api":
		return NewAPI(cfg)
	default:
		return nil, fmt.Errorf("unknown predictor mode %q (must be 'keyword' or 'api')", cfg.Mode)
	}
}
