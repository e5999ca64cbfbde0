package clean

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/nbaclean-cli/internal/stats"
)

var (
	// ErrConfig marks a dataset configuration that cannot be applied to the
	// input, such as a required column that is not present.
	ErrConfig = errors.New("configuration error")
	// ErrEmptyDistribution is returned when a fill statistic is requested
	// over a column with no values to compute it from.
	ErrEmptyDistribution = stats.ErrEmptyDistribution
)

// StageError reports which pipeline stage and column failed.
type StageError struct {
	Stage  string
	Column string
	Err    error
}

func (e *StageError) Error() string {
	if e == nil {
		return "stage error"
	}
	if e.Column != "" {
		return fmt.Sprintf("%s: column %q: %v", e.Stage, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap allows errors.Is and errors.As to see the cause.
func (e *StageError) Unwrap() error { return e.Err }

func configErr(stage, column, format string, args ...any) error {
	return &StageError{Stage: stage, Column: column, Err: fmt.Errorf("%w: "+format, append([]any{ErrConfig}, args...)...)}
}
