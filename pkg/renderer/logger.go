package renderer

import (
	"fmt"

	"github.com/df07/go-vcm-tracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout.
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a logger that writes render progress to stdout.
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}
