package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned if Log.AppName was not defined.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned if Log.ServiceName was not defined.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")
)

// writeFailureOutput receives events the configured writers rejected.
var writeFailureOutput io.Writer = os.Stderr //nolint:gochecknoglobals

// WriteFailed is installed as zerolog.ErrorHandler. A log line that cannot be
// written must not take a request down, so it is reported on stderr instead.
func WriteFailed(err error) {
	_, _ = fmt.Fprintf(writeFailureOutput, "goblogadmin: dropped log event: %v\n", err)
}
