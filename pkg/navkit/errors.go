package navkit

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrUnknownConfigKey indicates a config file contained keys navkit does
	// not recognise, usually a typo.
	ErrUnknownConfigKey = errors.New("unknown config key")
)

// InfrastructureError represents a framework-level error raised while
// setting navkit up (config unreadable, bridge options rejected). These are
// not navigation errors; the application usually cannot continue.
type InfrastructureError struct {
	Op  string // Operation that failed (e.g., "load_config", "create_router")
	Err error  // Underlying error
}

func (e *InfrastructureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("navkit: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("navkit: %s", e.Op)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

// NewInfrastructureError creates a new infrastructure error.
func NewInfrastructureError(op string, err error) *InfrastructureError {
	return &InfrastructureError{Op: op, Err: err}
}

// IsInfrastructureError checks if an error is an infrastructure error.
func IsInfrastructureError(err error) bool {
	var infraErr *InfrastructureError
	return errors.As(err, &infraErr)
}
