package mapreduce

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by Run before any work starts.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidEmit is the panic value of EmitFunc on a nil key or value.
	ErrInvalidEmit = errors.New("invalid emit arguments")
)

// PanicError is a panic recovered from a map or reduce callback.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
