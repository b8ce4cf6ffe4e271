package errors

import (
	"errors"
	"fmt"
)

type InvalidStateError struct {
	msg string
}

func NewInvalidStateError(msg string) *InvalidStateError {
	return &InvalidStateError{msg: msg}
}

func (e *InvalidStateError) Error() string {
	return e.msg
}

type NilArgumentError struct {
	argument string
}

func NewNilArgumentError(argument string) *NilArgumentError {
	return &NilArgumentError{argument: argument}
}

func (e *NilArgumentError) Error() string {
	return fmt.Sprintf("argument '%s' must not be nil", e.argument)
}

// GatewayError wraps any failure of the persistence gateway: reads, writes and
// change feed subscriptions.
type GatewayError struct {
	Op  string
	Err error
}

func NewGatewayError(op string, err error) *GatewayError {
	return &GatewayError{Op: op, Err: err}
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func IsGatewayError(err error) bool {
	var gatewayErr *GatewayError
	return errors.As(err, &gatewayErr)
}

// WrapGateway wraps err into a GatewayError unless it already is one or it
// matches one of the domain errors in passthrough.
func WrapGateway(op string, err error, passthrough ...error) error {
	if err == nil || IsGatewayError(err) {
		return err
	}
	for _, target := range passthrough {
		if errors.Is(err, target) {
			return err
		}
	}
	return NewGatewayError(op, err)
}
