package chain

import (
	"errors"
	"fmt"
)

var (
	// ErrBlockNotFound is returned when the node has no block for an ID
	ErrBlockNotFound = errors.New("block not found")

	// ErrReceiptNotFound is wrapped in a ChainError when the node has no receipt
	ErrReceiptNotFound = errors.New("receipt not found")
)

// ChainError reports a failed node call.
type ChainError struct {
	Op     string
	Target string
	Err    error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// NewChainError wraps err unless it already is a ChainError or ErrBlockNotFound.
func NewChainError(op, target string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ChainError
	if errors.As(err, &ce) || errors.Is(err, ErrBlockNotFound) {
		return err
	}
	return &ChainError{Op: op, Target: target, Err: err}
}
