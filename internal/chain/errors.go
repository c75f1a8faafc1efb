package chain

import (
	"errors"
	"fmt"
)

// Parse error kinds. Every error returned by Parse wraps one of these.
var (
	ErrHeaderArity            = errors.New("invalid number of header fields")
	ErrMissingChainKeyword    = errors.New("header does not start with \"chain\"")
	ErrInvalidReferenceStrand = errors.New("reference strand must be +")
	ErrIntervalArity          = errors.New("invalid number of interval fields")
	ErrInvalidNumber          = errors.New("invalid number")
	ErrInconsistentChain      = errors.New("intervals do not match header span")
	ErrTruncatedChain         = errors.New("input ended inside a chain")
)

// ParseError is a chain file parse failure with line context.
type ParseError struct {
	Line    int   // 1-based
	Err     error // one of the Err* kinds, or genomic.ErrInvalidStrand
	Message string
}

func (e *ParseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chain parse error at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("chain parse error at line %d: %v: %s", e.Line, e.Err, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
