// Package genomic provides coordinate value types shared by the chain and BED code.
package genomic

import (
	"errors"
	"fmt"
)

// ErrInvalidStrand is returned when a strand token is neither "+" nor "-".
var ErrInvalidStrand = errors.New("invalid strand")

// Strand is the orientation of a sequence.
type Strand int8

const (
	Plus Strand = iota
	Minus
)

// ParseStrand parses a "+" or "-" strand token.
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return Plus, nil
	case "-":
		return Minus, nil
	}
	return Plus, fmt.Errorf("%w: %q", ErrInvalidStrand, s)
}

// String returns "+" or "-".
func (s Strand) String() string {
	if s == Minus {
		return "-"
	}
	return "+"
}
