// Package sketch estimates access frequencies for the admission filter.
package sketch

import (
	"errors"
	"fmt"
)

// Frequency is the estimator behind latency-aware admission. Implementations
// return small non-negative counts; precision requirements are loose since
// the admittor only compares products of frequency and benefit.
type Frequency interface {
	Increment(key uint64)
	Frequency(key uint64) uint32
	ReportMiss()
}

const (
	TypeCountMin = "count-min"
	TypePerfect  = "perfect"
)

var ErrUnknownType = errors.New("unknown sketch type")

// New builds the estimator named by sketchType, sized for the given cache
// capacity. The simulator refuses to start on an unknown type.
func New(sketchType string, capacity int) (Frequency, error) {
	switch sketchType {
	case TypeCountMin, "":
		return NewCountMin(capacity), nil
	case TypePerfect:
		return NewPerfect(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, sketchType)
	}
}
