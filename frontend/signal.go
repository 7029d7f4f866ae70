package frontend

import (
	"errors"
	"fmt"
)

// ErrScaleMismatch is returned when two signal strength readings use
// different scales. One tuner reports one scale throughout a scan, so a
// mismatch means readings from incompatible sources were mixed up.
var ErrScaleMismatch = errors.New("frontend: signal strength scales are not comparable")

// SignalScale is the unit a signal strength reading is expressed in, per
// the Linux fecap_scale_params enumeration.
type SignalScale uint8

const (
	// ScaleNotAvailable means the hardware could not produce a reading.
	ScaleNotAvailable SignalScale = iota
	// ScaleDecibel readings are in 0.001 dBm steps, typically negative.
	ScaleDecibel
	// ScaleRelative readings are on a hardware-defined 0..65535 scale.
	ScaleRelative
)

func (s SignalScale) String() string {
	switch s {
	case ScaleDecibel:
		return "decibel"
	case ScaleRelative:
		return "relative"
	}
	return "not available"
}

// SignalStrength is one reading of DTV_STAT_SIGNAL_STRENGTH. Only the
// value matching Scale is meaningful.
type SignalStrength struct {
	Scale    SignalScale
	Decibel  int64
	Relative uint64
}

// Compare orders two readings on the same scale: -1 when s is weaker than
// o, 0 when equal, +1 when stronger. Readings on different scales are not
// numerically comparable and yield ErrScaleMismatch.
func (s SignalStrength) Compare(o SignalStrength) (int, error) {
	if s.Scale != o.Scale {
		return 0, fmt.Errorf("%w: %s vs %s", ErrScaleMismatch, s.Scale, o.Scale)
	}
	switch s.Scale {
	case ScaleDecibel:
		return compare(s.Decibel, o.Decibel), nil
	case ScaleRelative:
		return compare(s.Relative, o.Relative), nil
	}
	return 0, nil
}

func (s SignalStrength) String() string {
	switch s.Scale {
	case ScaleDecibel:
		return fmt.Sprintf("%.3f dBm", float64(s.Decibel)/1000)
	case ScaleRelative:
		return fmt.Sprintf("%d/65535", s.Relative)
	}
	return "n/a"
}

func compare[T int64 | uint64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
