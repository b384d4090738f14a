package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Ratio is a playback aspect-ratio preset
type Ratio string

const (
	Ratio16x9 Ratio = "16:9"
	Ratio21x9 Ratio = "21:9"
	Ratio4x3  Ratio = "4:3"
	Ratio9x16 Ratio = "9:16"
)

// DefaultRatio is used when a layout does not declare one
const DefaultRatio = Ratio16x9

// Ratios is the fixed cycle order used by the player
var Ratios = []Ratio{Ratio16x9, Ratio21x9, Ratio4x3, Ratio9x16}

// Number returns width divided by height
func (r Ratio) Number() float64 {
	w, h, ok := strings.Cut(string(r), ":")
	if !ok {
		return 0
	}
	fw, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return 0
	}
	fh, err := strconv.ParseFloat(h, 64)
	if err != nil || fh == 0 {
		return 0
	}
	return fw / fh
}

// Valid reports whether r is one of the enumerated presets
func (r Ratio) Valid() bool {
	return r.Index() >= 0
}

// Index returns the position of r in the cycle, or -1
func (r Ratio) Index() int {
	for i, c := range Ratios {
		if c == r {
			return i
		}
	}
	return -1
}

// ParseRatio validates a textual ratio such as "21:9"
func ParseRatio(s string) (Ratio, error) {
	r := Ratio(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("unknown aspect ratio: %q", s)
	}
	return r, nil
}

// VerticalScale returns the factor applied to a picture's height when switching
// from one ratio to another while keeping its width
func VerticalScale(from, to Ratio) float64 {
	f, t := from.Number(), to.Number()
	if f == 0 || t == 0 {
		return 1
	}
	return (1 / t) / (1 / f)
}
