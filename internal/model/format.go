package model

import (
	"fmt"
	"strconv"
	"strings"
)

var countSuffixes = []string{"", "K", "M", "B", "T"}

// FormatDuration returns seconds formatted as hh:mm:ss
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// CompactCount renders a counter with a magnitude suffix, e.g. 1234 -> "1.2K"
func CompactCount(value int64) string {
	if value < 0 {
		return "-" + CompactCount(-value)
	}
	digits := len(strconv.FormatInt(value, 10))
	k := (digits - 1) / 3
	if k >= len(countSuffixes) {
		k = len(countSuffixes) - 1
	}
	if k == 0 {
		return strconv.FormatInt(value, 10)
	}
	scaled := float64(value)
	for i := 0; i < k; i++ {
		scaled /= 1000
	}
	var s string
	if scaled < 10 {
		s = strings.TrimSuffix(strconv.FormatFloat(scaled, 'f', 1, 64), ".0")
	} else {
		s = strconv.FormatFloat(scaled, 'f', 0, 64)
	}
	return s + countSuffixes[k]
}
