package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatText wraps text into a box of width by height world units. It tries
// text heights from maxTextHeight down and returns the first that fits
// without splitting ordinary words, together with that height.
func FormatText(text string, width, height, maxTextHeight float64) (string, float64) {
	if maxTextHeight <= 0 {
		maxTextHeight = DefaultMaxTextHeight
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return "", maxTextHeight
	}

	var (
		res      string
		resH     float64
		fallback string
		th       float64
	)
	for i := 0; i < textHeightSteps; i++ {
		th = maxTextHeight - textHeightStep*float64(i)
		if th <= 0 {
			break
		}
		rows, splits := wrapWords(words, width, th)
		fallback = strings.Join(rows, "\n")
		if th*float64(len(rows)) <= height {
			res, resH = fallback, th
			if splits == 0 {
				break
			}
		}
	}
	if res == "" {
		return fallback, th
	}
	return res, resH
}

// wrapWords packs words greedily into rows of a fixed cell budget. splits
// counts ordinary words that had to be broken.
func wrapWords(words []string, width, textHeight float64) ([]string, int) {
	budget := int(width / (textHeight * heightToWidth))
	if budget < 2 {
		budget = 2
	}

	var pieces []string
	splits := 0
	for _, w := range words {
		cells := runewidth.StringWidth(w)
		if cells <= budget {
			pieces = append(pieces, w)
			continue
		}
		if cells < longWordCells {
			splits++
		}
		pieces = append(pieces, hyphenate(w, budget)...)
	}

	var (
		rows []string
		row  []string
		used int
	)
	for _, p := range pieces {
		cells := runewidth.StringWidth(p)
		if len(row) > 0 && used+cells > budget {
			rows = append(rows, strings.Join(row, " "))
			row, used = nil, 0
		}
		row = append(row, p)
		used += cells
	}
	if len(row) > 0 {
		rows = append(rows, strings.Join(row, " "))
	}
	return rows, splits
}

// hyphenate breaks w into chunks of at most budget cells, each but the last
// ending with a hyphen
func hyphenate(w string, budget int) []string {
	var (
		out   []string
		b     strings.Builder
		cells int
	)
	for _, r := range w {
		rw := runewidth.RuneWidth(r)
		if cells+rw > budget-1 && cells > 0 {
			b.WriteByte('-')
			out = append(out, b.String())
			b.Reset()
			cells = 0
		}
		b.WriteRune(r)
		cells += rw
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
