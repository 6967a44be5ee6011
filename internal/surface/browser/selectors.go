package browser

import (
	"errors"
	"strings"

	"github.com/robalobadob/xunhualing/internal/feedback"
	"github.com/robalobadob/xunhualing/internal/verse"
)

// Selectors locate the game widgets on the page.
type Selectors struct {
	Input        string // guess input box
	Submit       string // enabled submit button
	DirectSubmit string // regex matched against button text
	Tiles        string // evaluated tile cells
	Spinner      string // loading indicator
}

// DefaultSelectors match the xunhualing page.
var DefaultSelectors = Selectors{
	Input:        `input[placeholder*="（7x2）"], input[placeholder*="（5x2）"]`,
	Submit:       `button.ant-btn-primary:not([disabled])`,
	DirectSubmit: `直接提交`,
	Tiles:        `div[style*="width: 40px"][style*="font-family: fangsong"]:not([style*="rgb(170, 170, 170)"])`,
	Spinner:      `span.ant-spin-dot`,
}

var ErrUnknownLayout = errors.New("browser: cannot tell verse length from placeholder")

// LengthFromPlaceholder maps the input hint to a verse length.
func LengthFromPlaceholder(p string) (int, error) {
	switch {
	case strings.Contains(p, "（7x2）"):
		return verse.LengthSeven, nil
	case strings.Contains(p, "（5x2）"):
		return verse.LengthFive, nil
	}
	return 0, ErrUnknownLayout
}

// latestRow returns the last length tiles once the page shows at least rows
// evaluated rows. ok is false while the newest row has not rendered.
func latestRow(tiles []feedback.Tile, rows, length int) ([]feedback.Tile, bool) {
	if length <= 0 || len(tiles) < rows*length || len(tiles) < length {
		return nil, false
	}
	return tiles[len(tiles)-length:], true
}

// matchesGuess reports whether the row spells guess. A tile without text
// cannot be told apart from a stale row, so it never matches.
func matchesGuess(row []feedback.Tile, guess verse.Verse) bool {
	rs := guess.Runes()
	if len(rs) == 0 || len(rs) != len(row) {
		return false
	}
	for i, t := range row {
		if t.Char == "" || t.Char != string(rs[i]) {
			return false
		}
	}
	return true
}
