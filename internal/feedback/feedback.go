// internal/feedback/feedback.go
//
// Feedback interpretation: maps the tile colors read back from the game
// surface to the three constraint-bearing statuses.
//
// Palette (exact matches only):
//   rgb(106, 170, 100) → green
//   rgb(201, 180,  88) → yellow
//   rgb(120, 124, 126) → gray
// Anything else, including unparsable strings, is unknown. Unknown tiles are
// never coerced to gray; Interpret rejects the whole feedback instead.

package feedback

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/robalobadob/xunhualing/internal/game"
)

// Color is an opaque RGB signal from the surface. Alpha is ignored.
type Color struct {
	R, G, B uint8
}

var (
	Green  = Color{106, 170, 100}
	Yellow = Color{201, 180, 88}
	Gray   = Color{120, 124, 126}
)

var palette = map[Color]game.Status{
	Green:  game.StatusGreen,
	Yellow: game.StatusYellow,
	Gray:   game.StatusGray,
}

var (
	ErrBadColor      = errors.New("feedback: unparsable color")
	ErrWrongLength   = errors.New("feedback: wrong number of tiles")
	ErrUnknownStatus = errors.New("feedback: unclassifiable tile color")
)

var cssColor = regexp.MustCompile(`^\s*rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})`)

// ParseCSS parses a computed CSS color such as "rgb(106, 170, 100)" or
// "rgba(106, 170, 100, 1)".
func ParseCSS(s string) (Color, error) {
	m := cssColor.FindStringSubmatch(s)
	if m == nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
	}
	var c [3]uint8
	for i := range c {
		n, err := strconv.Atoi(m[i+1])
		if err != nil || n > 255 {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
		}
		c[i] = uint8(n)
	}
	return Color{R: c[0], G: c[1], B: c[2]}, nil
}

// CSS renders c the way browsers report computed colors.
func (c Color) CSS() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// Classify maps a color to its status, or StatusUnknown.
func Classify(c Color) game.Status {
	if s, ok := palette[c]; ok {
		return s
	}
	return game.StatusUnknown
}

// ClassifyCSS parses and classifies a CSS color string.
func ClassifyCSS(s string) game.Status {
	c, err := ParseCSS(s)
	if err != nil {
		return game.StatusUnknown
	}
	return Classify(c)
}

// ColorOf returns the palette color for a known status.
func ColorOf(s game.Status) (Color, bool) {
	for c, st := range palette {
		if st == s {
			return c, true
		}
	}
	return Color{}, false
}

// Tile is one raw feedback cell: the character shown and its background color.
type Tile struct {
	Char  string `json:"char"`
	Color string `json:"color"`
}

// Interpret classifies tiles and validates that there are exactly length of
// them with no unknown color. On error no statuses are returned.
func Interpret(tiles []Tile, length int) ([]game.Status, error) {
	if len(tiles) != length {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWrongLength, len(tiles), length)
	}
	out := make([]game.Status, len(tiles))
	for i, t := range tiles {
		s := ClassifyCSS(t.Color)
		if s == game.StatusUnknown {
			return nil, fmt.Errorf("%w: tile %d (%s) is %q", ErrUnknownStatus, i, t.Char, t.Color)
		}
		out[i] = s
	}
	return out, nil
}

// Tiles renders statuses for guess as palette-colored tiles. Unknown
// statuses get a color outside the palette.
func Tiles(guess string, statuses []game.Status) []Tile {
	rs := []rune(guess)
	out := make([]Tile, len(statuses))
	for i, s := range statuses {
		c, ok := ColorOf(s)
		if !ok {
			c = Color{170, 170, 170}
		}
		ch := ""
		if i < len(rs) {
			ch = string(rs[i])
		}
		out[i] = Tile{Char: ch, Color: c.CSS()}
	}
	return out
}
