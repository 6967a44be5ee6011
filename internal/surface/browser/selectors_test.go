package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/xunhualing/internal/feedback"
)

func TestLengthFromPlaceholder(t *testing.T) {
	n, err := LengthFromPlaceholder("一句（7x2）诗/词等，标点随意")
	require.NoError(t, err)
	assert.Equal(t, 14, n)

	n, err = LengthFromPlaceholder("一句（5x2）诗/词等，标点随意")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	_, err = LengthFromPlaceholder("请输入")
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func TestLatestRow(t *testing.T) {
	mk := func(n int) []feedback.Tile {
		out := make([]feedback.Tile, n)
		for i := range out {
			out[i] = feedback.Tile{Char: string(rune('a' + i))}
		}
		return out
	}

	_, ok := latestRow(mk(3), 2, 3)
	assert.False(t, ok, "second row not rendered yet")

	row, ok := latestRow(mk(6), 2, 3)
	require.True(t, ok)
	assert.Equal(t, []feedback.Tile{{Char: "d"}, {Char: "e"}, {Char: "f"}}, row)

	_, ok = latestRow(nil, 0, 3)
	assert.False(t, ok)
}

func TestMatchesGuess(t *testing.T) {
	row := []feedback.Tile{{Char: "明"}, {Char: "月"}, {Char: "光"}}
	assert.True(t, matchesGuess(row, "明月光"))
	assert.False(t, matchesGuess(row, "明日光"))
	assert.False(t, matchesGuess(row, "明月"))

	blank := []feedback.Tile{{Char: "明"}, {Char: "月"}, {Char: ""}}
	assert.False(t, matchesGuess(blank, "明月光"), "blank tile must not match")
	assert.False(t, matchesGuess(nil, ""))
	assert.False(t, matchesGuess([]feedback.Tile{}, ""))
}
