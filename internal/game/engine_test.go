package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "床前明月光疑是地上霜"

func TestScore_AllGreen(t *testing.T) {
	got := Score(secret, secret)
	require.Len(t, got, 10)
	assert.True(t, AllGreen(got))
}

func TestScore_MixedStatuses(t *testing.T) {
	// 明 and 月 swapped, 霜 replaced by 人.
	got := Score(secret, "床前月明光疑是地上人")
	want := []Status{
		StatusGreen, StatusGreen, StatusYellow, StatusYellow, StatusGreen,
		StatusGreen, StatusGreen, StatusGreen, StatusGreen, StatusGray,
	}
	assert.Equal(t, want, got)
}

func TestScore_RepeatedCharacters(t *testing.T) {
	// Only one 月 in the answer: the second copy in the guess is gray.
	got := Score("床前明月光疑是地上霜", "月月明人光疑是地上霜")
	assert.Equal(t, StatusYellow, got[0])
	assert.Equal(t, StatusGray, got[1])
	assert.Equal(t, StatusGreen, got[2])
}

func TestScore_LengthMismatch(t *testing.T) {
	got := Score(secret, "床前明月光")
	require.Len(t, got, 5)
	for _, s := range got {
		assert.Equal(t, StatusGray, s)
	}
}

func TestApplyGuess_WinAndFinish(t *testing.T) {
	g := New(secret, 0)
	assert.Equal(t, DefaultRows, g.Rows)
	assert.Equal(t, 10, g.Length)

	_, state, err := g.ApplyGuess("春眠不觉晓处处闻啼鸟")
	require.NoError(t, err)
	assert.Equal(t, "playing", state)

	statuses, state, err := g.ApplyGuess(" " + secret + " ")
	require.NoError(t, err)
	assert.True(t, AllGreen(statuses))
	assert.Equal(t, "won", state)

	_, _, err = g.ApplyGuess(secret)
	assert.ErrorIs(t, err, ErrFinished)
}

func TestApplyGuess_Invalid(t *testing.T) {
	g := New(secret, 0)
	_, _, err := g.ApplyGuess("床前明月光")
	assert.ErrorIs(t, err, ErrInvalidGuess)
	_, _, err = g.ApplyGuess("床前明月光，疑是地上")
	assert.ErrorIs(t, err, ErrInvalidGuess)
	assert.Empty(t, g.Guesses)
}

func TestApplyGuess_LossAndRefresh(t *testing.T) {
	g := New(secret, 2)
	_, _, err := g.ApplyGuess("春眠不觉晓处处闻啼鸟")
	require.NoError(t, err)
	_, state, err := g.ApplyGuess("夜来风雨声花落知多少")
	require.NoError(t, err)
	assert.Equal(t, "lost", state)

	g.Refresh()
	assert.Equal(t, "playing", g.State())
	assert.Empty(t, g.Guesses)
}

func TestStatusKnown(t *testing.T) {
	assert.True(t, StatusGreen.Known())
	assert.True(t, StatusYellow.Known())
	assert.True(t, StatusGray.Known())
	assert.False(t, StatusUnknown.Known())
	assert.False(t, AllGreen(nil))
}
