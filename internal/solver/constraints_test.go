package solver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/xunhualing/internal/game"
)

const (
	G = game.StatusGreen
	Y = game.StatusYellow
	X = game.StatusGray
)

func statuses(s ...game.Status) []game.Status { return s }

func TestConstraints_GreenYellowGray(t *testing.T) {
	c := NewConstraints(PolicyReject)
	err := c.RecordFeedback("床前明月光疑是地上霜", statuses(G, X, Y, X, X, X, X, X, X, X))
	require.NoError(t, err)

	assert.Equal(t, map[int]rune{0: '床'}, c.Green())
	assert.Equal(t, []rune{'明'}, c.Yellow())
	assert.Len(t, c.Gray(), 8)

	assert.True(t, c.IsConsistent("床头明灯照书卷夜归来"))
	assert.False(t, c.IsConsistent("窗头明灯照书卷夜归来"), "green position must match")
	assert.False(t, c.IsConsistent("床头晨灯照书卷夜归来"), "yellow character must appear")
	assert.False(t, c.IsConsistent("床头明灯照书卷夜归霜"), "gray character must not appear")
}

func TestConstraints_GreenOverwritesPosition(t *testing.T) {
	c := NewConstraints(PolicyReject)
	require.NoError(t, c.RecordFeedback("甲乙丙甲乙丙甲乙丙甲", statuses(G, Y, Y, Y, Y, Y, Y, Y, Y, Y)))
	require.NoError(t, c.RecordFeedback("乙丙甲乙丙甲乙丙甲乙", statuses(G, Y, Y, Y, Y, Y, Y, Y, Y, Y)))
	assert.Equal(t, '乙', c.Green()[0])
}

func TestConstraints_MalformedFeedbackChangesNothing(t *testing.T) {
	c := NewConstraints(PolicyReject)
	err := c.RecordFeedback("床前明月光疑是地上霜", statuses(G, G, G))
	assert.ErrorIs(t, err, ErrLengthMismatch)

	bad := statuses(G, G, G, G, G, G, G, G, G, game.StatusUnknown)
	err = c.RecordFeedback("床前明月光疑是地上霜", bad)
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.True(t, c.Empty())
}

func TestConstraints_RejectSameTurnConflict(t *testing.T) {
	c := NewConstraints(PolicyReject)
	// 月 is green at 3 and gray at 9: the answer holds one 月 only.
	err := c.RecordFeedback("举头望月光低头思故月", statuses(X, X, X, G, X, X, X, X, X, X))
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []rune{'月'}, conflict.Chars)
	assert.NotContains(t, c.Gray(), '月')
	assert.True(t, c.IsConsistent("春江花月夜潮水连海平"))
}

func TestConstraints_RejectCrossTurnConflict(t *testing.T) {
	c := NewConstraints(PolicyReject)
	require.NoError(t, c.RecordFeedback("甲乙丙甲乙丙甲乙丙甲", statuses(X, X, X, X, X, X, X, X, X, X)))
	assert.Equal(t, []rune{'丙', '乙', '甲'}, c.Gray())

	err := c.RecordFeedback("丁甲戊己丁戊己丁戊己", statuses(X, Y, X, X, X, X, X, X, X, X))
	var conflict *ConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, []rune{'甲'}, conflict.Chars)
	assert.Equal(t, []rune{'甲'}, c.Yellow())
	assert.NotContains(t, c.Gray(), '甲')
	assert.Contains(t, c.Gray(), '丁')
}

func TestConstraints_FallbackAppliesVerbatim(t *testing.T) {
	c := NewConstraints(PolicyFallback)
	require.NoError(t, c.RecordFeedback("甲乙丙甲乙丙甲乙丙甲", statuses(X, X, X, X, X, X, X, X, X, X)))
	require.NoError(t, c.RecordFeedback("丁甲戊己丁戊己丁戊己", statuses(X, Y, X, X, X, X, X, X, X, X)))
	assert.Contains(t, c.Gray(), '甲')
	assert.Contains(t, c.Yellow(), '甲')
	assert.False(t, c.IsConsistent("甲庚辛甲庚辛甲庚辛甲"))
}

func TestConstraints_ResetAcceptsEverything(t *testing.T) {
	corpus := randomCorpus(42, 50)
	c := NewConstraints(PolicyReject)
	// Repeated characters may conflict; only the reset matters here.
	_ = c.RecordFeedback(corpus[0], statuses(G, Y, X, X, X, X, X, X, X, X))
	require.False(t, c.Empty())
	c.Reset()
	assert.True(t, c.Empty())
	for _, v := range corpus {
		assert.True(t, c.IsConsistent(v), string(v))
	}
}

func TestConstraints_AccessorsReturnCopies(t *testing.T) {
	c := NewConstraints(PolicyReject)
	require.NoError(t, c.RecordFeedback("床前明月光疑是地上霜", statuses(G, X, X, X, X, X, X, X, X, Y)))
	g := c.Green()
	g[5] = '乙'
	assert.Equal(t, map[int]rune{0: '床'}, c.Green())
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("Fallback")
	require.NoError(t, err)
	assert.Equal(t, PolicyFallback, p)
	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyReject, p)
	_, err = ParsePolicy("ignore")
	assert.Error(t, err)
	assert.Equal(t, "fallback", PolicyFallback.String())
}
