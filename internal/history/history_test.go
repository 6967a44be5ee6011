package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/xunhualing/internal/game"
	"github.com/robalobadob/xunhualing/internal/verse"
)

func sampleTranscript(id string) Transcript {
	start := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	guess := verse.Verse("春眠不觉晓处处闻啼鸟")
	statuses := []game.Status{
		game.StatusGray, game.StatusGray, game.StatusYellow, game.StatusGray, game.StatusGray,
		game.StatusGray, game.StatusGray, game.StatusGray, game.StatusGray, game.StatusGreen,
	}
	r1 := NewRecord(guess, statuses, 1, 1, OutcomeAccepted)
	r1.At = start.Add(time.Second)
	r2 := NewRecord("床前明月光疑是地上霜", nil, 2, 1, OutcomeAbandoned)
	r2.At = start.Add(2 * time.Second)
	return Transcript{
		SessionID: id,
		Length:    10,
		Reason:    ReasonAborted,
		StartedAt: start,
		EndedAt:   start.Add(time.Minute),
		Records:   []Record{r1, r2},
	}
}

func TestNewRecord_PairsCharacters(t *testing.T) {
	r := NewRecord("明月光", []game.Status{game.StatusGreen, game.StatusGray, game.StatusYellow}, 3, 2, OutcomeAccepted)
	assert.Equal(t, []CharStatus{
		{Char: "明", Status: game.StatusGreen},
		{Char: "月", Status: game.StatusGray},
		{Char: "光", Status: game.StatusYellow},
	}, r.Status)
	assert.Equal(t, []game.Status{game.StatusGreen, game.StatusGray, game.StatusYellow}, r.Statuses())
	assert.Equal(t, 3, r.Attempt)
	assert.Equal(t, 2, r.Cycle)
}

func TestLog_AppendOnlyCopies(t *testing.T) {
	var l Log
	l.Append(NewRecord("明月光", nil, 1, 1, OutcomeAbandoned))
	recs := l.Records()
	recs[0].Guess = "changed"
	assert.Equal(t, verse.Verse("明月光"), l.Records()[0].Guess)
	assert.Equal(t, 1, l.Len())
}

func TestJSONFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "guess_history.json")
	want := sampleTranscript("s-json")
	require.NoError(t, JSONFile{Path: path}.Save(context.Background(), want))

	got, err := ReadJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.SessionID, got.SessionID)
	require.Len(t, got.Records, 2)
	assert.Equal(t, want.Records[0].Statuses(), got.Records[0].Statuses())
	assert.Equal(t, want.Records[1].Outcome, got.Records[1].Outcome)
}

func TestStore_SaveLoadLossless(t *testing.T) {
	st, err := OpenStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	want := sampleTranscript("s-1")
	require.NoError(t, st.Save(ctx, want))

	got, err := st.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, want.Length, got.Length)
	assert.Equal(t, want.Reason, got.Reason)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	require.Len(t, got.Records, 2)
	for i := range want.Records {
		assert.Equal(t, want.Records[i].Guess, got.Records[i].Guess)
		assert.Equal(t, want.Records[i].Status, got.Records[i].Status)
		assert.Equal(t, want.Records[i].Attempt, got.Records[i].Attempt)
		assert.Equal(t, want.Records[i].Outcome, got.Records[i].Outcome)
		assert.True(t, want.Records[i].At.Equal(got.Records[i].At))
	}

	// Saving again replaces rather than duplicates.
	want.Reason = ReasonSolved
	want.Answer = "春眠不觉晓处处闻啼鸟"
	require.NoError(t, st.Save(ctx, want))
	list, err := st.Sessions(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Guesses)
	assert.Equal(t, ReasonSolved, list[0].Reason)

	_, err = st.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_MigrationsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := OpenStore(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	st, err = OpenStore(path)
	require.NoError(t, err)
	defer st.Close()
	var n int
	require.NoError(t, st.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}
