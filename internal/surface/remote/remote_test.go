package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/xunhualing/internal/feedback"
	"github.com/robalobadob/xunhualing/internal/history"
	"github.com/robalobadob/xunhualing/internal/httpserver"
	"github.com/robalobadob/xunhualing/internal/session"
	"github.com/robalobadob/xunhualing/internal/solver"
	"github.com/robalobadob/xunhualing/internal/store"
	"github.com/robalobadob/xunhualing/internal/surface/remote"
	"github.com/robalobadob/xunhualing/internal/verse"
)

func startSim(t *testing.T, vs []verse.Verse) *httptest.Server {
	t.Helper()
	srv := httpserver.New(store.NewMemoryStore(), vs, httpserver.Options{Secret: "s", DailySalt: "d"})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestClient_SubmitCaptureRefresh(t *testing.T) {
	vs, err := verse.Load("", verse.LengthFive)
	require.NoError(t, err)
	ts := startSim(t, vs)
	ctx := context.Background()

	c := remote.New(ts.URL, 0)
	_, err = c.Capture(ctx, 10)
	assert.ErrorIs(t, err, remote.ErrNoTiles)
	assert.ErrorIs(t, c.Submit(ctx, vs[0]), remote.ErrNotStarted)

	g, err := c.Start(ctx, verse.LengthFive, string(vs[0]), false)
	require.NoError(t, err)
	assert.Equal(t, 10, c.Length())
	assert.Equal(t, 9, g.MaxAttempts)

	require.NoError(t, c.Submit(ctx, vs[1]))
	tiles, err := c.Capture(ctx, 10)
	require.NoError(t, err)
	statuses, err := feedback.Interpret(tiles, 10)
	require.NoError(t, err)
	assert.Len(t, statuses, 10)

	require.NoError(t, c.Refresh(ctx))
	_, err = c.Capture(ctx, 10)
	assert.ErrorIs(t, err, remote.ErrNoTiles)
}

func TestClient_StatusError(t *testing.T) {
	vs, err := verse.Load("", verse.LengthFive)
	require.NoError(t, err)
	ts := startSim(t, vs)
	ctx := context.Background()

	c := remote.New(ts.URL, 0)
	_, err = c.Start(ctx, verse.LengthFive, string(vs[0]), false)
	require.NoError(t, err)

	err = c.Submit(ctx, "short")
	var se *remote.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.Code)
}

func TestSession_SolvesOverHTTP(t *testing.T) {
	for _, length := range []int{verse.LengthFive, verse.LengthSeven} {
		vs, err := verse.Load("", length)
		require.NoError(t, err)
		ts := startSim(t, vs)
		ctx := context.Background()

		for _, daily := range []bool{false, true} {
			c := remote.New(ts.URL, 0)
			_, err := c.Start(ctx, length, "", daily)
			require.NoError(t, err)

			ctl := session.New(solver.New(vs, c.Length(), solver.PolicyReject), c, session.Config{})
			res, err := ctl.Run(ctx)
			require.NoError(t, err)
			assert.Equal(t, history.ReasonSolved, res.Reason)
			assert.Equal(t, length, res.Answer.Len())
		}
	}
}
