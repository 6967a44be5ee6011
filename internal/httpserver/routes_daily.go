// internal/httpserver/routes_daily.go
//
// Daily verse mode: POST /daily/new starts a game on the verse selected by
// the date and the server salt. Play then continues on /game/guess.

package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/xunhualing/internal/daily"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
	})
}

func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	var req NewGameReq
	if err := decodeOptional(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "bad_json")
		return
	}
	pool, ok := s.pool(req.Length)
	if !ok {
		jsonError(w, http.StatusBadRequest, "no_verses_of_length")
		return
	}
	now := time.Now().UTC()
	answer := pool[daily.VerseIndex(now, s.opts.DailySalt, len(pool))]
	s.startGame(w, r, answer, daily.DateKey(now))
}
