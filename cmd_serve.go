package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/xunhualing/internal/httpserver"
	"github.com/robalobadob/xunhualing/internal/store"
	"github.com/robalobadob/xunhualing/internal/verse"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local game simulator",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if p, _ := cmd.Flags().GetString("port"); p != "" {
			cfg.Port = p
		}
		corpus, err := loadAllLengths(cfg.CorpusFile)
		if err != nil {
			return err
		}
		srv := httpserver.New(store.NewMemoryStore(), corpus, httpserver.Options{
			Secret:    cfg.GameSecret,
			DailySalt: cfg.DailySalt,
			Rows:      cfg.MaxAttempts,
		})
		log.Info().Str("port", cfg.Port).Int("verses", len(corpus)).Msg("starting simulator")
		return srv.Start(":" + cfg.Port)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (default: PORT)")
}

// loadAllLengths loads both verse lengths; only a corpus with neither fails.
func loadAllLengths(path string) ([]verse.Verse, error) {
	var all []verse.Verse
	for _, n := range []int{verse.LengthFive, verse.LengthSeven} {
		vs, err := verse.Load(path, n)
		if errors.Is(err, verse.ErrNoVerses) {
			log.Warn().Int("length", n).Msg("corpus has no verses of this length")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load corpus: %w", err)
		}
		all = append(all, vs...)
	}
	if len(all) == 0 {
		return nil, verse.ErrNoVerses
	}
	return all, nil
}
