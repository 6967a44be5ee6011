// xunhualing solves the daily Chinese verse guessing game.
//
//	xunhualing solve            play the real page in a browser
//	xunhualing solve --surface remote --server http://localhost:5175
//	xunhualing serve            run the local simulator
//	xunhualing history list     show past sessions
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/xunhualing/internal/config"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "xunhualing",
	Short: "Frequency-driven solver for the xunhualing verse game",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		setupLogging(cfg)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT to the global logger.
func setupLogging(c config.Config) {
	if lvl, err := zerolog.ParseLevel(c.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if c.LogFormat != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
}
