package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/xunhualing/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect saved solving sessions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := openHistory()
		if err != nil {
			return err
		}
		defer st.Close()
		limit, _ := cmd.Flags().GetInt("limit")
		list, err := st.Sessions(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved sessions.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SESSION\tSTARTED\tREASON\tGUESSES\tANSWER")
		for _, s := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.StartedAt.Local().Format(time.DateTime), s.Reason, s.Guesses, s.Answer)
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show every guess of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openHistory()
		if err != nil {
			return err
		}
		defer st.Close()
		t, err := st.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printTranscript(cmd, t)
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum sessions to list")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}

func openHistory() (*history.Store, error) {
	if cfg.HistoryDB == "" {
		return nil, fmt.Errorf("HISTORY_DB is disabled")
	}
	return history.OpenStore(cfg.HistoryDB)
}

// statusMark renders one status as a single-width glyph.
var statusMark = map[string]string{"green": "G", "yellow": "Y", "gray": "."}

func printTranscript(cmd *cobra.Command, t history.Transcript) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "session %s  length %d  %s", t.SessionID, t.Length, t.Reason)
	if t.Answer != "" {
		fmt.Fprintf(w, "  answer %s", t.Answer)
	}
	fmt.Fprintln(w)
	for _, r := range t.Records {
		var marks strings.Builder
		for _, cs := range r.Status {
			m, ok := statusMark[string(cs.Status)]
			if !ok {
				m = "?"
			}
			marks.WriteString(m)
		}
		if r.Outcome == history.OutcomeAbandoned {
			marks.WriteString("(abandoned)")
		}
		fmt.Fprintf(w, "  c%d a%d  %s  %s\n", r.Cycle, r.Attempt, r.Guess, marks.String())
	}
}
