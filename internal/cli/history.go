package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	apperrors "tfevents/internal/errors"
	"tfevents/internal/journal"
	"tfevents/internal/ui"
	"tfevents/internal/ui/menu"
)

func historyCommand(flags *Flags) *cobra.Command {
	var (
		limit int
		pick  bool
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or replay the events of one run",
		Example: `  tfevents history                 # list recent runs
  tfevents history 3f2c... --json  # replay one run as JSON lines
  tfevents history --pick          # choose a run to replay from a menu`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}

			j, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer j.Close()

			mode := setupOutput(cfg, flags, cmd.OutOrStdout())
			if len(args) == 1 {
				return replayRun(cmd, j, args[0], mode)
			}
			if pick {
				if mode != modeTTY {
					return apperrors.NewValidationError("pick", "Picking a run needs a terminal", apperrors.ErrInvalidInput)
				}
				runID, err := pickRun(j, limit)
				if err != nil {
					return err
				}
				return replayRun(cmd, j, runID, mode)
			}
			return listRuns(cmd, j, limit, mode)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&pick, "pick", false, "Choose the run to replay from a menu")
	return cmd
}

func listRuns(cmd *cobra.Command, j *journal.Journal, limit int, mode outputMode) error {
	runs, err := j.Runs()
	if err != nil {
		return err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	out := cmd.OutOrStdout()
	if mode == modeJSON {
		enc := json.NewEncoder(out)
		for _, r := range runs {
			if err := enc.Encode(r); err != nil {
				return err
			}
		}
		return nil
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "%sNo runs recorded yet.%s\n", ui.ColorInfo, ui.ColorReset)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tEVENTS\tCOMMANDS\tDIRECTORY")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			r.StartedAt.Local().Format(time.DateTime),
			r.Events,
			summarizeCommands(r.Commands),
			r.WorkingDir,
		)
	}
	return w.Flush()
}

// summarizeCommands renders "init:success plan:failed".
func summarizeCommands(records []journal.CommandRecord) string {
	if len(records) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		parts = append(parts, rec.Command+":"+rec.Outcome)
	}
	return strings.Join(parts, " ")
}

// pickRun shows the most recent runs in a menu and returns the chosen ID.
func pickRun(j *journal.Journal, limit int) (string, error) {
	runs, err := j.Runs()
	if err != nil {
		return "", err
	}
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}

	options := make([]menu.Option, 0, len(runs))
	for _, r := range runs {
		options = append(options, menu.Option{
			Name:        r.StartedAt.Local().Format(time.DateTime),
			Description: fmt.Sprintf("%s (%s)", summarizeCommands(r.Commands), r.WorkingDir),
			Value:       r.ID,
		})
	}

	selected, err := menu.Show("Select a run to replay", options)
	if err != nil {
		return "", apperrors.NewUserInteractionError("history", "No run selected", err)
	}
	return selected.Value, nil
}

func replayRun(cmd *cobra.Command, j *journal.Journal, runID string, mode outputMode) error {
	events, err := j.Events(runID)
	if err != nil {
		return err
	}

	// Replays never animate.
	if mode == modeTTY {
		mode = modePlain
	}
	printer := NewPrinter(cmd.OutOrStdout(), mode)
	for _, e := range events {
		printer.Emit(e)
	}
	return nil
}
