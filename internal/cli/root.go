package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tfevents/internal/config"
	"tfevents/internal/logging"
	"tfevents/internal/models"
	"tfevents/internal/ui"
	"tfevents/internal/utils"
	"tfevents/internal/version"
)

var isTerminal = utils.IsTerminal

// NewRootCommand builds the tfevents command tree.
func NewRootCommand() *cobra.Command {
	flags := &Flags{}

	root := &cobra.Command{
		Use:   "tfevents",
		Short: "Run terraform and stream its output as structured events",
		Long: `tfevents runs the terraform lifecycle (init, plan, apply, destroy) as a
supervised child process and turns its console output into a stream of
events: resources planned, started, in progress and done, plus the summary
counts of every command.

Events are printed as they happen, recorded in a local journal and, with
--metrics-addr, counted on a Prometheus endpoint.`,
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(flags.Debug, cmd.ErrOrStderr())
		},
	}
	root.SetVersionTemplate(`tfevents {{.Version}}
`)
	flags.bind(root.PersistentFlags())

	root.AddCommand(
		lifecycleCommand(flags, models.CommandInit, "Run terraform init", []string{models.CommandInit}),
		lifecycleCommand(flags, models.CommandPlan, "Run terraform plan and save the plan file", []string{models.CommandPlan}),
		lifecycleCommand(flags, models.CommandApply, "Apply a saved plan file", []string{models.CommandApply}),
		lifecycleCommand(flags, models.CommandDestroy, "Destroy every managed resource", []string{models.CommandDestroy}),
		runCommand(flags),
		historyCommand(flags),
		versionCommand(),
	)

	return root
}

// Execute runs the root command with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}

func lifecycleCommand(flags *Flags, use, short string, steps []string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, flags, steps)
		},
	}
}

func runCommand(flags *Flags) *cobra.Command {
	var destroy bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run init, plan and apply in one go",
		Example: `  tfevents run --yes              # init, plan and apply without asking
  tfevents run --destroy --yes    # the same, then destroy everything again
  tfevents run --json | jq .      # stream events as JSON lines`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := []string{models.CommandInit, models.CommandPlan, models.CommandApply}
			if destroy {
				steps = append(steps, models.CommandDestroy)
			}
			return runSteps(cmd, flags, steps)
		},
	}
	cmd.Flags().BoolVar(&destroy, "destroy", false, "Destroy the resources again after applying")
	return cmd
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
		},
	}
}

// runSteps loads the configuration, wires an App and runs steps.
func runSteps(cmd *cobra.Command, flags *Flags, steps []string) error {
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	if err := validateEnvironment(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	mode := setupOutput(cfg, flags, out)

	app, err := NewApp(cfg, NewPrinter(out, mode), promptFor(flags, os.Stdin, out))
	if err != nil {
		return err
	}
	defer app.Close()

	return app.Run(cmd.Context(), steps)
}

// setupOutput picks the output mode and initialises colors for it.
func setupOutput(cfg *config.Config, flags *Flags, out io.Writer) outputMode {
	f, ok := out.(*os.File)
	tty := ok && isTerminal(f)

	switch {
	case flags.JSON:
		ui.DisableColors()
		return modeJSON
	case tty:
		ui.InitColors(cfg)
		return modeTTY
	default:
		ui.DisableColors()
		return modePlain
	}
}
