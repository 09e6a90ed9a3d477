package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Puppetdog/sp-calculator-sub000/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	envFile string
	catalog string
	format  string
	save    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "spcalc",
		Short: "Social protection benefits calculator",
		Long: "Evaluates beneficiaries against a catalog of social protection programs: " +
			"eligibility scores, monthly benefit amounts and the gap to the minimum expenditure basket.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load settings from")
	cmd.PersistentFlags().StringVarP(&opts.catalog, "catalog", "c", "", "Program catalog file (overrides SPCALC_CATALOG)")
	cmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "console", fmt.Sprintf("Output format %v", output.FormatNames()))
	cmd.PersistentFlags().BoolVar(&opts.save, "save", false, "Also write the report to a timestamped file")

	cmd.AddCommand(
		eligibleCmd(opts),
		gapCmd(opts),
		benefitCmd(opts),
		eligibilityCmd(opts),
		programsCmd(opts),
		colaCmd(opts),
		adjustmentsCmd(opts),
		validateCmd(),
		serveCmd(opts),
		migrateCmd(opts),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spcalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.Main.Path + " " + bi.GoVersion
	}
	return ""
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
