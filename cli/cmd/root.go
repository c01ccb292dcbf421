/*
launchpd - deploy static sites from your terminal
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"launchpd/internal/failfast"
	"launchpd/internal/logging"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()

	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "launchpd",
	Short:         "Deploy static sites in seconds",
	SilenceErrors: true,
	SilenceUsage:  true,
	Long: fmt.Sprintf(`%s

Upload a folder of HTML, CSS, JS and assets and get a live URL.
Every deploy is a new version you can list and roll back.

%s
%s  Static-only validation before anything is uploaded
%s  Versioned deploys with instant rollback
%s  Works without an account; log in for custom names
`,
		bold("🚀 launchpd"),
		bold("Features:"),
		green("✓"),
		green("✓"),
		green("✓"),
	),
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(bold("Quick Start:"))
		fmt.Printf("  %s - Deploy the current folder\n", cyan(`launchpd deploy . -m "first deploy"`))
		fmt.Printf("  %s - See your sites\n", cyan("launchpd list"))
		fmt.Printf("  %s - Log in for custom subdomains\n\n", cyan("launchpd login"))
		fmt.Printf("%s %s\n", yellow("Help →"), cyan("launchpd --help"))
	},
}

// Execute runs the root command and exits 1 on any failure.
func Execute() {
	err := rootCmd.Execute()
	_ = logging.Sync()
	if err != nil {
		failfast.Exit(err, verbose)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print diagnostics and error causes")

	rootCmd.SetUsageTemplate(`{{.UseLine}}

  {{.Short}}

{{if .HasAvailableFlags}}Options:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}

{{if .HasAvailableSubCommands}}Commands:
{{range .Commands}}{{if .IsAvailableCommand}}  {{rpad .Name .NamePadding }} {{.Short}}
{{end}}{{end}}{{end}}

Run '{{.CommandPath}} [command] --help' for more information about a command.
`)

	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}
