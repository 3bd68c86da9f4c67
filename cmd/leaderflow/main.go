package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

var (
	configFile string
	debug      bool
	username   string
	password   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "leaderflow",
		Short:         "LeaderFlow - agenda and reminders for leaders",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./leaderflow.yaml)")
	flags.BoolVar(&debug, "debug", false, "development logging")
	flags.StringVarP(&username, "user", "u", os.Getenv("LEADERFLOW_USER"), "username")
	flags.StringVarP(&password, "password", "p", os.Getenv("LEADERFLOW_PASSWORD"), "password")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(upcomingCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(registerCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(settingsCmd())
	rootCmd.AddCommand(caldavCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
