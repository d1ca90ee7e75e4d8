package main

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// Package operations are simulated: there is no package-manager integration
// yet, only the progress display the real flow will drive.

var installCmd = &cobra.Command{
	Use:   "install [package]",
	Short: "Install a package into the environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return simulatePackageOp("Installing", args[0])
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [package]",
	Short: "Remove a package from the environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return simulatePackageOp("Removing", args[0])
	},
}

var communityInstallCmd = &cobra.Command{
	Use:   "community-install [package]",
	Short: "Community install (not implemented)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.Info.Println("Community install not implemented yet.")
		return nil
	},
}

var communityRemoveCmd = &cobra.Command{
	Use:   "community-remove [package]",
	Short: "Community remove (not implemented)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pterm.Info.Println("Community remove not implemented yet.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd, removeCmd, communityInstallCmd, communityRemoveCmd)
}

// simulatePackageOp drives a progress bar for a package operation.
func simulatePackageOp(verb, pkg string) error {
	bar, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithTitle(verb + " " + pkg).
		Start()
	if err != nil {
		return err
	}
	for i := 0; i < 100; i++ {
		bar.Increment()
		time.Sleep(20 * time.Millisecond)
	}
	if _, err := bar.Stop(); err != nil {
		return err
	}
	pterm.Success.Printf("%s %s done\n", verb, pkg)
	return nil
}
