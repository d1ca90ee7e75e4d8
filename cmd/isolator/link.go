package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hackeros/isolator"
)

var linkCmd = &cobra.Command{
	Use:   "link [source] [target]",
	Short: "Link one profile to another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := isolator.NewProfileStore(cfg.IsolatorDir)
		if err := store.Ensure(); err != nil {
			return err
		}
		if err := store.Link(args[0], args[1]); err != nil {
			return err
		}
		pterm.Success.Printf("Linked %s to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(linkCmd)
}
