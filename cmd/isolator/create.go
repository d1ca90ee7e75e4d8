package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hackeros/isolator"
)

var (
	createShares []string
	createYes    bool
)

var createCmd = &cobra.Command{
	Use:   "create [app]",
	Short: "Create an isolated environment for an application and launch it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd.Context(), args[0])
	},
}

func init() {
	createCmd.Flags().StringSliceVar(&createShares, "share", nil,
		"Shares to enable (comma-separated: home,wayland,x11,sound,tools)")
	createCmd.Flags().BoolVarP(&createYes, "yes", "y", false,
		"Skip the launch confirmation prompt")
	rootCmd.AddCommand(createCmd)
}

func runCreate(ctx context.Context, appName string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store := isolator.NewProfileStore(cfg.IsolatorDir)
	if err := store.Ensure(); err != nil {
		return err
	}

	spinner, _ := pterm.DefaultSpinner.Start("Setting up rootfs...")
	sandboxDir, err := store.CreateRootfs(appName)
	if err != nil {
		spinner.Fail("Rootfs setup failed")
		return err
	}
	spinner.Success("Rootfs setup complete")

	if !createYes {
		cfg.Confirm = promptConfirm
	}

	sup, err := isolator.NewSupervisor(cfg)
	if err != nil {
		return err
	}

	outcome, err := sup.BuildAndLaunch(ctx, isolator.SandboxRequest{
		AppName:    appName,
		Shares:     createShares,
		SandboxDir: sandboxDir,
	})
	if err != nil {
		return err
	}
	if !outcome.Launched {
		pterm.Info.Println("Launch declined, nothing created.")
		return nil
	}
	if outcome.Signal != 0 {
		pterm.Warning.Printf("%s terminated by signal %d\n", appName, outcome.Signal)
		os.Exit(128 + outcome.Signal)
	}
	if outcome.ExitCode != 0 {
		os.Exit(outcome.ExitCode)
	}
	pterm.Success.Printf("%s exited cleanly\n", appName)
	return nil
}

// promptConfirm is the interactive pre-flight confirmation hook.
func promptConfirm(_ context.Context, req isolator.SandboxRequest) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		Show(fmt.Sprintf("Proceed to launch %s in isolated env?", req.AppName))
}
