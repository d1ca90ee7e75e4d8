package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hackeros/isolator"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "isolator",
	Short: "User-space isolation tool for HackerOS",
	Long: `Isolator launches applications inside confined execution environments:
a namespaced process subtree with a restricted filesystem root, selected
host resources bound in as shares, an empty capability bounding set, and
a syscall filter.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func execute() error {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		return err
	}
	return nil
}

// loadConfig builds the runtime configuration: environment-derived defaults
// overlaid with the config file inside the isolator dir, if present.
func loadConfig() (*isolator.Config, error) {
	cfg := isolator.DefaultConfig()
	if err := cfg.LoadFile(configPath(cfg)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPath(cfg *isolator.Config) string {
	return filepath.Join(cfg.IsolatorDir, isolator.ConfigFileName)
}
