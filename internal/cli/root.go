package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jakoblorz/npm-clean/internal/filesystem"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command. Without a subcommand it cleans.
func NewRootCommand(fs filesystem.FileSystem) *cobra.Command {
	return newRootCommand(&CleanCommand{
		fs:   fs,
		opts: newRunOptions(),
	})
}

func newRootCommand(clean *CleanCommand) *cobra.Command {
	opts := clean.opts
	rootCmd := &cobra.Command{
		Use:   "npm-clean [path]",
		Short: "Remove node_modules, build output and caches from JavaScript projects",
		Long: `A CLI tool that finds JavaScript projects below a directory and removes
their disposable directories: node_modules, framework build output, tool caches
and coverage reports.

Projects are recognised by their package.json. A preview is shown and
confirmation is asked before anything is removed.`,
		Example: `  # Preview what would be removed below the current directory
  npm-clean --dry-run --stats

  # Remove only node_modules in a whole tree, nested projects included
  npm-clean ~/code -r -n -f

  # Also remove .turbo, but never touch anything below vendor/
  npm-clean --include .turbo --exclude vendor/`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          clean.Run,
	}

	opts.addPersistentFlags(rootCmd)
	opts.addCleanFlags(rootCmd)

	rootCmd.AddCommand(NewScanCommand(clean.fs, opts))

	return rootCmd
}

// Execute runs the root command. Interrupts stop launching further work; a
// removal that already started is allowed to finish.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := filesystem.NewOSFileSystem()
	rootCmd := NewRootCommand(fs)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}
