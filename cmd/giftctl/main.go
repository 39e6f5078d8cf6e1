// Command giftctl runs the gift recommendation pipeline and its helper tools
// from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/popov-vn/ai-agent/internal/logger"
)

var (
	configPath string
	verbose    bool
	timeout    time.Duration
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "giftctl",
	Short: "Gift recommendation tools",
	Long: `giftctl runs the multi-persona gift recommendation pipeline outside Telegram.

Available commands:
  recommend - Recommend gifts for a person description
  price     - Look up the Ozon price range of a product
  resize    - Resize an image file
  personas  - List the expert personas`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	rootCmd.AddCommand(recommendCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(resizeCmd)
	rootCmd.AddCommand(personasCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// cliLogger logs to stderr so command output stays clean.
func cliLogger() *slog.Logger {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.NewWriterLogger(os.Stderr, level, false)
}

// commandContext bounds a command by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// maxInputBytes bounds descriptions read from stdin.
const maxInputBytes = 64 << 10

func readAllLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxInputBytes))
}
