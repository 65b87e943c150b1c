package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wadjakorntonsri/linkvault/pkg/app"
	"github.com/wadjakorntonsri/linkvault/pkg/config"
	"github.com/wadjakorntonsri/linkvault/pkg/logging"
)

// linkvault is built once per invocation in PersistentPreRunE.
var (
	linkvault *app.App
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "linkvault-cli",
	Short:         "Maintenance commands for the linkvault store and edge cache",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// Logs go to stderr so stdout stays clean for JSON output.
		logger, closer := logging.New(logging.Options{
			AppEnv: cfg.AppEnv,
			Level:  cfg.LogLevel,
			File:   cfg.LogFile,
			Stderr: true,
		})
		logCloser = closer

		linkvault, err = app.New(cmd.Context(), cfg, logger)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if linkvault != nil {
			_ = linkvault.Close()
		}
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push every link to the edge cache once",
	Long: `Run one full propagation of the link table to the edge cache.

A fresh process always starts dirty, so this writes every link regardless of
what the server has already pushed. The result is printed as JSON and the run
is added to the sync history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res := linkvault.Sync.Run(cmd.Context())
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if res.Error != "" {
			return fmt.Errorf("sync %s: %s", res.Status, res.Error)
		}
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := linkvault.Sync.History(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), entries)
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "JSON file to import (required)")
	importCmd.Flags().StringVar(&importOwner, "owner", "", "owner for every imported link (default: the owner recorded in the file)")
	_ = importCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(syncCmd, historyCmd, exportCmd, importCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
