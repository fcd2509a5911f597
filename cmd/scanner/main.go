package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"scanbatch-rest-api/internal/batch"
	"scanbatch-rest-api/internal/capture"
	"scanbatch-rest-api/internal/client"
	"scanbatch-rest-api/internal/config"
	"scanbatch-rest-api/internal/model"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		apiURL  string
		timeout time.Duration
	)

	root := &cobra.Command{
		Use:           "scanner",
		Short:         "Scan barcodes, tag them with a level and save them in batches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Defaults come from SCAN_API_URL / SCAN_API_TIMEOUT; flags override.
	cfg, err := config.LoadScanner()
	if err != nil {
		cfg = &config.ScannerConfig{APIURL: "http://localhost:5000", Timeout: 30 * time.Second}
	}
	root.PersistentFlags().StringVar(&apiURL, "api-url", cfg.APIURL, "base URL of the scan API")
	root.PersistentFlags().DurationVar(&timeout, "timeout", cfg.Timeout, "HTTP timeout, 0 disables")

	newClient := func() *client.Client {
		return client.New(apiURL, timeout)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "session",
			Short: "Start an interactive batch session",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				s := newSession(newClient(), capture.NewReaderSource(cmd.InOrStdin()), cmd.OutOrStdout())
				return s.run(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "history",
			Short: "Show saved scans, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				scans, err := newClient().List(cmd.Context())
				if err != nil {
					return err
				}
				printHistory(cmd.OutOrStdout(), scans)
				return nil
			},
		},
		&cobra.Command{
			Use:   "send <barcode> <level>",
			Short: "Save a single scan",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				level, err := batch.ParseLevel(args[1])
				if err != nil {
					return err
				}
				scan, err := newClient().Create(cmd.Context(), args[0], level.String())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Success: Saved %s (%s) as %s\n", scan.Barcode, scan.Level, scan.ID)
				return nil
			},
		},
	)

	return root
}

func printRows(w io.Writer, rows []batch.Row) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "No batches yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBatch\tLevel")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Position, r.Barcode, r.Level)
	}
	tw.Flush()
}

func printHistory(w io.Writer, scans []model.Scan) {
	if len(scans) == 0 {
		fmt.Fprintln(w, "No scans saved yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Barcode\tLevel\tScanned At")
	for _, s := range scans {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Barcode, s.Level, s.ScannedAt.Local().Format("2006-01-02 15:04:05"))
	}
	tw.Flush()
}
