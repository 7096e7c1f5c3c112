package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/molscope/molscope/internal/db"
	"github.com/molscope/molscope/internal/server"
)

var serveDataset string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the viewer server",
	Long: `Starts the molscope HTTP server: the viewer page, the JSON API and the
WebSocket channel keeping connected browsers in sync. The first dataset
found in the data directory is loaded unless --dataset names one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		database, err := db.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv, err := server.New(cfg, database)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		initial := serveDataset
		if initial == "" {
			found, err := cfg.DiscoverDatasets()
			if err != nil {
				return fmt.Errorf("discovering datasets: %w", err)
			}
			if len(found) == 0 {
				return fmt.Errorf("no datasets found under %s, pass --dataset or adjust the config", cfg.DataDir)
			}
			initial = found[0]
		}
		if err := srv.LoadDataset(initial); err != nil {
			return fmt.Errorf("loading dataset %s: %w", initial, err)
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "molscope v%s\n", Version)
		fmt.Fprintf(os.Stderr, "  Dataset:  %s\n", initial)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.Database)

		return srv.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveDataset, "dataset", "", "dataset to load at startup, relative to data_dir")
	rootCmd.AddCommand(serveCmd)
}
