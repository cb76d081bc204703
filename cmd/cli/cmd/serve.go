package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ucrparlay/pasgal-go/internal/store"
	"github.com/ucrparlay/pasgal-go/internal/webui"
)

var port int

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the results API server",
	Long: `Start an HTTP server exposing recorded algorithm runs.

GET /api/runs              lists recent runs, optionally ?algorithm=bfs
GET /api/runs/{uuid}        returns one run's status and result
GET /healthz                reports database connectivity`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	binName := BinName()
	serveCmd.Example = `  # Start server on the default port
  ` + binName + ` serve

  # Specify a port
  ` + binName + ` serve -p 9090`

	serveCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port for the results API server")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	gormDB, err := store.NewGormDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	stores := store.NewStores(gormDB)
	defer stores.Close()

	server := webui.NewServer(stores, port, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
		os.Exit(0)
	}()

	log.Info("results API listening on http://localhost:%d", port)
	log.Info("press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
