package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cristal-orion/Reminor/internal/engine"
	"github.com/cristal-orion/Reminor/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	embedderLabel := a.attachEmbedder()
	defer a.engine.Stop()

	owners := func() []string {
		names, err := a.journal.Owners()
		if err != nil {
			a.log.Warn().Err(err).Msg("list owners")
			return nil
		}
		return names
	}
	a.engine.StartMaintenance(owners)

	watcher, err := engine.NewWatcher(a.engine, owners())
	if err != nil {
		a.log.Warn().Err(err).Msg("file watcher unavailable, external edits need a rebuild")
	} else {
		defer watcher.Close()
	}

	srv := server.New(a.engine, a.db, VersionString(), a.log)
	addr := a.cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "reminor serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  data: %s\n", a.cfg.Storage.DataDir)
		fmt.Fprintf(os.Stderr, "  index: %s\n", a.db.Path)
		fmt.Fprintf(os.Stderr, "  embedder: %s\n", embedderLabel)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
