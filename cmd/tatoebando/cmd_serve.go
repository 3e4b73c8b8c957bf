package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/japaniel/tatoebando/pkg/phrases"
	"github.com/japaniel/tatoebando/pkg/server"
	"github.com/japaniel/tatoebando/pkg/watch"
)

const shutdownTimeout = 10 * time.Second

var (
	portFlag    int
	phrasesFlag string
	staticFlag  string
	watchFlag   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server on all interfaces.

Routes:
  GET  /                     index.html from the static directory
  GET  /tatuebando-logo.png  logo from the static directory
  GET  /api/search?q=...     phrases matching q
  GET  /api/phrases          every phrase
  GET  /api/stats            total and per-level counts
  POST /api/reload           re-read the phrase file`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&portFlag, "port", "p", 8080, "Port to listen on (env PORT)")
	serveCmd.Flags().StringVar(&phrasesFlag, "phrases", "phrases.json", "Phrase JSON file (env TATOEBANDO_PHRASES)")
	serveCmd.Flags().StringVar(&staticFlag, "static", ".", "Directory with index.html and the logo (env TATOEBANDO_STATIC)")
	serveCmd.Flags().BoolVar(&watchFlag, "watch", false, "Reload automatically when the phrase file changes (env TATOEBANDO_WATCH)")
}

// applyServeFlags lets explicitly set flags override the environment.
func applyServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = portFlag
	}
	if flags.Changed("phrases") {
		cfg.PhrasesFile = phrasesFlag
	}
	if flags.Changed("static") {
		cfg.StaticDir = staticFlag
	}
	if flags.Changed("watch") {
		cfg.Watch = watchFlag
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	applyServeFlags(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	corpus := phrases.NewCorpus(cfg.PhrasesFile, logger)
	srv := server.New(cfg.Addr(), corpus, cfg.StaticDir, logger)

	var watcher *watch.Watcher
	if cfg.Watch {
		var err error
		watcher, err = watch.New(cfg.PhrasesFile, corpus, logger)
		if err != nil {
			return err
		}
	}

	logger.Info("server ready",
		zap.Int("phrases", corpus.Len()),
		zap.String("url", fmt.Sprintf("http://0.0.0.0:%d", cfg.Port)),
		zap.Bool("watch", cfg.Watch))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if watcher != nil {
		g.Go(func() error { return watcher.Run(gctx) })
	}
	return g.Wait()
}
