package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"EuroLens/internal/usecase"
	"EuroLens/pkg/config"
	xhttp "EuroLens/pkg/http"
	pkgkafka "EuroLens/pkg/kafka"
	applogger "EuroLens/pkg/logger"
)

type namedCloser struct {
	name string
	io.Closer
}

// App encapsulates the application lifecycle: HTTP server, scheduled draw
// sync and the optional ingestion consumer.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	drawSync   *usecase.DrawSync
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	closers    []namedCloser
}

// New creates a new App instance.
func New(cfg *config.Config, l *applogger.Logger, httpServer *xhttp.Server) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, log: l, httpServer: httpServer}
}

// SetDrawSync enables the scheduled draw sync.
func (a *App) SetDrawSync(s *usecase.DrawSync) { a.drawSync = s }

// SetConsumer enables the ingestion consumer with its handler.
func (a *App) SetConsumer(c *pkgkafka.Consumer, h pkgkafka.MessageHandler) {
	a.consumer = c
	a.kh = h
}

// AddCloser registers a resource closed on shutdown, in reverse order.
func (a *App) AddCloser(name string, c io.Closer) {
	a.closers = append(a.closers, namedCloser{name: name, Closer: c})
}

// Run starts every component and blocks until ctx is done, a signal
// arrives or a component fails.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	httpErr := a.httpServer.Start()
	g.Go(func() error {
		select {
		case err, ok := <-httpErr:
			if ok {
				return err
			}
			return nil
		case <-gctx.Done():
			return nil
		}
	})

	if a.drawSync != nil {
		if err := a.drawSync.Start(gctx, a.cfg.Backend.SyncSchedule, a.cfg.Backend.SyncOnStart); err != nil {
			a.log.Error("draw sync start failed", applogger.Error(err))
			stop()
			_ = g.Wait()
			return a.shutdown(err)
		}
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start failed", applogger.Error(err))
			stop()
			_ = g.Wait()
			return a.shutdown(err)
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	a.log.Info("eurolens started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("backend", a.cfg.Backend.Type),
		applogger.String("cache", a.cfg.Cache.Type),
	)

	<-gctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown(g.Wait())
}

// shutdown stops components and closes resources, returning cause.
func (a *App) shutdown(cause error) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}
	if a.drawSync != nil {
		if err := a.drawSync.Stop(ctx); err != nil {
			a.log.Warn("draw sync stop error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.String("resource", c.name), applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return cause
}
