package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gamehub/internal/config"
	"gamehub/internal/hub"
	"gamehub/internal/logging"
	"gamehub/internal/ports/natsbridge"
	"gamehub/internal/ports/websocket"
)

const releaseVersion = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}

func serveHub(ctx context.Context, cfg *Config) error {
	zl, err := logging.New(logging.Options{Level: cfg.logLevel, File: cfg.logFile})
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()
	logger := logging.NewRuntimeLogger(zl)

	rooms, err := config.Load(cfg.roomsFile)
	if err != nil {
		return err
	}

	var opts []hub.Option
	if cfg.schedulerTick > 0 {
		opts = append(opts, hub.WithTick(cfg.schedulerTick))
	}
	h, err := hub.New(rooms, logger, opts...)
	if err != nil {
		return err
	}
	defer h.Close()

	srv, err := websocket.New(h, logger.WithField("component", "websocket"), websocket.Options{
		PublicURL:      cfg.publicURL,
		MaxConnections: cfg.maxConnections,
		Version:        releaseVersion,
	})
	if err != nil {
		return err
	}
	h.OnOutgoing(srv.Send)

	g, ctx := errgroup.WithContext(ctx)

	if cfg.natsURL != "" {
		natsLogger := logger.WithField("component", "nats")
		nc, err := natsbridge.Connect(cfg.natsURL, natsLogger)
		if err != nil {
			return err
		}
		defer nc.Close()
		bridge := natsbridge.New(nc, h, natsLogger)
		h.OnOutgoing(bridge.Send)
		g.Go(func() error { return bridge.Run(ctx) })
	}

	g.Go(func() error { return h.Run(ctx) })
	g.Go(func() error { return srv.ListenAndServe(ctx, cfg.addr) })

	logger.Info("gamehub v%s serving %d rooms", releaseVersion, len(rooms.Rooms))
	return g.Wait()
}

func printRooms(w io.Writer, cfg *Config) error {
	rooms, err := config.Load(cfg.roomsFile)
	if err != nil {
		return err
	}
	data, err := rooms.Marshal()
	if err != nil {
		return fmt.Errorf("marshal rooms: %w", err)
	}
	_, err = w.Write(data)
	return err
}
