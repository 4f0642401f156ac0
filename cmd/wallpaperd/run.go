package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/wallpaperd/internal/backend"
	"github.com/jmylchreest/wallpaperd/internal/config"
	"github.com/jmylchreest/wallpaperd/internal/daemon"
	"github.com/jmylchreest/wallpaperd/internal/dbus"
	"github.com/jmylchreest/wallpaperd/internal/images"
	"github.com/jmylchreest/wallpaperd/internal/server"
)

func runDaemon(cmd *cobra.Command, args []string) error {
	setupLogger()

	cfg, err := config.LoadDaemonConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if opts.writeConfig {
		return writeConfig(cfg)
	}

	logger.Info("starting wallpaperd",
		"version", version,
		"images", cfg.Rotation.ImageDir,
		"mode", cfg.Rotation.Mode,
		"interval", cfg.Rotation.Interval.Duration(),
		"backend", cfg.Backend.Kind,
	)

	b, err := backend.New(cfg.Backend, logger)
	if err != nil {
		return fmt.Errorf("failed to create backend: %w", err)
	}
	queue := backend.NewQueue(b, cfg.Backend.Timeout.Duration(), logger)

	state := daemon.NewState(daemon.StateConfig{
		DefaultImage: cfg.Rotation.FallbackImage,
		Mode:         cfg.Rotation.Mode,
		Interval:     cfg.Rotation.Interval.Duration(),
		HistorySize:  cfg.Rotation.HistorySize,
		RescanOnNext: !cfg.Watch.Enabled,
	}, images.NewDirLister(cfg.Rotation.ImageDir), queue, logger)

	notifier, closeNotifier := setupNotifier(cfg)
	defer closeNotifier()
	queue.SetAppliedCallback(func(req backend.Request) {
		logger.Info("wallpaper set", "path", req.Path, "backend", b.Name())
		notifier.ClearBackendError()
	})
	queue.SetErrorCallback(func(req backend.Request, err error) {
		notifier.NotifyBackendError(req.Path, err)
	})
	state.SetFallbackCallback(notifier.NotifyFallback)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if n, err := state.RefreshDirectoryListing(ctx); err != nil {
		logger.Warn("failed to list images", "dir", cfg.Rotation.ImageDir, "error", err)
	} else {
		logger.Info("images found", "dir", cfg.Rotation.ImageDir, "count", n)
		if n == 0 {
			notifier.NotifyNoImages(cfg.Rotation.ImageDir)
		}
	}

	// Nothing is painted until the socket is ours.
	ready := make(chan struct{})
	srv := server.New(state, config.ResolveSocketPath(cfg.Socket.Path), logger)
	srv.SetReadTimeout(cfg.Socket.ReadTimeout.Duration())
	srv.SetReadyCallback(startupHook(srv, state, opts.readyFD, ready))

	scheduler := daemon.NewScheduler(state, logger)
	scheduler.SetTickCallback(func(err error) {
		if errors.Is(err, daemon.ErrNoImages) {
			notifier.NotifyNoImages(cfg.Rotation.ImageDir)
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	// The server ends the daemon on "stop" or on a signal.
	g.Go(func() error {
		defer cancel()
		return srv.Serve(gctx)
	})
	g.Go(func() error {
		return queue.Run(gctx)
	})
	g.Go(func() error {
		select {
		case <-ready:
		case <-gctx.Done():
			return nil
		}
		return scheduler.Run(gctx)
	})

	if cfg.Watch.Enabled {
		watcher := daemon.NewDirWatcher(cfg.Rotation.ImageDir, cfg.Watch.Debounce.Duration(), logger)
		watcher.SetChangeCallback(func() {
			n, err := state.RefreshDirectoryListing(gctx)
			if err != nil {
				logger.Warn("failed to refresh images", "error", err)
				return
			}
			logger.Info("image directory changed", "count", n)
		})
		g.Go(func() error {
			if err := watcher.Run(gctx); err != nil {
				logger.Warn("image directory watch disabled", "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("wallpaperd stopped")
	return nil
}

// setupNotifier connects to the session bus for desktop notifications.
// Without a bus the returned notifier is a no-op.
func setupNotifier(cfg *config.DaemonConfig) (*daemon.Notifier, func()) {
	if !cfg.Notify.Enabled {
		return daemon.NewNotifier(nil, logger), func() {}
	}

	client := dbus.NewClient(logger)
	if err := client.Connect(); err != nil {
		logger.Warn("desktop notifications disabled", "error", err)
		return daemon.NewNotifier(nil, logger), func() {}
	}

	notifier := daemon.NewNotifier(client, logger)
	if d := cfg.Notify.MinInterval.Duration(); d > 0 {
		notifier.SetMinInterval(d)
	}
	return notifier, func() {
		if err := client.Close(); err != nil {
			logger.Debug("failed to close session bus", "error", err)
		}
	}
}

// startupHook returns the server ready callback. It shows the current image,
// signals readiness on readyFD when set, and closes ready.
func startupHook(srv *server.Server, state *daemon.State, readyFD int, ready chan<- struct{}) func() {
	return func() {
		logger.Debug("control socket ready", "socket", srv.SocketPath())
		state.Redisplay()
		if readyFD > 0 {
			signalReady(readyFD)
		}
		close(ready)
	}
}

// writeConfig saves cfg to the --config path or the default location.
func writeConfig(cfg *config.DaemonConfig) error {
	path := opts.configPath
	if path == "" {
		var err error
		if path, err = config.DaemonConfigPath(); err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}
	if err := config.SaveDaemonConfig(cfg, path); err != nil {
		return err
	}
	logger.Info("configuration written", "path", path)
	return nil
}

// signalReady writes a newline to fd for a supervisor waiting on readiness.
func signalReady(fd int) {
	f := os.NewFile(uintptr(fd), "ready-fd")
	if f == nil {
		logger.Warn("invalid ready fd", "fd", fd)
		return
	}
	defer f.Close()

	if _, err := f.Write([]byte("\n")); err != nil {
		logger.Warn("failed to signal readiness", "fd", fd, "error", err)
		return
	}
	logger.Debug("readiness signalled", "fd", fd)
}
