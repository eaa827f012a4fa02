// Command visualizer connects to a viewer and streams a demo scene: the
// ground grid and a cube the viewer can orbit around.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"visualizer/internal/config"
	"visualizer/internal/logging"
	"visualizer/internal/renderables/cube"
	"visualizer/pkg/visualizer"

	"github.com/xlab/closer"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file, watched for changes")
	host := flag.String("host", "", "viewer host (overrides peer.host)")
	port := flag.Int("port", 0, "viewer port (overrides peer.port)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *host != "" {
		cfg.Peer.Host = *host
	}
	if *port != 0 {
		cfg.Peer.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	if *configPath != "" {
		go func() {
			err := config.Watch(ctx, *configPath, logger.Logger, func(c config.Config) {
				config.Apply(c)
				if err := logger.SetLevel(c.Log.Level); err != nil {
					logger.Warn("keeping log level", "err", err)
				}
			})
			if err != nil {
				logger.Warn("config watch stopped", "err", err)
			}
		}()
	}

	visualizer.Register(func() (visualizer.Renderable, error) {
		return cube.New()
	})

	v, err := visualizer.Open(cfg.Peer.Host, uint16(cfg.Peer.Port),
		visualizer.WithConfig(cfg),
		visualizer.WithLogger(logger.Logger))
	if err != nil {
		logger.Error("could not start", "err", err)
		os.Exit(1)
	}

	closer.Bind(func() {
		cancel()
		if err := v.Close(); err != nil {
			logger.Error("shutdown", "err", err)
		}
		s := v.Stats()
		logger.Info("stopped", "frames", s.FramesSent, "bytes", s.BytesSent,
			"plugins_dropped", s.Plugins.Dropped, "plugins_failed", s.Plugins.Failed)
	})

	go func() {
		if err := v.Wait(); err != nil {
			closer.Fatalln(err)
		}
		closer.Close()
	}()

	closer.Hold()
}
