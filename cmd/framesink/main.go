// Command framesink is a minimal viewer. It accepts one visualizer
// connection, decodes the frame stream and can dump frames as BMP files and
// script input messages.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"time"

	"visualizer/internal/logging"
	"visualizer/internal/view"
	"visualizer/internal/wire"

	"github.com/xlab/closer"
	"golang.org/x/image/bmp"
)

type options struct {
	listen  string
	dumpDir string
	every   int
	frames  int
	width   int
	height  int
	scroll  float64
	spin    int
}

func main() {
	var o options
	flag.StringVar(&o.listen, "listen", "127.0.0.1:4000", "address to accept the visualizer on")
	flag.StringVar(&o.dumpDir, "dump", "", "directory to write frames to as BMP")
	flag.IntVar(&o.every, "every", 30, "dump every n-th frame")
	flag.IntVar(&o.frames, "frames", 0, "stop after n frames, 0 runs until interrupted")
	flag.IntVar(&o.width, "width", 0, "request this frame width after connecting")
	flag.IntVar(&o.height, "height", 0, "request this frame height after connecting")
	flag.Float64Var(&o.scroll, "scroll", 0, "scroll by this amount after connecting")
	flag.IntVar(&o.spin, "spin", 0, "orbit by this many pixels of left drag per frame")
	level := flag.String("log", "info", "log level")
	flag.Parse()

	logger, err := logging.New(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ln, err := net.Listen("tcp", o.listen)
	if err != nil {
		logger.Error("listen", "err", err)
		os.Exit(1)
	}
	logger.Info("waiting for visualizer", "addr", ln.Addr())

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(func() {
		cancel()
		ln.Close()
	})

	go func() {
		if err := serve(ctx, ln, o, logger.Logger); err != nil && ctx.Err() == nil {
			closer.Fatalln(err)
		}
		closer.Close()
	}()
	closer.Hold()
}

func serve(ctx context.Context, ln net.Listener, o options, logger *slog.Logger) error {
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	logger.Info("visualizer connected", "remote", conn.RemoteAddr())

	if err := sendSetup(conn, o); err != nil {
		return err
	}
	if o.dumpDir != "" {
		if err := os.MkdirAll(o.dumpDir, 0o755); err != nil {
			return err
		}
	}

	var (
		buf   []byte
		start = time.Now()
		cx    = int32(o.width / 2)
	)
	for n := 1; o.frames == 0 || n <= o.frames; n++ {
		h, payload, err := wire.ReadFrame(conn, buf)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}
		buf = payload
		logger.Debug("frame", "n", n, "width", h.Width, "height", h.Height)

		if o.dumpDir != "" && o.every > 0 && n%o.every == 0 {
			name := filepath.Join(o.dumpDir, fmt.Sprintf("frame-%06d.bmp", n))
			if err := dump(name, int(h.Width), int(h.Height), payload); err != nil {
				return err
			}
			logger.Info("frame written", "path", name)
		}
		if o.spin != 0 {
			cx += int32(o.spin)
			if err := send(conn, wire.Input{X: cx, Y: 0, Type: wire.MouseDrag}); err != nil {
				return err
			}
		}
		if n%100 == 0 {
			logger.Info("receiving", "frames", n, "fps", float64(n)/time.Since(start).Seconds())
		}
	}
	return nil
}

// sendSetup sends the scripted messages that precede the frame loop.
func sendSetup(conn net.Conn, o options) error {
	var msgs []wire.Input
	if o.width > 0 && o.height > 0 {
		msgs = append(msgs, wire.Input{X: int32(o.width), Y: int32(o.height), Type: wire.Resize})
	}
	if o.scroll != 0 {
		msgs = append(msgs, wire.NewScroll(o.scroll))
	}
	if o.spin != 0 {
		cx := int32(o.width / 2)
		msgs = append(msgs,
			wire.Input{X: cx, Y: 0, Type: wire.MouseMove},
			wire.Input{X: cx, Y: 0, Z: int32(view.ButtonLeft), Type: wire.MouseDown})
	}
	for _, m := range msgs {
		if err := send(conn, m); err != nil {
			return err
		}
	}
	return nil
}

func send(conn net.Conn, m wire.Input) error {
	var b [wire.InputSize]byte
	m.Put(b[:])
	if _, err := conn.Write(b[:]); err != nil {
		return fmt.Errorf("send %v: %w", m.Type, err)
	}
	return nil
}

func dump(path string, width, height int, payload []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := bmp.Encode(f, toImage(width, height, payload)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// toImage converts a bottom-up BGR payload to a top-down image.
func toImage(width, height int, payload []byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := payload[(height-1-y)*width*wire.BytesPerPixel:]
		for x := 0; x < width; x++ {
			p := row[x*wire.BytesPerPixel:]
			img.SetRGBA(x, y, color.RGBA{R: p[2], G: p[1], B: p[0], A: 0xff})
		}
	}
	return img
}
