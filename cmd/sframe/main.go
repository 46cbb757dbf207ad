// sframe is a command line tool for the Sframe framing protocol: it
// sends and dumps single frames, runs the bridge daemon and monitors
// live links.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"
	log "github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	sframe "github.com/Pablu23/Sframe"
	"github.com/Pablu23/Sframe/internal/bridge"
)

func main() {
	app := &cli.App{
		Name:  "sframe",
		Usage: "send, receive and bridge Sframe frames",
		Flags: []cli.Flag{
			&cli.UintFlag{Name: "address", Aliases: []string{"a"}, Value: 1, Usage: "local station address (0-255)"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "debug logging"},
		},
		Before: func(c *cli.Context) error {
			log.SetFormatter(&log.TextFormatter{
				ForceColors: true,
			})
			if c.Bool("verbose") {
				log.SetLevel(log.DebugLevel)
			}
			if c.Uint("address") > 255 {
				return fmt.Errorf("address %d does not fit one byte", c.Uint("address"))
			}
			return nil
		},
		Commands: []*cli.Command{
			sendCmd,
			dumpCmd,
			bridgeCmd,
			monitorCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("Command failed")
	}
}

// stdio is the endpoint behind "-": read from stdin, write to stdout.
type stdio struct{}

func (stdio) Read(b []byte) (int, error)  { return os.Stdin.Read(b) }
func (stdio) Write(b []byte) (int, error) { return os.Stdout.Write(b) }
func (stdio) Close() error                { return nil }

func openStream(spec string) (io.ReadWriteCloser, error) {
	if spec == "" {
		return nil, errors.New("an endpoint argument is required")
	}
	if spec == "-" {
		return stdio{}, nil
	}
	return bridge.Dial(spec)
}

var sendCmd = &cli.Command{
	Name:      "send",
	Usage:     "build one packet and send it",
	ArgsUsage: "<endpoint>",
	Flags: []cli.Flag{
		&cli.UintFlag{Name: "to", Required: true, Usage: "destination address (0-255)"},
		&cli.UintFlag{Name: "type", Usage: "packet type tag (0-255)"},
		&cli.StringFlag{Name: "text", Usage: "payload: NUL-terminated string"},
		&cli.StringFlag{Name: "hex", Usage: "payload: raw hex bytes"},
		&cli.Uint64Flag{Name: "uint", Usage: "payload: little-endian unsigned integer"},
		&cli.IntFlag{Name: "size", Value: 4, Usage: "integer payload width in bytes"},
	},
	Action: func(c *cli.Context) error {
		if c.Uint("to") > 255 || c.Uint("type") > 255 {
			return errors.New("destination and type must fit one byte")
		}

		p := sframe.New()
		set := 0
		if c.IsSet("text") {
			set++
			if err := p.SetText(c.String("text")); err != nil {
				return err
			}
		}
		if c.IsSet("hex") {
			set++
			raw, err := hex.DecodeString(c.String("hex"))
			if err != nil {
				return fmt.Errorf("bad hex payload: %w", err)
			}
			if err := p.SetData(raw); err != nil {
				return err
			}
		}
		if c.IsSet("uint") {
			set++
			if err := p.SetUint(c.Uint64("uint"), c.Int("size")); err != nil {
				return err
			}
		}
		if set != 1 {
			return errors.New("exactly one of --text, --hex or --uint is required")
		}

		stream, err := openStream(c.Args().First())
		if err != nil {
			return err
		}
		defer stream.Close()

		f := sframe.Framer{Address: byte(c.Uint("address"))}
		if err := f.SendTo(stream, p, byte(c.Uint("to")), byte(c.Uint("type"))); err != nil {
			return err
		}
		log.WithFields(log.Fields{
			"Destination": p.Destination,
			"Type":        p.Type,
			"Length":      p.Len(),
		}).Info("Sent frame")
		return nil
	},
}

var dumpCmd = &cli.Command{
	Name:      "dump",
	Usage:     "receive frames and print them",
	ArgsUsage: "<endpoint>",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "stop after this many frames (0 = run until EOF)"},
	},
	Action: func(c *cli.Context) error {
		stream, err := openStream(c.Args().First())
		if err != nil {
			return err
		}
		defer stream.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var f sframe.Framer
		for n := 0; c.Int("count") == 0 || n < c.Int("count"); n++ {
			p, err := f.ReceiveContext(ctx, stream)
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println(describe(p))
		}
		return nil
	},
}

// describe renders one recovered frame on a single line, decoding the
// payload as text when it happens to be NUL-terminated.
func describe(p *sframe.Packet) string {
	data, _ := p.Data()
	line := fmt.Sprintf("src=%-3d dst=%-3d type=%-3d len=%-3d %x", p.Source, p.Destination, p.Type, p.Len(), data)
	if text, err := p.Text(); err == nil {
		line += fmt.Sprintf(" %q", text)
	}
	return line
}

var bridgeCmd = &cli.Command{
	Name:  "bridge",
	Usage: "repeat clean frames between two endpoints",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Required: true, Usage: "TOML configuration file"},
	},
	Action: func(c *cli.Context) error {
		cfg, err := bridge.LoadConfig(c.String("config"))
		if err != nil {
			return err
		}
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)

		b, err := bridge.Open(cfg, func(o *bridge.Options) {
			if cfg.MetricsAddr != "" {
				o.Metrics = bridge.NewMetrics()
				o.MetricsAddr = cfg.MetricsAddr
			}
		})
		if err != nil {
			return err
		}
		defer b.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.WithFields(log.Fields{
			"Left":  cfg.Left.Endpoint,
			"Right": cfg.Right.Endpoint,
		}).Info("Bridge running")

		if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Info("Bridge stopped")
		return nil
	},
}

var monitorCmd = &cli.Command{
	Name:      "monitor",
	Usage:     "live census of a link: frames, bytes, stations, types",
	ArgsUsage: "<endpoint>",
	Action: func(c *cli.Context) error {
		stream, err := openStream(c.Args().First())
		if err != nil {
			return err
		}
		defer stream.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var stats bridge.Stats
		done := make(chan error, 1)
		go func() {
			var f sframe.Framer
			for {
				p, err := f.ReceiveContext(ctx, stream)
				if err != nil {
					if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
						done <- nil
					} else {
						done <- err
					}
					return
				}
				stats.Observe(bridge.LeftToRight, p)
			}
		}()

		area, err := pterm.DefaultArea.Start()
		if err != nil {
			return err
		}
		defer area.Stop()

		start := time.Now()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case err := <-done:
				area.Update(renderStats(stats.Snapshot(), time.Since(start)))
				return err
			case <-ticker.C:
				area.Update(renderStats(stats.Snapshot(), time.Since(start)))
			}
		}
	},
}

func renderStats(snap bridge.Snapshot, elapsed time.Duration) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "listening for %s\n", elapsed.Round(time.Second))
	fmt.Fprintf(&sb, "frames:   %d\n", snap.Frames[bridge.LeftToRight])
	fmt.Fprintf(&sb, "bytes:    %s\n", humanize.Bytes(snap.Bytes[bridge.LeftToRight]))
	fmt.Fprintf(&sb, "stations: %v\n", snap.Sources)
	fmt.Fprintf(&sb, "types:    %v\n", snap.Types)
	return sb.String()
}
