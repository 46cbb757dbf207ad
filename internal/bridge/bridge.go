package bridge

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	sframe "github.com/Pablu23/Sframe"
)

// Options configure a Bridge beyond its two streams.
type Options struct {
	Stats       *Stats
	Metrics     *Metrics
	MetricsAddr string
}

func NewDefaultOptions() *Options {
	return &Options{
		Stats: &Stats{},
	}
}

// Bridge pumps frames between two byte streams. Each direction scans
// its source with the resynchronizing receiver and re-frames every
// recovered packet onto the sink, so noise and corrupt frames never
// cross the bridge. The source byte of each packet is preserved.
type Bridge struct {
	left    io.ReadWriteCloser
	right   io.ReadWriteCloser
	options *Options

	closeOnce sync.Once
	closeErr  error
}

// New builds a bridge over two already-open streams.
func New(left, right io.ReadWriteCloser, opts ...func(*Options)) *Bridge {
	options := NewDefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &Bridge{
		left:    left,
		right:   right,
		options: options,
	}
}

// Open dials both configured endpoints and builds a bridge over them.
func Open(cfg Config, opts ...func(*Options)) (*Bridge, error) {
	left, err := Dial(cfg.Left.Endpoint)
	if err != nil {
		return nil, err
	}
	right, err := Dial(cfg.Right.Endpoint)
	if err != nil {
		left.Close()
		return nil, err
	}
	return New(left, right, opts...), nil
}

// Stats returns the bridge's traffic statistics collector.
func (b *Bridge) Stats() *Stats {
	return b.options.Stats
}

// Run pumps both directions until one stream ends, a transport fails
// or ctx is cancelled. A clean end of either stream stops the bridge
// and is not an error. Run closes both streams before returning, so a
// Bridge runs once.
func (b *Bridge) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if b.options.Metrics != nil && b.options.MetricsAddr != "" {
		g.Go(func() error {
			return b.options.Metrics.Serve(ctx, b.options.MetricsAddr)
		})
		log.WithField("Address", b.options.MetricsAddr).Info("Serving metrics")
	}

	g.Go(func() error {
		return b.pump(ctx, LeftToRight, b.left, b.right)
	})
	g.Go(func() error {
		return b.pump(ctx, RightToLeft, b.right, b.left)
	})

	// A blocked Read only notices cancellation when its stream dies,
	// so closing both unblocks the losing direction.
	go func() {
		<-ctx.Done()
		b.Close()
	}()

	err := g.Wait()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// pump moves frames from src to dst until the stream ends. It returns
// io.EOF on a clean end so Run can tell shutdown from failure.
func (b *Bridge) pump(ctx context.Context, dir Direction, src io.Reader, dst io.Writer) error {
	logger := log.WithField("Direction", dir.String())
	var in sframe.Framer

	for {
		pck, err := in.ReceiveContext(ctx, src)
		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("Stream ended")
				return io.EOF
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WithError(err).Error("Could not read from stream")
			if b.options.Metrics != nil {
				b.options.Metrics.Faults.WithLabelValues(dir.String()).Inc()
			}
			return err
		}

		out := sframe.Framer{Address: pck.Source}
		if err := out.SendContext(ctx, dst, pck); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WithError(err).Error("Could not write to stream")
			if b.options.Metrics != nil {
				b.options.Metrics.Faults.WithLabelValues(dir.String()).Inc()
			}
			return err
		}

		b.options.Stats.Observe(dir, pck)
		if b.options.Metrics != nil {
			b.options.Metrics.Frames.WithLabelValues(dir.String()).Inc()
			b.options.Metrics.Bytes.WithLabelValues(dir.String()).Add(float64(pck.Len() + 6))
		}
		logger.WithFields(log.Fields{
			"Source":      pck.Source,
			"Destination": pck.Destination,
			"Type":        pck.Type,
			"Length":      pck.Len(),
		}).Debug("Forwarded frame")
	}
}

// Close closes both streams, once. Safe to call from any goroutine
// and after Run has returned.
func (b *Bridge) Close() error {
	b.closeOnce.Do(func() {
		var result *multierror.Error
		if err := b.left.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		if err := b.right.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		b.closeErr = result.ErrorOrNil()
	})
	return b.closeErr
}
