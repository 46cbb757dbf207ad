package bridge

import (
	"sync"
	"sync/atomic"

	"github.com/kelindar/bitmap"

	sframe "github.com/Pablu23/Sframe"
)

// Direction names one of the two pump directions.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

func (d Direction) String() string {
	if d == LeftToRight {
		return "left->right"
	}
	return "right->left"
}

// Stats counts forwarded traffic and keeps a census of the distinct
// source and type bytes seen on the link. Counters are atomic; the
// census bitmaps take the mutex because bitmap.Bitmap is not safe for
// concurrent writers.
type Stats struct {
	frames [2]atomic.Uint64
	bytes  [2]atomic.Uint64

	mu      sync.Mutex
	sources bitmap.Bitmap
	types   bitmap.Bitmap
}

// Observe records one forwarded packet. The byte count is the full
// frame size, header and checksum included.
func (s *Stats) Observe(dir Direction, p *sframe.Packet) {
	s.frames[dir].Add(1)
	s.bytes[dir].Add(uint64(p.Len() + 6))

	s.mu.Lock()
	s.sources.Set(uint32(p.Source))
	s.types.Set(uint32(p.Type))
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of the collected statistics.
type Snapshot struct {
	Frames  [2]uint64
	Bytes   [2]uint64
	Sources []byte
	Types   []byte
}

// Snapshot returns the current counters and census. The census slices
// are sorted ascending, a property of the bitmap iteration order.
func (s *Stats) Snapshot() Snapshot {
	var snap Snapshot
	for dir := range s.frames {
		snap.Frames[dir] = s.frames[dir].Load()
		snap.Bytes[dir] = s.bytes[dir].Load()
	}

	s.mu.Lock()
	s.sources.Range(func(x uint32) {
		snap.Sources = append(snap.Sources, byte(x))
	})
	s.types.Range(func(x uint32) {
		snap.Types = append(snap.Types, byte(x))
	})
	s.mu.Unlock()
	return snap
}
