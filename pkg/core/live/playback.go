package live

import (
	"sync"
	"time"
)

// Clock supplies the playback timeline position. The scheduler never
// reads wall time directly so tests can drive it deterministically.
type Clock interface {
	Now() time.Duration
}

// Sink receives scheduled audio. PlayAt must not block; Stop discards
// everything queued but not yet played.
type Sink interface {
	PlayAt(start time.Duration, pcm []byte)
	Stop()
}

// Scheduler queues decoded model speech for gapless playback. Chunks are
// placed back to back on the sink's timeline: each one starts exactly
// where the previous one ends, or immediately if the cursor has fallen
// behind the clock.
type Scheduler struct {
	clock  Clock
	sink   Sink
	format AudioConfig

	mu        sync.Mutex
	nextStart time.Duration
}

// NewScheduler creates a scheduler playing mono 16-bit PCM at the given
// sample rate.
func NewScheduler(clock Clock, sink Sink, sampleRate int) *Scheduler {
	return &Scheduler{
		clock: clock,
		sink:  sink,
		format: AudioConfig{
			SampleRate:    sampleRate,
			Channels:      1,
			BitsPerSample: 16,
		},
	}
}

// Schedule queues one chunk and returns the start position it was
// assigned.
func (s *Scheduler) Schedule(pcm []byte) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now := s.clock.Now(); s.nextStart < now {
		s.nextStart = now
	}
	start := s.nextStart
	s.sink.PlayAt(start, pcm)
	s.nextStart += s.format.Duration(len(pcm))
	return start
}

// Interrupt stops the sink and resets the cursor to zero, so the next
// chunk plays immediately.
func (s *Scheduler) Interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sink.Stop()
	s.nextStart = 0
}

// NextStart returns the current cursor position.
func (s *Scheduler) NextStart() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}
