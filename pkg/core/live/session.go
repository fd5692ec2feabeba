// Package live implements the duplex call session: microphone capture
// and encoding, scheduled playback of model speech, per-second video
// frame sampling, and transcript turn assembly over a single server
// connection.
package live

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tdai-app/tdai/pkg/core"
)

// Transport is the server connection a session speaks through.
type Transport interface {
	// SendMedia transmits one outbound chunk. Failures surface on the
	// event channel, not here; the caller fires and forgets.
	SendMedia(chunk MediaChunk) error

	// Events returns the inbound event stream. The channel closes when
	// the connection ends.
	Events() <-chan ServerEvent

	Close() error
}

// Dialer establishes the transport for a session.
type Dialer func(ctx context.Context, cfg SessionConfig) (Transport, error)

// MicSource delivers captured microphone samples. Read blocks until
// samples are available and returns an error once the device closes.
type MicSource interface {
	Read() ([]int16, error)
	Close() error
}

// Camera is a frame source the session owns and closes on teardown.
type Camera interface {
	FrameSource
	Close() error
}

// MediaDevices acquires capture hardware for a session.
type MediaDevices interface {
	OpenMic(sampleRate int) (MicSource, error)
	OpenCamera() (Camera, error)
}

// Session is one live call. Create with NewSession, then Start; events
// arrive on Events until Stop (or a server-side close) tears everything
// down. At most one Start per session.
type Session struct {
	id      string
	config  SessionConfig
	dialer  Dialer
	devices MediaDevices

	scheduler *Scheduler
	encoder   *Encoder
	turns     TurnAccumulator

	transport Transport
	mic       MicSource
	camera    Camera
	sampler   *FrameSampler

	events       chan Event
	eventsMu     sync.Mutex
	eventsClosed bool
	outbound     chan MediaChunk
	stopping     chan struct{}
	wg           sync.WaitGroup

	mu    sync.Mutex
	state SessionState

	speakingMu    sync.Mutex
	speaking      bool
	speakingTimer *time.Timer

	muted  atomic.Bool
	closed atomic.Bool

	debugEnabled bool
}

// NewSession creates a session. The clock and sink drive the playback
// scheduler; the dialer and devices are invoked on Start.
func NewSession(cfg SessionConfig, dialer Dialer, devices MediaDevices, clock Clock, sink Sink) *Session {
	return &Session{
		id:           generateSessionID(),
		config:       cfg,
		dialer:       dialer,
		devices:      devices,
		scheduler:    NewScheduler(clock, sink, cfg.OutputSampleRate),
		encoder:      NewEncoder(cfg.CaptureBlockSize, cfg.InputSampleRate),
		events:       make(chan Event, 100),
		outbound:     make(chan MediaChunk, 100),
		stopping:     make(chan struct{}),
		state:        StateIdle,
		debugEnabled: os.Getenv("TDAI_DEBUG") != "",
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Events returns the session event channel. It closes after the final
// SessionClosedEvent.
func (s *Session) Events() <-chan Event { return s.events }

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start validates configuration, acquires devices, dials the server,
// and begins streaming. Configuration is checked before any device is
// touched. withVideo additionally opens the camera and samples frames.
func (s *Session) Start(ctx context.Context, withVideo bool) error {
	if s.config.APIKey == "" {
		return core.NewConfigError("API key not set")
	}
	if s.closed.Load() {
		return core.NewSessionError("session already stopped")
	}

	s.mu.Lock()
	if s.state != StateIdle {
		state := s.state
		s.mu.Unlock()
		return core.NewSessionError(fmt.Sprintf("cannot start session in state %s", state))
	}
	s.state = StateConnecting
	s.mu.Unlock()
	s.emit(&StateChangedEvent{From: StateIdle, To: StateConnecting})

	mic, err := s.devices.OpenMic(s.config.InputSampleRate)
	if err != nil {
		s.setState(StateIdle)
		return core.NewMediaAccessError("failed to open microphone", err)
	}

	var camera Camera
	if withVideo {
		camera, err = s.devices.OpenCamera()
		if err != nil {
			mic.Close()
			s.setState(StateIdle)
			return core.NewMediaAccessError("failed to open camera", err)
		}
	}

	transport, err := s.dialer(ctx, s.config)
	if err != nil {
		mic.Close()
		if camera != nil {
			camera.Close()
		}
		s.setState(StateIdle)
		return core.NewSessionError(fmt.Sprintf("failed to connect: %v", err))
	}

	// Stop may have run while the dialer was blocked. The commit is
	// under the same lock as Stop's teardown snapshot, so either Stop
	// sees these fields and closes them, or it never will and Start
	// cleans up here.
	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		transport.Close()
		mic.Close()
		if camera != nil {
			camera.Close()
		}
		return core.NewSessionError("session stopped while connecting")
	}
	s.mic = mic
	s.camera = camera
	s.transport = transport
	if camera != nil {
		s.sampler = NewFrameSampler(camera, s.config.JPEGQuality)
	}
	s.mu.Unlock()

	s.setState(StateActive)
	s.emit(&SessionCreatedEvent{SessionID: s.id, Model: s.config.Model})
	s.debug("session", fmt.Sprintf("started id=%s model=%s video=%v", s.id, s.config.Model, withVideo))

	s.wg.Add(3)
	go s.writeLoop()
	go s.captureLoop()
	go s.readLoop()
	if s.sampler != nil {
		s.wg.Add(1)
		go s.frameLoop()
	}
	return nil
}

// SetMuted controls whether captured audio is transmitted. Capture
// keeps running while muted; chunks are simply not enqueued.
func (s *Session) SetMuted(muted bool) {
	s.muted.Store(muted)
	s.debug("session", fmt.Sprintf("muted=%v", muted))
}

// Muted reports whether outbound audio is suppressed.
func (s *Session) Muted() bool { return s.muted.Load() }

// Stop tears the session down. Every step runs regardless of how far
// Start got; calling Stop again is a no-op.
func (s *Session) Stop() error {
	s.mu.Lock()
	if s.closed.Swap(true) {
		s.mu.Unlock()
		return nil
	}
	mic, camera, transport := s.mic, s.camera, s.transport
	s.mu.Unlock()

	s.setState(StateClosing)
	close(s.stopping)

	if mic != nil {
		mic.Close()
	}
	if camera != nil {
		camera.Close()
	}
	if transport != nil {
		transport.Close()
	}
	s.wg.Wait()

	s.scheduler.Interrupt()

	s.speakingMu.Lock()
	if s.speakingTimer != nil {
		s.speakingTimer.Stop()
		s.speakingTimer = nil
	}
	s.speaking = false
	s.speakingMu.Unlock()
	s.muted.Store(false)

	s.setState(StateIdle)
	s.debug("session", "stopped")
	s.emit(&SessionClosedEvent{})
	s.closeEvents()
	return nil
}

// writeLoop is the single writer feeding the transport. Both producers
// enqueue on s.outbound; serializing here keeps the connection safe
// without locking in the capture paths.
func (s *Session) writeLoop() {
	defer s.wg.Done()
	for {
		select {
		case chunk := <-s.outbound:
			if err := s.transport.SendMedia(chunk); err != nil {
				s.debug("transport", fmt.Sprintf("send failed: %v", err))
			}
		case <-s.stopping:
			return
		}
	}
}

func (s *Session) captureLoop() {
	defer s.wg.Done()
	for {
		samples, err := s.mic.Read()
		if err != nil {
			return
		}
		for _, chunk := range s.encoder.WritePCM16(samples) {
			if s.muted.Load() {
				continue
			}
			s.enqueue(chunk)
		}
	}
}

func (s *Session) frameLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.config.FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if chunk, ok := s.sampler.Sample(); ok {
				s.enqueue(chunk)
			}
		case <-s.stopping:
			return
		}
	}
}

// enqueue drops the chunk if the outbound buffer is full rather than
// blocking capture.
func (s *Session) enqueue(chunk MediaChunk) {
	select {
	case s.outbound <- chunk:
	case <-s.stopping:
	default:
		s.debug("transport", "outbound buffer full, dropping chunk")
	}
}

func (s *Session) readLoop() {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-s.transport.Events():
			if !ok {
				go s.Stop()
				return
			}
			s.dispatch(ev)
		case <-s.stopping:
			return
		}
	}
}

func (s *Session) dispatch(ev ServerEvent) {
	switch e := ev.(type) {
	case *AudioEvent:
		s.scheduler.Schedule(e.Data)
		s.markSpeaking()
	case *ServerInterruptedEvent:
		s.scheduler.Interrupt()
		s.debug("playback", "interrupted, queue cleared")
		s.emit(&InterruptedEvent{})
	case *InputTranscriptEvent:
		s.turns.AddInput(e.Text)
	case *OutputTranscriptEvent:
		s.turns.AddOutput(e.Text)
	case *TurnCompleteEvent:
		if msgs := s.turns.Complete(); len(msgs) > 0 {
			s.emit(&TurnMessagesEvent{Messages: msgs})
		}
	case *ServerErrorEvent:
		s.emit(&ErrorEvent{Err: core.NewSessionError(e.Err.Error())})
	case *ServerClosedEvent:
		go s.Stop()
	}
}

// markSpeaking flags the model as speaking and re-arms the debounce.
// Each audio chunk pushes the stop signal out by the full window.
func (s *Session) markSpeaking() {
	s.speakingMu.Lock()
	defer s.speakingMu.Unlock()

	if !s.speaking {
		s.speaking = true
		s.emit(&SpeakingChangedEvent{Speaking: true})
	}
	if s.speakingTimer != nil {
		s.speakingTimer.Stop()
	}
	s.speakingTimer = time.AfterFunc(s.config.SpeakingDebounce, func() {
		s.speakingMu.Lock()
		defer s.speakingMu.Unlock()
		if s.speaking {
			s.speaking = false
			s.emit(&SpeakingChangedEvent{Speaking: false})
		}
	})
}

// Speaking reports whether the model is currently speaking.
func (s *Session) Speaking() bool {
	s.speakingMu.Lock()
	defer s.speakingMu.Unlock()
	return s.speaking
}

func (s *Session) setState(state SessionState) {
	s.mu.Lock()
	old := s.state
	s.state = state
	s.mu.Unlock()
	if old != state {
		s.emit(&StateChangedEvent{From: old, To: state})
		s.debug("state", fmt.Sprintf("%s -> %s", old, state))
	}
}

// emit delivers an event without blocking; slow consumers lose events.
// Events raised after teardown finishes are dropped.
func (s *Session) emit(event Event) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()
	if s.eventsClosed {
		return
	}
	select {
	case s.events <- event:
	default:
	}
}

func (s *Session) closeEvents() {
	s.eventsMu.Lock()
	s.eventsClosed = true
	close(s.events)
	s.eventsMu.Unlock()
}

func (s *Session) debug(category, message string) {
	if !s.debugEnabled {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(os.Stderr, "\033[90m%s\033[0m [\033[36m%-10s\033[0m] %s\n", timestamp, category, message)
	s.emit(&DebugEvent{Category: category, Message: message})
}

func generateSessionID() string {
	return fmt.Sprintf("live_%d", time.Now().UnixNano())
}
