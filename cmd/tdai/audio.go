package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"

	"github.com/tdai-app/tdai/pkg/core/live"
)

// devices wires real capture hardware into a call session.
type devices struct {
	malgoCtx *malgo.AllocatedContext
}

func newDevices() (*devices, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{
		ThreadPriority: malgo.ThreadPriorityRealtime,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}
	return &devices{malgoCtx: ctx}, nil
}

func (d *devices) OpenMic(sampleRate int) (live.MicSource, error) {
	return newMicReader(d.malgoCtx, sampleRate)
}

// OpenCamera returns a file-backed frame source: TDAI_CAMERA names an
// image file that is re-read for every frame.
func (d *devices) OpenCamera() (live.Camera, error) {
	path := os.Getenv("TDAI_CAMERA")
	if path == "" {
		return nil, fmt.Errorf("TDAI_CAMERA not set")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	return &fileCamera{path: path}, nil
}

func (d *devices) Close() {
	_ = d.malgoCtx.Uninit()
	d.malgoCtx.Free()
}

// micReader captures microphone audio via malgo.
type micReader struct {
	device *malgo.Device

	mu     sync.Mutex
	cond   *sync.Cond
	buf    []int16
	closed bool
}

func newMicReader(ctx *malgo.AllocatedContext, sampleRate int) (*micReader, error) {
	m := &micReader{}
	m.cond = sync.NewCond(&m.mu)

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.Capture.Format = malgo.FormatS16
	config.Capture.Channels = 1
	config.SampleRate = uint32(sampleRate)
	config.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(outputSamples, inputSamples []byte, frameCount uint32) {
			samples := make([]int16, len(inputSamples)/2)
			for i := range samples {
				samples[i] = int16(inputSamples[i*2]) | int16(inputSamples[i*2+1])<<8
			}
			m.mu.Lock()
			if !m.closed {
				m.buf = append(m.buf, samples...)
				m.cond.Signal()
			}
			m.mu.Unlock()
		},
	}

	device, err := malgo.InitDevice(ctx.Context, config, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("start capture device: %w", err)
	}
	m.device = device
	return m, nil
}

// Read blocks until captured samples are available.
func (m *micReader) Read() ([]int16, error) {
	m.mu.Lock()
	for len(m.buf) == 0 && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		m.mu.Unlock()
		return nil, fmt.Errorf("microphone closed")
	}
	samples := m.buf
	m.buf = nil
	m.mu.Unlock()
	return samples, nil
}

func (m *micReader) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()

	m.device.Uninit()
	return nil
}

// speaker plays scheduled PCM through oto. Chunks arrive back to back
// from the scheduler, so appending to one buffer keeps playback
// gapless; Stop drops whatever has not been pulled yet.
type speaker struct {
	otoCtx *oto.Context
	player *oto.Player

	mu     sync.Mutex
	buf    []byte
	gain   float64
	closed bool
}

func newSpeaker(sampleRate int) (*speaker, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(100) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("init playback context: %w", err)
	}
	<-ready
	return &speaker{otoCtx: otoCtx, gain: 1}, nil
}

// SetVolume scales playback. 0 silences, 1 is unchanged.
func (s *speaker) SetVolume(gain float64) {
	if gain < 0 {
		gain = 0
	}
	if gain > 1 {
		gain = 1
	}
	s.mu.Lock()
	s.gain = gain
	s.mu.Unlock()
}

// PlayAt queues one chunk. The start position is already accounted for
// by arrival order.
func (s *speaker) PlayAt(start time.Duration, pcm []byte) {
	s.mu.Lock()
	if !s.closed {
		s.buf = append(s.buf, pcm...)
	}
	s.mu.Unlock()

	if s.player == nil {
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}
}

// Stop discards queued audio.
func (s *speaker) Stop() {
	s.mu.Lock()
	s.buf = nil
	s.mu.Unlock()
}

// Read feeds the player, returning silence when the queue is empty.
func (s *speaker) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	if s.gain != 1 {
		for i := 0; i+1 < n; i += 2 {
			sample := int16(uint16(p[i]) | uint16(p[i+1])<<8)
			scaled := int16(float64(sample) * s.gain)
			p[i] = byte(scaled)
			p[i+1] = byte(scaled >> 8)
		}
	}
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

func (s *speaker) Close() error {
	s.mu.Lock()
	s.closed = true
	s.buf = nil
	s.mu.Unlock()

	if s.player != nil {
		s.player.Close()
	}
	return nil
}

// fileCamera serves frames from a still image on disk.
type fileCamera struct {
	path string
}

func (c *fileCamera) Grab() (image.Image, bool) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, false
	}
	return img, true
}

func (c *fileCamera) Close() error { return nil }

// wallClock positions playback on the session's own timeline.
type wallClock struct {
	start time.Time
}

func newWallClock() *wallClock {
	return &wallClock{start: time.Now()}
}

func (c *wallClock) Now() time.Duration {
	return time.Since(c.start)
}
