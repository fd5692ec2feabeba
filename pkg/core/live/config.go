package live

import "time"

// SessionState represents the current state of the live session.
type SessionState int

const (
	// StateIdle is the initial state before the session is started.
	StateIdle SessionState = iota
	// StateConnecting is while devices are being acquired and the socket dialed.
	StateConnecting
	// StateActive is when duplex audio is flowing.
	StateActive
	// StateClosing is while teardown is in progress. Teardown ends back
	// in StateIdle.
	StateClosing
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateConnecting:
		return "CONNECTING"
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	default:
		return "UNKNOWN"
	}
}

// SessionConfig holds all configuration for a live session.
type SessionConfig struct {
	// APIKey authenticates the connection. Checked before any device
	// is opened.
	APIKey string `json:"-"`

	// Model is the native-audio model handling the call.
	Model string `json:"model"`

	// System is the system prompt for the call.
	System string `json:"system,omitempty"`

	// Voice is the prebuilt voice name for synthesized speech.
	Voice string `json:"voice"`

	// InputSampleRate is the microphone sample rate in Hz. Default: 16000.
	InputSampleRate int `json:"input_sample_rate"`

	// OutputSampleRate is the playback sample rate in Hz. Default: 24000.
	OutputSampleRate int `json:"output_sample_rate"`

	// CaptureBlockSize is the number of samples per outbound audio chunk.
	// Default: 4096.
	CaptureBlockSize int `json:"capture_block_size"`

	// FrameInterval is the spacing between sampled video frames.
	// Default: 1s.
	FrameInterval time.Duration `json:"frame_interval"`

	// JPEGQuality is the encode quality for sampled frames. Default: 70.
	JPEGQuality int `json:"jpeg_quality"`

	// SpeakingDebounce is how long after the last received audio chunk
	// the model is still considered to be speaking. Default: 2s.
	SpeakingDebounce time.Duration `json:"speaking_debounce"`
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Model:            "gemini-2.5-flash-native-audio-preview-09-2025",
		Voice:            "Zephyr",
		InputSampleRate:  16000,
		OutputSampleRate: 24000,
		CaptureBlockSize: 4096,
		FrameInterval:    time.Second,
		JPEGQuality:      70,
		SpeakingDebounce: 2 * time.Second,
	}
}

// AudioConfig specifies audio format parameters.
type AudioConfig struct {
	// SampleRate in Hz. Common values: 16000, 24000, 44100, 48000.
	SampleRate int `json:"sample_rate"`

	// Channels: 1 for mono, 2 for stereo.
	Channels int `json:"channels"`

	// BitsPerSample: typically 16 for PCM.
	BitsPerSample int `json:"bits_per_sample"`
}

// BytesPerSecond returns the audio byte rate.
func (c AudioConfig) BytesPerSecond() int {
	return c.SampleRate * c.Channels * (c.BitsPerSample / 8)
}

// Duration returns the playback duration of the given byte count.
func (c AudioConfig) Duration(bytes int) time.Duration {
	bps := c.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(bytes) * time.Second / time.Duration(bps)
}
