package hls

import (
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// Defaults for the tunable knobs of the download pipeline.
const (
	DefaultMaxConcurrent  = 6
	DefaultMaxRetries     = 3
	DefaultChunkSize      = 8192
	DefaultTimeoutTotal   = 30 * time.Second
	DefaultTimeoutConnect = 10 * time.Second
	DefaultBackoffUnit    = time.Second
	DefaultTempDir        = "temp"
	DefaultOutputDir      = "output"
)

// Config carries every tunable the pipeline reads. It is constructed once
// at startup and passed by value into the components that need it; there
// is no ambient global configuration.
type Config struct {
	// MaxConcurrent bounds the number of segment downloads in flight.
	MaxConcurrent int
	// MaxRetries is the total number of attempts per resource.
	MaxRetries int
	// ChunkSize is the buffer size for streamed writes, in bytes.
	ChunkSize int
	// TimeoutTotal bounds one whole download attempt.
	TimeoutTotal time.Duration
	// TimeoutConnect bounds connection establishment.
	TimeoutConnect time.Duration
	// BackoffUnit is the base delay of the exponential retry backoff:
	// the wait before attempt k (k >= 1, zero-indexed) is
	// BackoffUnit * 2^(k-1). No jitter, no cap, so very large retry
	// counts produce very large delays.
	BackoffUnit time.Duration
	// TempDir holds downloaded segments and the chunk list for one run.
	TempDir string
	// Headers are set on every outgoing request.
	Headers map[string]string
	// FFmpegPath overrides the ffmpeg binary looked up on PATH.
	FFmpegPath string
	// Limit caps the number of segments downloaded; 0 means no cap.
	Limit int
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent:  DefaultMaxConcurrent,
		MaxRetries:     DefaultMaxRetries,
		ChunkSize:      DefaultChunkSize,
		TimeoutTotal:   DefaultTimeoutTotal,
		TimeoutConnect: DefaultTimeoutConnect,
		BackoffUnit:    DefaultBackoffUnit,
		TempDir:        DefaultTempDir,
	}
}

// ConfigFromEnv builds a Config from HLSGET_* environment variables,
// falling back to the defaults for anything unset or unparsable.
// Recognized variables: HLSGET_MAX_CONCURRENT, HLSGET_MAX_RETRIES,
// HLSGET_CHUNK_SIZE (bytes), HLSGET_TIMEOUT_TOTAL and
// HLSGET_TIMEOUT_CONNECT (seconds), HLSGET_TEMP_DIR.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v, ok := envInt("HLSGET_MAX_CONCURRENT"); ok {
		cfg.MaxConcurrent = v
	}
	if v, ok := envInt("HLSGET_MAX_RETRIES"); ok {
		cfg.MaxRetries = v
	}
	if v, ok := envInt("HLSGET_CHUNK_SIZE"); ok {
		cfg.ChunkSize = v
	}
	if v, ok := envInt("HLSGET_TIMEOUT_TOTAL"); ok {
		cfg.TimeoutTotal = time.Duration(v) * time.Second
	}
	if v, ok := envInt("HLSGET_TIMEOUT_CONNECT"); ok {
		cfg.TimeoutConnect = time.Duration(v) * time.Second
	}
	if v := os.Getenv("HLSGET_TEMP_DIR"); v != "" {
		cfg.TempDir = v
	}

	return cfg
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// LoadHeaders loads custom HTTP headers from a JSON file. An empty path
// yields a nil map.
func LoadHeaders(headersFile string) (map[string]string, error) {
	if headersFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(headersFile)
	if err != nil {
		return nil, errors.Wrap(err, "read headers file")
	}

	var headers map[string]string
	if err := json.Unmarshal(data, &headers); err != nil {
		return nil, errors.Wrap(err, "parse headers file")
	}

	return headers, nil
}
