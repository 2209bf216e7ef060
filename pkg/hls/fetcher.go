package hls

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Downloader fetches remote resources to local files with per-resource
// retry, exponential backoff and bounded concurrency.
type Downloader struct {
	cfg    Config
	client *http.Client
	log    *logrus.Logger

	// progressOut receives the live progress display.
	progressOut io.Writer
	// fetchOne performs one full download with retries. It defaults to
	// (*Downloader).Fetch and exists so batch behavior can be tested
	// without a network.
	fetchOne func(ctx context.Context, url, dest string) bool
}

// NewDownloader creates a downloader from the given configuration. A nil
// logger falls back to a fresh logrus logger writing to stderr.
func NewDownloader(cfg Config, log *logrus.Logger) *Downloader {
	if log == nil {
		log = logrus.New()
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = DefaultChunkSize
	}

	d := &Downloader{
		cfg: cfg,
		client: &http.Client{
			Transport: &HeaderMapTransport{
				Headers: cfg.Headers,
				Base: &http.Transport{
					DialContext: (&net.Dialer{
						Timeout:   cfg.TimeoutConnect,
						KeepAlive: 30 * time.Second,
					}).DialContext,
					MaxIdleConns:          100,
					IdleConnTimeout:       90 * time.Second,
					TLSHandshakeTimeout:   10 * time.Second,
					ExpectContinueTimeout: 1 * time.Second,
				},
			},
		},
		log:         log,
		progressOut: os.Stderr,
	}
	d.fetchOne = d.Fetch
	return d
}

// Fetch downloads one resource to dest, retrying up to MaxRetries times
// with exponential backoff between attempts. It never returns an error:
// all failures are converted to a false result, with a diagnostic logged
// for the final attempt only so retry noise stays out of the output. A
// partial file left by a failed attempt is truncated by the next one.
func (d *Downloader) Fetch(ctx context.Context, rawURL, dest string) bool {
	filename := FilenameOf(rawURL)

	for attempt := 0; attempt < d.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := d.cfg.BackoffUnit << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				d.log.WithError(ctx.Err()).Errorf("download of %q canceled", filename)
				return false
			}
		}

		err := d.attempt(ctx, rawURL, dest)
		if err == nil {
			d.log.Debugf("downloaded %q", filename)
			return true
		}

		if attempt == d.cfg.MaxRetries-1 {
			d.log.WithError(err).Errorf("failed to download %q after %d attempts", filename, d.cfg.MaxRetries)
		}
	}

	return false
}

// attempt performs a single download attempt bounded by TimeoutTotal,
// streaming the body to dest in ChunkSize chunks.
func (d *Downloader) attempt(ctx context.Context, rawURL, dest string) error {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.TimeoutTotal)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// os.Create truncates, so a partial file from an earlier attempt is
	// overwritten rather than appended to.
	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, "create file")
	}
	defer out.Close()

	buf := make([]byte, d.cfg.ChunkSize)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return errors.Wrap(werr, "write file")
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return errors.Wrap(rerr, "read body")
		}
	}
}
