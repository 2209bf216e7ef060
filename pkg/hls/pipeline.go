package hls

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// OutputExt is the container extension of the remuxed output file.
const OutputExt = ".mp4"

// Pipeline runs one end-to-end download: resolve the playlist, fetch its
// segments, write the concat manifest, remux and clean up.
type Pipeline struct {
	cfg Config
	dl  *Downloader
	mux Muxer
	log *logrus.Logger
}

// NewPipeline creates a pipeline from the given configuration. A nil
// logger falls back to a fresh logrus logger writing to stderr.
func NewPipeline(cfg Config, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.New()
	}
	return &Pipeline{
		cfg: cfg,
		dl:  NewDownloader(cfg, log),
		mux: FFmpegMuxer{Path: cfg.FFmpegPath},
		log: log,
	}
}

// Run downloads the playlist at playlistURL and remuxes its segments into
// outputDir/outputFile. An empty outputFile gets a timestamped default; a
// missing container extension is appended; an empty outputDir defaults to
// "output". Fatal steps (playlist download, parse, remux) abort the run.
// Individual segment failures do not: the remux step surfaces missing
// inputs itself. Caller cancellation is fatal once the fetch stage
// returns, so no remux is attempted for an interrupted run.
func (p *Pipeline) Run(ctx context.Context, playlistURL, outputFile, outputDir string) error {
	prefix := strconv.FormatInt(time.Now().UnixMilli(), 10)

	if outputFile == "" {
		outputFile = prefix + "-output" + OutputExt
	}
	if !strings.HasSuffix(outputFile, OutputExt) {
		outputFile += OutputExt
	}
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	if err := os.MkdirAll(p.cfg.TempDir, 0755); err != nil {
		return errors.Wrap(err, "create temp directory")
	}

	segments, err := p.resolveSegments(ctx, playlistURL)
	if err != nil {
		return err
	}
	if p.cfg.Limit > 0 && p.cfg.Limit < len(segments) {
		p.log.Debugf("limiting download to first %d segments", p.cfg.Limit)
		segments = segments[:p.cfg.Limit]
	}
	p.log.Infof("downloading %d segments", len(segments))

	success := p.dl.FetchAll(ctx, segments, p.cfg.TempDir, prefix)
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "download interrupted")
	}
	if success < len(segments) {
		p.log.Warnf("%d of %d segments missing; remux may fail", len(segments)-success, len(segments))
	}

	listPath := filepath.Join(p.cfg.TempDir, prefix+"-chunk_list.txt")
	if err := writeChunkList(listPath, prefix, len(segments)); err != nil {
		return err
	}

	outputPath := filepath.Join(outputDir, outputFile)
	p.log.Infof("remuxing into %s", outputPath)
	if err := p.mux.Combine(listPath, outputPath); err != nil {
		return errors.Wrap(err, "remux segments")
	}

	p.cleanup(prefix, len(segments), listPath)
	p.log.Infof("wrote %s", outputPath)
	return nil
}

// resolveSegments downloads and parses the playlist, following a master
// playlist to its highest-bandwidth variant. The variant may live in a
// subdirectory or on another host entirely, so the segment-resolution
// base is recomputed from the resolved child URL.
func (p *Pipeline) resolveSegments(ctx context.Context, playlistURL string) ([]string, error) {
	base := BaseOf(playlistURL)
	p.log.Debugf("base URL: %s", base)

	data, err := p.fetchPlaylist(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	pl := ParsePlaylist(data, base)
	if pl.IsMaster() {
		variant, _ := pl.BestVariant()
		childURL := Resolve(base, variant.URI)
		p.log.Infof("master playlist: selected variant with bandwidth %d", variant.Bandwidth)

		base = BaseOf(childURL)
		data, err = p.fetchPlaylist(ctx, childURL)
		if err != nil {
			return nil, err
		}
		pl = ParsePlaylist(data, base)
	}

	if len(pl.Segments) == 0 {
		return nil, errors.Errorf("no segments found in playlist %s", playlistURL)
	}
	return pl.Segments, nil
}

// fetchPlaylist downloads a playlist to the temp directory, reads it back
// and removes the file. Failure here is fatal to the run.
func (p *Pipeline) fetchPlaylist(ctx context.Context, rawURL string) (string, error) {
	name := FilenameOf(rawURL)
	if name == "" {
		name = "playlist.m3u8"
	}
	tmp := filepath.Join(p.cfg.TempDir, name)

	if !p.dl.Fetch(ctx, rawURL, tmp) {
		return "", errors.Errorf("failed to download playlist %s", rawURL)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return "", errors.Wrap(err, "read playlist")
	}
	if err := os.Remove(tmp); err != nil {
		p.log.Warnf("could not remove %s: %v", tmp, err)
	}

	return string(data), nil
}

// writeChunkList writes the concat manifest: one line per expected segment
// file, in playlist order, regardless of which downloads succeeded.
func writeChunkList(path, prefix string, count int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create chunk list")
	}

	for i := 0; i < count; i++ {
		// Exactly the line format the concat demuxer expects.
		if _, err := fmt.Fprintf(f, "file '%s'\n", SegmentFileName(prefix, i)); err != nil {
			f.Close()
			return errors.Wrap(err, "write chunk list")
		}
	}

	return f.Close()
}

// cleanup deletes the run's temp files. Each deletion is best-effort: a
// failure is logged and the rest still get removed.
func (p *Pipeline) cleanup(prefix string, count int, listPath string) {
	p.log.Debug("deleting temp files")

	for i := 0; i < count; i++ {
		path := filepath.Join(p.cfg.TempDir, SegmentFileName(prefix, i))
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			p.log.Warnf("could not remove %s: %v", path, err)
		}
	}
	if err := os.Remove(listPath); err != nil {
		p.log.Warnf("could not remove %s: %v", listPath, err)
	}
}
