package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/hollowness-inside/hlsget/pkg/hls"
)

var (
	outputFile     string
	outputDir      string
	tempDir        string
	concurrent     int
	retries        int
	chunkSize      int
	timeoutTotal   int
	timeoutConnect int
	limit          int
	headersFile    string
	ffmpegPath     string
)

func runE(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	// .env overrides are optional; a missing file is fine.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded .env")
	}
	cfg := hls.ConfigFromEnv()

	flags := cmd.Flags()
	if flags.Changed("concurrent") {
		cfg.MaxConcurrent = concurrent
	}
	if flags.Changed("retries") {
		cfg.MaxRetries = retries
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = chunkSize
	}
	if flags.Changed("timeout") {
		cfg.TimeoutTotal = time.Duration(timeoutTotal) * time.Second
	}
	if flags.Changed("connect-timeout") {
		cfg.TimeoutConnect = time.Duration(timeoutConnect) * time.Second
	}
	if flags.Changed("temp-dir") {
		cfg.TempDir = tempDir
	}
	cfg.FFmpegPath = ffmpegPath
	cfg.Limit = limit

	headers, err := hls.LoadHeaders(headersFile)
	if err != nil {
		return err
	}
	cfg.Headers = headers

	url := ""
	if len(args) > 0 {
		url = args[0]
	} else {
		url, err = promptURL()
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := hls.NewPipeline(cfg, log)
	return pipeline.Run(ctx, url, outputFile, outputDir)
}

func promptURL() (string, error) {
	fmt.Print("m3u8 URL: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	url := strings.TrimSpace(line)
	if url == "" {
		return "", fmt.Errorf("no URL provided")
	}
	return url, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "hlsget [url]",
		Short: "Download an HLS playlist and remux its segments into one file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runE,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&outputFile, "output", "o", "", "Output file name (default: timestamped)")
	flags.StringVarP(&outputDir, "path", "p", hls.DefaultOutputDir, "Output directory")
	flags.StringVar(&tempDir, "temp-dir", hls.DefaultTempDir, "Directory for temporary segment files")
	flags.IntVar(&concurrent, "concurrent", hls.DefaultMaxConcurrent, "Maximum concurrent segment downloads")
	flags.IntVar(&retries, "retries", hls.DefaultMaxRetries, "Attempts per segment before giving up")
	flags.IntVar(&chunkSize, "chunk-size", hls.DefaultChunkSize, "Streamed write chunk size in bytes")
	flags.IntVar(&timeoutTotal, "timeout", int(hls.DefaultTimeoutTotal.Seconds()), "Total timeout per attempt in seconds")
	flags.IntVar(&timeoutConnect, "connect-timeout", int(hls.DefaultTimeoutConnect.Seconds()), "Connection timeout in seconds")
	flags.IntVar(&limit, "limit", 0, "Limit the number of segments to download")
	flags.StringVar(&headersFile, "headers", "", "Path to JSON file containing request headers")
	flags.StringVar(&ffmpegPath, "ffmpeg", "", "Path to ffmpeg executable")
	flags.BoolP("verbose", "v", false, "Enable verbose output")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
