package hls

import (
	"reflect"
	"testing"
)

func TestConcatArgs(t *testing.T) {
	got := concatArgs("temp/run-chunk_list.txt", "output/final.mp4")
	want := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", "temp/run-chunk_list.txt",
		"-c", "copy",
		"output/final.mp4",
	}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("concat args mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestFFmpegMuxer_MissingBinary(t *testing.T) {
	m := FFmpegMuxer{Path: "/nonexistent/ffmpeg-binary"}
	if err := m.Combine("list.txt", "out.mp4"); err == nil {
		t.Fatal("expected an error for a missing binary")
	}
}
