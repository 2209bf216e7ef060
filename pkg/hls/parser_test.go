package hls

import (
	"reflect"
	"testing"
)

const testBase = "https://example.com/vod"

func TestParsePlaylist_MediaSegmentsInOrder(t *testing.T) {
	manifest := `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXTINF:9.009,
seg1.ts
#EXTINF:9.009,
seg2.ts
#EXTINF:3.003,
seg3.ts
#EXT-X-ENDLIST
`

	pl := ParsePlaylist(manifest, testBase)
	if pl.IsMaster() {
		t.Fatal("media playlist misdetected as master")
	}

	want := []string{
		testBase + "/seg1.ts",
		testBase + "/seg2.ts",
		testBase + "/seg3.ts",
	}
	if !reflect.DeepEqual(pl.Segments, want) {
		t.Fatalf("segments mismatch:\n got %v\nwant %v", pl.Segments, want)
	}
}

func TestParsePlaylist_MapURIEmittedInPlace(t *testing.T) {
	manifest := `#EXTM3U
#EXT-X-MAP:URI="init.mp4"
#EXTINF:4.0,
seg1.m4s
#EXTINF:4.0,
seg2.m4s
`

	pl := ParsePlaylist(manifest, testBase)

	want := []string{
		testBase + "/init.mp4",
		testBase + "/seg1.m4s",
		testBase + "/seg2.m4s",
	}
	if !reflect.DeepEqual(pl.Segments, want) {
		t.Fatalf("segments mismatch:\n got %v\nwant %v", pl.Segments, want)
	}
}

func TestParsePlaylist_MapDoesNotConsumeNextLine(t *testing.T) {
	// The map tag carries its URI inline; the following #EXTINF/URI pair
	// must still be picked up normally.
	manifest := "#EXT-X-MAP:URI=\"init.mp4\"\n#EXTINF:4.0,\nseg1.m4s\n"

	pl := ParsePlaylist(manifest, testBase)
	if len(pl.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d: %v", len(pl.Segments), pl.Segments)
	}
}

func TestParsePlaylist_TrailingDurationTagDiscarded(t *testing.T) {
	manifest := "#EXTINF:9.0,\nseg1.ts\n#EXTINF:9.0,\n"

	pl := ParsePlaylist(manifest, testBase)
	if len(pl.Segments) != 1 {
		t.Fatalf("trailing #EXTINF should emit nothing, got %v", pl.Segments)
	}
}

func TestParsePlaylist_TagBetweenDurationAndURI(t *testing.T) {
	manifest := "#EXTINF:9.0,\n#EXT-X-PROGRAM-DATE-TIME:2024-01-01T00:00:00Z\nseg1.ts\n"

	pl := ParsePlaylist(manifest, testBase)

	want := []string{testBase + "/seg1.ts"}
	if !reflect.DeepEqual(pl.Segments, want) {
		t.Fatalf("tag line consumed the pending segment URI: %v", pl.Segments)
	}
}

func TestParsePlaylist_MasterVariants(t *testing.T) {
	manifest := `#EXTM3U
#EXT-X-STREAM-INF:BANDWIDTH=200000,RESOLUTION=640x360
lo.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=1280x720,CODECS="avc1.4d401f,mp4a.40.2"
hi/hi.m3u8
`

	pl := ParsePlaylist(manifest, testBase)
	if !pl.IsMaster() {
		t.Fatal("master playlist not detected")
	}
	if len(pl.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(pl.Variants))
	}

	best, ok := pl.BestVariant()
	if !ok {
		t.Fatal("expected a best variant")
	}
	if best.Bandwidth != 800000 || best.URI != "hi/hi.m3u8" {
		t.Fatalf("unexpected best variant: %+v", best)
	}
	if best.Resolution != "1280x720" {
		t.Fatalf("resolution not parsed: %+v", best)
	}
}

func TestBestVariant_TieKeepsFirstParsed(t *testing.T) {
	manifest := `#EXT-X-STREAM-INF:BANDWIDTH=500000
first.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=500000
second.m3u8
`

	pl := ParsePlaylist(manifest, testBase)
	best, _ := pl.BestVariant()
	if best.URI != "first.m3u8" {
		t.Fatalf("tie should keep the first-seen variant, got %q", best.URI)
	}
}

func TestBestVariant_MediaPlaylistHasNone(t *testing.T) {
	pl := ParsePlaylist("#EXTINF:4.0,\nseg1.ts\n", testBase)
	if _, ok := pl.BestVariant(); ok {
		t.Fatal("media playlist should not yield a variant")
	}
}

func TestParseAttributes_QuotedCommas(t *testing.T) {
	attrs := parseAttributes(`#EXT-X-STREAM-INF:BANDWIDTH=1000,CODECS="avc1,mp4a",RESOLUTION=1920x1080`)

	if attrs["BANDWIDTH"] != "1000" {
		t.Fatalf("BANDWIDTH = %q", attrs["BANDWIDTH"])
	}
	if attrs["CODECS"] != "avc1,mp4a" {
		t.Fatalf("CODECS = %q", attrs["CODECS"])
	}
	if attrs["RESOLUTION"] != "1920x1080" {
		t.Fatalf("RESOLUTION = %q", attrs["RESOLUTION"])
	}
}

func TestParsePlaylist_SegmentCountMatchesTagCount(t *testing.T) {
	manifest := `#EXT-X-MAP:URI="init.mp4"
#EXTINF:4.0,
a.ts
#EXTINF:4.0,
b.ts
#EXT-X-ENDLIST
`

	pl := ParsePlaylist(manifest, testBase)
	// one map tag + two duration tags
	if len(pl.Segments) != 3 {
		t.Fatalf("expected 3 segment URLs, got %d", len(pl.Segments))
	}
}
