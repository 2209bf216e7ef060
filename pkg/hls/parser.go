package hls

import (
	"strconv"
	"strings"
)

const (
	tagStreamInf = "#EXT-X-STREAM-INF"
	tagInf       = "#EXTINF"
	tagMap       = "#EXT-X-MAP"
)

// Variant is one alternative stream referenced from a master playlist.
type Variant struct {
	Bandwidth  int
	Resolution string
	URI        string
}

// Playlist is the result of parsing one m3u8 manifest. A playlist with at
// least one variant is a master playlist; otherwise it is a media playlist
// and Segments holds the resolved segment URLs in playback order.
type Playlist struct {
	Variants []Variant
	Segments []string
}

// IsMaster reports whether the playlist references variant streams rather
// than media segments.
func (p Playlist) IsMaster() bool {
	return len(p.Variants) > 0
}

// BestVariant returns the variant with the greatest bandwidth. When two
// variants carry the same bandwidth the first one parsed wins. The second
// return value is false for media playlists.
func (p Playlist) BestVariant() (Variant, bool) {
	if len(p.Variants) == 0 {
		return Variant{}, false
	}

	best := p.Variants[0]
	for _, v := range p.Variants[1:] {
		if v.Bandwidth > best.Bandwidth {
			best = v
		}
	}
	return best, true
}

// ParsePlaylist parses m3u8 manifest text. Segment and map URIs are
// resolved against baseURL; variant URIs are kept as written so the caller
// can recompute the base before resolving the chosen child playlist.
//
// A segment URI is the first non-tag line following an #EXTINF tag; an
// #EXT-X-MAP tag carries its URI inline as a quoted attribute and emits a
// URL at the point it occurs. A trailing #EXTINF with no following URI is
// discarded. Encryption, end-of-list and all other tags are ignored.
func ParsePlaylist(data, baseURL string) Playlist {
	var (
		pl              Playlist
		awaitingSegment bool
		awaitingVariant bool
		pending         Variant
	)

	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, tagStreamInf):
			pending = parseStreamInf(line)
			awaitingVariant = true
			awaitingSegment = false

		case strings.HasPrefix(line, tagMap):
			if uri := parseAttributes(line)["URI"]; uri != "" {
				pl.Segments = append(pl.Segments, Resolve(baseURL, uri))
			}

		case strings.HasPrefix(line, tagInf):
			awaitingSegment = true

		case strings.HasPrefix(line, "#"):
			// Unrelated tag between a marker and its URI line.

		default:
			if awaitingVariant {
				pending.URI = line
				pl.Variants = append(pl.Variants, pending)
				awaitingVariant = false
			} else if awaitingSegment {
				pl.Segments = append(pl.Segments, Resolve(baseURL, line))
				awaitingSegment = false
			}
		}
	}

	return pl
}

func parseStreamInf(line string) Variant {
	attrs := parseAttributes(line)

	var v Variant
	if bw, err := strconv.Atoi(attrs["BANDWIDTH"]); err == nil {
		v.Bandwidth = bw
	}
	v.Resolution = attrs["RESOLUTION"]
	return v
}

// parseAttributes reads the KEY=value list following a tag's colon.
// Quoted values may contain commas (e.g. CODECS="avc1,mp4a").
func parseAttributes(line string) map[string]string {
	attrs := make(map[string]string)

	i := strings.IndexByte(line, ':')
	if i < 0 {
		return attrs
	}
	s := line[i+1:]

	for len(s) > 0 {
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}
		key := strings.TrimSpace(s[:eq])
		s = s[eq+1:]

		var val string
		if strings.HasPrefix(s, `"`) {
			end := strings.IndexByte(s[1:], '"')
			if end < 0 {
				val = s[1:]
				s = ""
			} else {
				val = s[1 : end+1]
				s = s[end+2:]
			}
			s = strings.TrimPrefix(s, ",")
		} else if c := strings.IndexByte(s, ','); c >= 0 {
			val = s[:c]
			s = s[c+1:]
		} else {
			val = s
			s = ""
		}

		if key != "" {
			attrs[key] = val
		}
	}

	return attrs
}
