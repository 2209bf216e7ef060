// Package hls downloads HTTP Live Streaming playlists and remuxes their
// segments into a single container file. It resolves master playlists to
// their highest-bandwidth variant, downloads segments concurrently with
// retry and exponential backoff, and concatenates them losslessly using
// ffmpeg's concat demuxer.
package hls
