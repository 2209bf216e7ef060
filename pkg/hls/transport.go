package hls

import "net/http"

// defaultUserAgent identifies the client when no headers file overrides it.
const defaultUserAgent = "hlsget/1.0"

// HeaderMapTransport injects a fixed set of headers into every request and
// fills in a default User-Agent when neither the request nor the map
// carries one.
type HeaderMapTransport struct {
	Headers map[string]string
	Base    http.RoundTripper
}

func (t *HeaderMapTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", defaultUserAgent)
	}
	return t.Base.RoundTrip(req)
}
