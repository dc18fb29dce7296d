package model

import (
	"errors"
	"strings"
)

// Bounds for stream entry fields. Entries arrive from the HTTP API, the
// stations seed file and the document store, so the limits are enforced in
// one place here.
const (
	MaxStationNameLen = 64
	MaxStationURLLen  = 256
)

var (
	ErrEmptyField   = errors.New("stream entry has an empty field")
	ErrFieldTooLong = errors.New("stream entry field exceeds length limit")
	ErrBadScheme    = errors.New("stream url must start with http:// or https://")
)

// StreamEntry is one playlist item: a station name plus its stream URL.
// Identity is positional; entries carry no stable id across edits.
type StreamEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Validate checks the entry against the field bounds and the URL scheme.
func (e StreamEntry) Validate() error {
	if e.Name == "" || e.URL == "" {
		return ErrEmptyField
	}
	if len(e.Name) > MaxStationNameLen || len(e.URL) > MaxStationURLLen {
		return ErrFieldTooLong
	}
	if !ValidStreamURL(e.URL) {
		return ErrBadScheme
	}
	return nil
}

// ValidStreamURL reports whether url carries a scheme the audio pipeline
// can open.
func ValidStreamURL(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// StreamInfo is the snapshot of the currently playing stream. It is
// replaced wholesale when a stream starts and zeroed when playback stops.
// Title, IcyURL, IconURL and Bitrate are filled in by the audio worker as
// the stream reports them.
type StreamInfo struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	IcyURL  string `json:"icyUrl"`
	IconURL string `json:"iconUrl"`
	Bitrate int    `json:"bitrate"` // kbps
}
