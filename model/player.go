package model

// Native volume and tone ranges of the audio hardware.
const (
	VolumeMin = 0
	VolumeMax = 22
	ToneMin   = -6
	ToneMax   = 6
)

// PlayerState is the persisted playback state document. It is created from
// the stored snapshot (or defaults) at startup and saved back at discrete
// checkpoints, not continuously.
type PlayerState struct {
	Playing       bool  `json:"playing"`
	Volume        int   `json:"volume"` // native scale 0..22
	Bass          int   `json:"bass"`   // -6..6
	Mid           int   `json:"mid"`
	Treble        int   `json:"treble"`
	PlaylistIndex int   `json:"playlistIndex"`
	Dirty         bool  `json:"-"` // needs persisting, never stored itself
	PlayStartTime int64 `json:"playStartTime"` // unix seconds, 0 when stopped
	TotalPlayTime int64 `json:"totalPlayTime"` // accumulated seconds

	// Last stream, remembered so a restart (or a bare play) can resume it.
	LastURL  string `json:"lastUrl"`
	LastName string `json:"lastName"`
}

// DefaultPlayerState returns the state used when no snapshot exists yet.
func DefaultPlayerState() PlayerState {
	return PlayerState{
		Volume:        12,
		PlaylistIndex: -1,
	}
}

// StatusSnapshot is the read-only view handed to the display and to status
// subscribers. It is what the change notification bridge serializes.
type StatusSnapshot struct {
	Playing bool   `json:"playing"`
	Title   string `json:"title"`
	Name    string `json:"name"`
	Volume  int    `json:"volume"` // native scale
	Bitrate int    `json:"bitrate"`
}
