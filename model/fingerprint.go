package model

// Fingerprints are cheap digests of observable player state. The protocol
// idle mode and the change notification bridge both compare fingerprints
// across ticks instead of re-serializing full state, so cost scales with
// the rate of actual change rather than the polling frequency.

// TitleFingerprint digests the stream title with a base-31 rolling hash.
func TitleFingerprint(title string) uint32 {
	var h uint32
	for _, c := range []byte(title) {
		h = h*31 + uint32(c)
	}
	return h
}

// StatusFingerprint packs the playing flag, native volume and bitrate into
// one comparable word.
func StatusFingerprint(playing bool, volume, bitrate int) uint32 {
	fp := uint32(volume&0xff)<<16 | uint32(bitrate&0x7fff)<<1
	if playing {
		fp |= 1
	}
	return fp
}

// Fingerprints computes both digests from a status snapshot.
func Fingerprints(s StatusSnapshot) (title, status uint32) {
	return TitleFingerprint(s.Title), StatusFingerprint(s.Playing, s.Volume, s.Bitrate)
}
