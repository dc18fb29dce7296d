package audio

// Controller is the capability surface of the audio decode/output
// pipeline. The pipeline runs its own feed worker; this core only starts,
// stops and tunes it. Implementations must be safe for calls from the
// control-plane loop while the feed worker runs.
type Controller interface {
	// Connect opens the stream at url and starts the feed worker.
	Connect(url string) error
	// Stop tears the stream down. Stopping an idle pipeline is a no-op.
	Stop()
	// IsRunning reports whether the feed worker is currently up.
	IsRunning() bool
	// SetVolume applies a native-scale volume (0..22).
	SetVolume(v int)
	// SetTone applies bass, mid and treble (-6..6 each).
	SetTone(bass, mid, treble int)
	// CurrentBitrate returns the measured stream bitrate in bits per
	// second, 0 when unknown.
	CurrentBitrate() int
}

// Events is the callback surface the pipeline invokes from the feed worker
// as the stream reports metadata. Handlers run in worker context and must
// not block.
type Events interface {
	OnTitle(text string)
	OnStationName(text string)
	OnBitrate(text string)
	OnIcyURL(text string)
	OnCoverArtURL(text string)
}
