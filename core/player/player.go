package player

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"Bt1QRadio/core/audio"
	"Bt1QRadio/logger"
	"Bt1QRadio/model"
	"Bt1QRadio/store"
)

var (
	ErrNoStreamToResume = errors.New("no stream to resume")
	ErrInvalidURL       = errors.New("invalid stream url")
	ErrStreamConnect    = errors.New("stream connect failed")
)

// Player owns the playback state and the current-stream metadata. It is
// the single writer of both; mutations arrive from the control-plane loop,
// the HTTP API, the protocol session and (through the audio event
// callbacks) the audio feed worker. The mutex is held only across field
// updates, never across a collaborator call.
type Player struct {
	mu     sync.Mutex
	state  model.PlayerState
	stream model.StreamInfo

	audio    audio.Controller
	store    store.Store
	playlist *Playlist
}

// NewPlayer creates a stopped player with default state.
func NewPlayer(ctrl audio.Controller, st store.Store, pl *Playlist) *Player {
	return &Player{
		state:    model.DefaultPlayerState(),
		audio:    ctrl,
		store:    st,
		playlist: pl,
	}
}

// Playlist returns the playlist the player selects from.
func (p *Player) Playlist() *Playlist {
	return p.playlist
}

// StartStream starts playing url. An empty url resumes the last remembered
// stream; when none exists it fails with ErrNoStreamToResume. A failed
// connect leaves the player stopped with cleared stream metadata.
func (p *Player) StartStream(url, name string) error {
	if url == "" {
		p.mu.Lock()
		url, name = p.state.LastURL, p.state.LastName
		p.mu.Unlock()
		if url == "" {
			return ErrNoStreamToResume
		}
	}

	if !model.ValidStreamURL(url) {
		return fmt.Errorf("%w: %s", ErrInvalidURL, url)
	}

	p.StopStream()

	if err := p.audio.Connect(url); err != nil {
		logger.Warn("stream connect failed",
			logger.String("url", url),
			logger.ErrorField(err))
		p.mu.Lock()
		p.state.Playing = false
		p.state.PlayStartTime = 0
		p.stream = model.StreamInfo{}
		p.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrStreamConnect, err)
	}

	p.mu.Lock()
	p.state.Playing = true
	p.state.PlayStartTime = time.Now().Unix()
	p.state.LastURL = url
	p.state.LastName = name
	p.state.Dirty = true
	p.stream = model.StreamInfo{URL: url, Name: name}
	vol, bass, mid, treble := p.state.Volume, p.state.Bass, p.state.Mid, p.state.Treble
	p.mu.Unlock()

	p.audio.SetVolume(vol)
	p.audio.SetTone(bass, mid, treble)

	logger.Info("stream started",
		logger.String("url", url),
		logger.String("name", name))
	return nil
}

// StopStream stops playback, folds the elapsed time into the play-time
// total and clears the stream metadata. Stopping a stopped player is a
// no-op apart from the collaborator check.
func (p *Player) StopStream() {
	if p.audio.IsRunning() {
		p.audio.Stop()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.Playing {
		return
	}
	if p.state.PlayStartTime > 0 {
		p.state.TotalPlayTime += time.Now().Unix() - p.state.PlayStartTime
	}
	p.state.Playing = false
	p.state.PlayStartTime = 0
	p.state.Dirty = true
	p.stream = model.StreamInfo{}
}

// PlayIndex selects playlist entry i and starts its stream.
func (p *Player) PlayIndex(i int) error {
	entry, err := p.playlist.Item(i)
	if err != nil {
		return err
	}
	p.SetPlaylistIndex(i)
	return p.StartStream(entry.URL, entry.Name)
}

// PlayCurrent starts the currently selected playlist entry.
func (p *Player) PlayCurrent() error {
	sel := p.playlist.Selection()
	if sel < 0 {
		return ErrEmptyPlaylist
	}
	return p.PlayIndex(sel)
}

// Next advances the playlist selection and starts the newly selected
// stream.
func (p *Player) Next() error {
	sel, err := p.playlist.Next()
	if err != nil {
		return err
	}
	return p.PlayIndex(sel)
}

// Previous retreats the playlist selection and starts the newly selected
// stream.
func (p *Player) Previous() error {
	sel, err := p.playlist.Previous()
	if err != nil {
		return err
	}
	return p.PlayIndex(sel)
}

// SetVolume clamps v to the native range and forwards it to the audio
// collaborator.
func (p *Player) SetVolume(v int) {
	v = clamp(v, model.VolumeMin, model.VolumeMax)

	p.mu.Lock()
	p.state.Volume = v
	p.state.Dirty = true
	p.mu.Unlock()

	p.audio.SetVolume(v)
}

// Volume returns the native-scale volume.
func (p *Player) Volume() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Volume
}

// SetTone clamps the tone values and forwards them to the audio
// collaborator.
func (p *Player) SetTone(bass, mid, treble int) {
	bass = clamp(bass, model.ToneMin, model.ToneMax)
	mid = clamp(mid, model.ToneMin, model.ToneMax)
	treble = clamp(treble, model.ToneMin, model.ToneMax)

	p.mu.Lock()
	p.state.Bass, p.state.Mid, p.state.Treble = bass, mid, treble
	p.state.Dirty = true
	p.mu.Unlock()

	p.audio.SetTone(bass, mid, treble)
}

// Tone returns the current bass, mid and treble settings.
func (p *Player) Tone() (bass, mid, treble int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Bass, p.state.Mid, p.state.Treble
}

// SetPlaylistIndex updates the selection; an invalid index resets per the
// playlist rules.
func (p *Player) SetPlaylistIndex(i int) {
	p.playlist.SetSelection(i)

	p.mu.Lock()
	p.state.PlaylistIndex = p.playlist.Selection()
	p.state.Dirty = true
	p.mu.Unlock()
}

// State returns a copy of the player state.
func (p *Player) State() model.PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Stream returns a copy of the current stream metadata.
func (p *Player) Stream() model.StreamInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stream
}

// Status returns the read-only snapshot consumed by the display, the
// status subscribers and the protocol idle fingerprints.
func (p *Player) Status() model.StatusSnapshot {
	p.mu.Lock()
	s := model.StatusSnapshot{
		Playing: p.state.Playing,
		Title:   p.stream.Title,
		Name:    p.stream.Name,
		Volume:  p.state.Volume,
		Bitrate: p.stream.Bitrate,
	}
	p.mu.Unlock()

	if s.Playing && s.Bitrate == 0 {
		s.Bitrate = p.audio.CurrentBitrate() / 1000
	}
	return s
}

// Elapsed returns whole seconds since playback started, 0 when stopped.
func (p *Player) Elapsed() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.Playing || p.state.PlayStartTime == 0 {
		return 0
	}
	return time.Now().Unix() - p.state.PlayStartTime
}

// Dirty reports whether the state has unpersisted changes.
func (p *Player) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Dirty
}

// SaveState persists the state snapshot. On failure the dirty mark is kept
// so the next checkpoint retries.
func (p *Player) SaveState(ctx context.Context) error {
	p.mu.Lock()
	snapshot := p.state
	p.state.Dirty = false
	p.mu.Unlock()

	if err := p.store.Set(ctx, store.KeyPlayerState, snapshot); err != nil {
		p.mu.Lock()
		p.state.Dirty = true
		p.mu.Unlock()
		return fmt.Errorf("failed to save player state: %w", err)
	}
	return nil
}

// LoadState restores the persisted snapshot. When the snapshot says the
// player was playing, the remembered stream is resumed; a failed resume is
// logged, not fatal. A missing snapshot keeps the defaults.
func (p *Player) LoadState(ctx context.Context) error {
	var loaded model.PlayerState
	if err := p.store.Get(ctx, store.KeyPlayerState, &loaded); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load player state: %w", err)
	}

	loaded.Volume = clamp(loaded.Volume, model.VolumeMin, model.VolumeMax)
	loaded.Bass = clamp(loaded.Bass, model.ToneMin, model.ToneMax)
	loaded.Mid = clamp(loaded.Mid, model.ToneMin, model.ToneMax)
	loaded.Treble = clamp(loaded.Treble, model.ToneMin, model.ToneMax)

	wasPlaying := loaded.Playing
	loaded.Playing = false
	loaded.PlayStartTime = 0
	loaded.Dirty = false

	p.mu.Lock()
	p.state = loaded
	p.mu.Unlock()

	// The playlist may reset a stale index; keep the state in sync so the
	// next checkpoint does not re-persist the corrupt value.
	p.playlist.SetSelection(loaded.PlaylistIndex)
	p.mu.Lock()
	p.state.PlaylistIndex = p.playlist.Selection()
	p.mu.Unlock()

	p.audio.SetVolume(loaded.Volume)
	p.audio.SetTone(loaded.Bass, loaded.Mid, loaded.Treble)

	if wasPlaying {
		if err := p.StartStream("", ""); err != nil {
			logger.Warn("failed to resume stream after restart", logger.ErrorField(err))
		}
	}
	return nil
}

// Audio event callbacks, invoked from the feed worker. Each is a single
// guarded field update.

var _ audio.Events = (*Player)(nil)

func (p *Player) OnTitle(text string) {
	p.mu.Lock()
	p.stream.Title = text
	p.mu.Unlock()
}

func (p *Player) OnStationName(text string) {
	p.mu.Lock()
	if p.stream.Name == "" {
		p.stream.Name = text
	}
	p.mu.Unlock()
}

func (p *Player) OnBitrate(text string) {
	kbps, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return
	}
	p.mu.Lock()
	p.stream.Bitrate = kbps
	p.mu.Unlock()
}

func (p *Player) OnIcyURL(text string) {
	p.mu.Lock()
	p.stream.IcyURL = text
	p.mu.Unlock()
}

func (p *Player) OnCoverArtURL(text string) {
	p.mu.Lock()
	p.stream.IconURL = text
	p.mu.Unlock()
}

// VolumeToPercent maps the native 0..22 scale to protocol percent,
// round-half-up.
func VolumeToPercent(v int) int {
	v = clamp(v, model.VolumeMin, model.VolumeMax)
	return (v*100 + model.VolumeMax/2) / model.VolumeMax
}

// PercentToVolume maps protocol percent to the native 0..22 scale,
// round-half-up.
func PercentToVolume(p int) int {
	p = clamp(p, 0, 100)
	return (p*model.VolumeMax + 50) / 100
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
