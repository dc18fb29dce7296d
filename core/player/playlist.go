package player

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"Bt1QRadio/logger"
	"Bt1QRadio/model"
	"Bt1QRadio/store"
)

var (
	ErrPlaylistFull  = errors.New("playlist is full")
	ErrOutOfRange    = errors.New("playlist index out of range")
	ErrEmptyPlaylist = errors.New("playlist is empty")
)

// Playlist is the bounded ordered collection of stream entries plus the
// current selection. Invariants: 0 <= count <= capacity and selection in
// [0,count), or -1 exactly when the playlist is empty. Safe for concurrent
// use; the HTTP API, the protocol session and the stations watcher all
// mutate it.
type Playlist struct {
	mu        sync.RWMutex
	entries   []model.StreamEntry
	capacity  int
	selection int
	store     store.Store
}

// NewPlaylist creates an empty playlist with the given capacity.
func NewPlaylist(capacity int, st store.Store) *Playlist {
	if capacity <= 0 {
		capacity = 20
	}
	return &Playlist{
		capacity:  capacity,
		selection: -1,
		store:     st,
	}
}

// Count returns the number of entries.
func (p *Playlist) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Capacity returns the maximum number of entries.
func (p *Playlist) Capacity() int {
	return p.capacity
}

// Selection returns the current selection index, -1 when empty.
func (p *Playlist) Selection() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selection
}

// SetSelection keeps a valid index; anything else resets to 0 when the
// playlist is nonempty and -1 otherwise.
func (p *Playlist) SetSelection(i int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setSelectionLocked(i)
}

func (p *Playlist) setSelectionLocked(i int) {
	switch {
	case i >= 0 && i < len(p.entries):
		p.selection = i
	case len(p.entries) > 0:
		p.selection = 0
	default:
		p.selection = -1
	}
}

// Item returns the entry at index i, bounds-checked.
func (p *Playlist) Item(i int) (model.StreamEntry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i < 0 || i >= len(p.entries) {
		return model.StreamEntry{}, ErrOutOfRange
	}
	return p.entries[i], nil
}

// Items returns a copy of all entries in order.
func (p *Playlist) Items() []model.StreamEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.StreamEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// AddItem appends a validated entry. Adding to a full playlist returns
// ErrPlaylistFull rather than silently truncating.
func (p *Playlist) AddItem(e model.StreamEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) >= p.capacity {
		return ErrPlaylistFull
	}
	p.entries = append(p.entries, e)
	if p.selection < 0 {
		p.selection = 0
	}
	return nil
}

// SetItem replaces the entry at index i.
func (p *Playlist) SetItem(i int, e model.StreamEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.entries) {
		return ErrOutOfRange
	}
	p.entries[i] = e
	return nil
}

// RemoveItem deletes the entry at index i and compacts the list by
// shifting trailing entries down.
func (p *Playlist) RemoveItem(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.entries) {
		return ErrOutOfRange
	}
	p.entries = append(p.entries[:i], p.entries[i+1:]...)

	// Keep the selection on the same entry where possible.
	if i < p.selection {
		p.selection--
	}
	p.setSelectionLocked(p.selection)
	return nil
}

// Clear removes all entries.
func (p *Playlist) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = p.entries[:0]
	p.selection = -1
}

// Next advances the selection modulo the playlist length and returns the
// new selection.
func (p *Playlist) Next() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) == 0 {
		return -1, ErrEmptyPlaylist
	}
	p.selection = (p.selection + 1) % len(p.entries)
	return p.selection, nil
}

// Previous retreats the selection modulo the playlist length and returns
// the new selection.
func (p *Playlist) Previous() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) == 0 {
		return -1, ErrEmptyPlaylist
	}
	p.selection = (p.selection + len(p.entries) - 1) % len(p.entries)
	return p.selection, nil
}

// Validate re-clamps count and selection after an external or corrupt
// load.
func (p *Playlist) Validate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.entries) > p.capacity {
		p.entries = p.entries[:p.capacity]
	}
	p.setSelectionLocked(p.selection)
}

// Load replaces the playlist with the stored document. Entries failing
// validation are dropped. A missing document leaves the playlist empty.
func (p *Playlist) Load(ctx context.Context) error {
	var stored []model.StreamEntry
	if err := p.store.Get(ctx, store.KeyPlaylist, &stored); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load playlist: %w", err)
	}

	p.Replace(stored)
	return nil
}

// Replace swaps in a new entry list, dropping invalid entries and anything
// beyond capacity.
func (p *Playlist) Replace(entries []model.StreamEntry) {
	kept := make([]model.StreamEntry, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			logger.Warn("dropping invalid playlist entry",
				logger.String("name", e.Name),
				logger.String("url", e.URL),
				logger.ErrorField(err))
			continue
		}
		if len(kept) >= p.capacity {
			logger.Warn("playlist document exceeds capacity, dropping tail",
				logger.Int("capacity", p.capacity))
			break
		}
		kept = append(kept, e)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = kept
	p.setSelectionLocked(p.selection)
}

// Save persists the playlist as an ordered array.
func (p *Playlist) Save(ctx context.Context) error {
	if err := p.store.Set(ctx, store.KeyPlaylist, p.Items()); err != nil {
		return fmt.Errorf("failed to save playlist: %w", err)
	}
	return nil
}
