package notify

import (
	"testing"

	"Bt1QRadio/core/audio"
	"Bt1QRadio/core/player"
	"Bt1QRadio/model"
	"Bt1QRadio/store"
)

type captureDisplay struct {
	shows []model.StatusSnapshot
}

func (d *captureDisplay) Show(s model.StatusSnapshot) { d.shows = append(d.shows, s) }
func (d *captureDisplay) PowerOn()                    {}
func (d *captureDisplay) PowerOff()                   {}

func newTestBridge(t *testing.T) (*Bridge, *player.Player, *captureDisplay) {
	t.Helper()
	st := store.NewMemoryStore()
	p := player.NewPlayer(audio.NewNop(), st, player.NewPlaylist(20, st))
	d := &captureDisplay{}
	return NewBridge(p, nil, d), p, d
}

func TestTickQuietWithoutChange(t *testing.T) {
	b, _, d := newTestBridge(t)

	for i := 0; i < 5; i++ {
		if b.Tick() {
			t.Fatal("Tick() fired without a change")
		}
	}
	if len(d.shows) != 0 {
		t.Fatalf("display updated %d times, want 0", len(d.shows))
	}
}

func TestTickFiresOncePerChange(t *testing.T) {
	b, p, d := newTestBridge(t)

	p.SetVolume(3)
	if !b.Tick() {
		t.Fatal("Tick() did not fire after volume change")
	}
	if b.Tick() {
		t.Fatal("Tick() fired again without a new change")
	}
	if len(d.shows) != 1 {
		t.Fatalf("display updated %d times, want 1", len(d.shows))
	}
	if d.shows[0].Volume != 3 {
		t.Fatalf("published Volume = %d, want 3", d.shows[0].Volume)
	}
}

func TestTickBatchesMutations(t *testing.T) {
	b, p, d := newTestBridge(t)

	// Several mutations between ticks collapse into one notification.
	p.SetVolume(3)
	p.OnTitle("Artist - Song")
	if !b.Tick() {
		t.Fatal("Tick() did not fire")
	}
	if len(d.shows) != 1 {
		t.Fatalf("display updated %d times, want 1", len(d.shows))
	}
}

func TestTickObservesTitle(t *testing.T) {
	b, p, d := newTestBridge(t)

	if err := p.StartStream("http://x/1", "BBC"); err != nil {
		t.Fatal(err)
	}
	if !b.Tick() {
		t.Fatal("Tick() did not fire after start")
	}

	p.OnTitle("Artist - Song")
	if !b.Tick() {
		t.Fatal("Tick() did not fire after title change")
	}
	last := d.shows[len(d.shows)-1]
	if last.Title != "Artist - Song" {
		t.Fatalf("published Title = %q", last.Title)
	}
}

func TestNilDisplayDefaultsToNop(t *testing.T) {
	st := store.NewMemoryStore()
	p := player.NewPlayer(audio.NewNop(), st, player.NewPlaylist(20, st))
	b := NewBridge(p, nil, nil)

	p.SetVolume(3)
	if !b.Tick() {
		t.Fatal("Tick() did not fire")
	}
}
