package control

import (
	"sync"
	"testing"
	"time"

	"Bt1QRadio/core/input"
	"Bt1QRadio/core/player"
	"Bt1QRadio/model"
	"Bt1QRadio/store"
)

// fakeAudio lets tests kill the feed underneath a playing state.
type fakeAudio struct {
	mu       sync.Mutex
	running  bool
	connects int
}

func (f *fakeAudio) Connect(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = true
	f.connects++
	return nil
}

func (f *fakeAudio) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
}

func (f *fakeAudio) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

func (f *fakeAudio) SetVolume(int)         {}
func (f *fakeAudio) SetTone(int, int, int) {}
func (f *fakeAudio) CurrentBitrate() int   { return 0 }

func (f *fakeAudio) kill() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
}

func (f *fakeAudio) connectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connects
}

func newTestLoop(t *testing.T, retryWait time.Duration) (*Loop, *player.Player, *fakeAudio, *input.Flags) {
	t.Helper()
	fa := &fakeAudio{}
	st := store.NewMemoryStore()
	pl := player.NewPlaylist(20, st)
	p := player.NewPlayer(fa, st, pl)
	flags := &input.Flags{}
	l := New(p, fa, nil, nil, flags, 10*time.Millisecond, retryWait)
	return l, p, fa, flags
}

func TestRotaryAdjustsVolume(t *testing.T) {
	l, p, _, flags := newTestLoop(t, time.Second)
	start := p.Volume()

	flags.AddRotary(2)
	l.Step()
	if got := p.Volume(); got != start+2 {
		t.Fatalf("Volume() = %d, want %d", got, start+2)
	}

	flags.AddRotary(-3)
	l.Step()
	if got := p.Volume(); got != start-1 {
		t.Fatalf("Volume() = %d, want %d", got, start-1)
	}
}

func TestButtonTogglesPlayback(t *testing.T) {
	l, p, _, flags := newTestLoop(t, time.Second)
	if err := p.StartStream("http://x/1", "BBC"); err != nil {
		t.Fatal(err)
	}

	flags.PressButton()
	l.Step()
	if p.State().Playing {
		t.Fatal("still playing after button press")
	}

	flags.PressButton()
	l.Step()
	if !p.State().Playing {
		t.Fatal("did not resume after second button press")
	}
	if got := p.Stream().Name; got != "BBC" {
		t.Fatalf("resumed Stream().Name = %q, want BBC", got)
	}
}

func TestEvenButtonPressesCancelOut(t *testing.T) {
	l, p, _, flags := newTestLoop(t, time.Second)
	if err := p.StartStream("http://x/1", "BBC"); err != nil {
		t.Fatal(err)
	}

	flags.PressButton()
	flags.PressButton()
	l.Step()
	if !p.State().Playing {
		t.Fatal("paired button presses toggled playback")
	}
}

func TestTouchAdvancesStation(t *testing.T) {
	l, p, _, flags := newTestLoop(t, time.Second)
	p.Playlist().AddItem(model.StreamEntry{Name: "BBC", URL: "http://x/1"})
	p.Playlist().AddItem(model.StreamEntry{Name: "Jazz", URL: "http://x/2"})

	flags.PressTouch()
	l.Step()
	if got := p.Stream().Name; got != "Jazz" {
		t.Fatalf("Stream().Name after touch = %q, want Jazz", got)
	}
}

func TestTouchOnEmptyPlaylist(t *testing.T) {
	l, p, _, flags := newTestLoop(t, time.Second)

	flags.PressTouch()
	l.Step() // must not panic or start anything
	if p.State().Playing {
		t.Fatal("playing after touch on empty playlist")
	}
}

func TestStreamRetryBackoff(t *testing.T) {
	const wait = 30 * time.Millisecond
	l, p, fa, _ := newTestLoop(t, wait)
	if err := p.StartStream("http://x/1", "BBC"); err != nil {
		t.Fatal(err)
	}
	if fa.connectCount() != 1 {
		t.Fatalf("connects = %d, want 1", fa.connectCount())
	}

	fa.kill()

	// First tick only schedules the reconnect.
	l.Step()
	if fa.connectCount() != 1 {
		t.Fatal("reconnected before the backoff elapsed")
	}

	// Ticks inside the backoff window stay quiet.
	l.Step()
	l.Step()
	if fa.connectCount() != 1 {
		t.Fatal("reconnected inside the backoff window")
	}

	time.Sleep(wait + 10*time.Millisecond)
	l.Step()
	if fa.connectCount() != 2 {
		t.Fatalf("connects = %d, want 2 after backoff", fa.connectCount())
	}
	if !fa.IsRunning() {
		t.Fatal("feed not running after reconnect")
	}
}

func TestStoppedPlayerDoesNotRetry(t *testing.T) {
	l, _, fa, _ := newTestLoop(t, 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	l.Step()
	if fa.connectCount() != 0 {
		t.Fatal("reconnect attempted while stopped")
	}
}

func TestPeriodicStateFlush(t *testing.T) {
	l, p, _, _ := newTestLoop(t, time.Second)
	p.SetVolume(3)
	if !p.Dirty() {
		t.Fatal("SetVolume did not mark state dirty")
	}

	for i := 0; i < persistEvery; i++ {
		l.Step()
	}
	if p.Dirty() {
		t.Fatal("dirty state not flushed after a persist interval")
	}
}
