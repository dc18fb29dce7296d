package audio

import "sync"

// Nop is a stand-in Controller for deployments and tests without the
// hardware pipeline attached. It tracks the control surface faithfully
// but moves no audio.
type Nop struct {
	mu      sync.Mutex
	running bool
	volume  int
	bass    int
	mid     int
	treble  int
}

// NewNop returns a stopped stub controller.
func NewNop() *Nop {
	return &Nop{}
}

func (n *Nop) Connect(url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.running = true
	return nil
}

func (n *Nop) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.running = false
}

func (n *Nop) IsRunning() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.running
}

func (n *Nop) SetVolume(v int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.volume = v
}

func (n *Nop) SetTone(bass, mid, treble int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.bass, n.mid, n.treble = bass, mid, treble
}

func (n *Nop) CurrentBitrate() int {
	return 0
}
