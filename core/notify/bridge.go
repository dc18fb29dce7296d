package notify

import (
	"encoding/json"

	"Bt1QRadio/core/player"
	"Bt1QRadio/logger"
	"Bt1QRadio/model"
)

// Display is the read-only UI collaborator. Rendering, scrolling and the
// actual panel hardware live elsewhere; this core only hands over
// snapshots and power hints.
type Display interface {
	Show(s model.StatusSnapshot)
	PowerOn()
	PowerOff()
}

// NopDisplay satisfies Display for headless deployments and tests.
type NopDisplay struct{}

func (NopDisplay) Show(model.StatusSnapshot) {}
func (NopDisplay) PowerOn()                  {}
func (NopDisplay) PowerOff()                 {}

// Bridge watches the player through its fingerprints and forwards
// snapshots to the hub and the display only when something observable
// changed. One mutation batch between ticks yields one notification.
type Bridge struct {
	player  *player.Player
	hub     *Hub
	display Display

	titleFP  uint32
	statusFP uint32
}

// NewBridge snapshots the current fingerprints so the first tick does not
// fire spuriously.
func NewBridge(p *player.Player, hub *Hub, display Display) *Bridge {
	if display == nil {
		display = NopDisplay{}
	}
	b := &Bridge{
		player:  p,
		hub:     hub,
		display: display,
	}
	b.titleFP, b.statusFP = model.Fingerprints(p.Status())
	return b
}

// Tick recomputes the fingerprints and pushes one update on delta.
// Returns whether a change was published, which the control loop uses for
// its own bookkeeping.
func (b *Bridge) Tick() bool {
	snapshot := b.player.Status()
	title, status := model.Fingerprints(snapshot)
	if title == b.titleFP && status == b.statusFP {
		return false
	}
	b.titleFP, b.statusFP = title, status

	b.display.Show(snapshot)

	if b.hub != nil {
		data, err := json.Marshal(snapshot)
		if err != nil {
			logger.Error("failed to marshal status snapshot", logger.ErrorField(err))
			return true
		}
		b.hub.Broadcast(data)
	}
	return true
}
