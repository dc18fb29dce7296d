package control

import (
	"context"
	"time"

	"Bt1QRadio/core/audio"
	"Bt1QRadio/core/input"
	"Bt1QRadio/core/mpd"
	"Bt1QRadio/core/notify"
	"Bt1QRadio/core/player"
	"Bt1QRadio/logger"
)

const persistEvery = 50 // ticks between dirty-state flush checks

// Loop is the control plane. Each tick services, one bounded step each,
// the input flags, the protocol session, the change notification bridge
// and stream health. Nothing in here may block past a short deadline; the
// audio feed worker never waits on any of it.
type Loop struct {
	player  *player.Player
	audio   audio.Controller
	session *mpd.Server
	bridge  *notify.Bridge
	flags   *input.Flags

	tick      time.Duration
	retryWait time.Duration
	nextRetry time.Time

	ticks uint64
}

// New wires a control loop. session, bridge and flags may be nil when the
// corresponding surface is disabled.
func New(p *player.Player, ctrl audio.Controller, session *mpd.Server, bridge *notify.Bridge, flags *input.Flags, tick, retryWait time.Duration) *Loop {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	if retryWait <= 0 {
		retryWait = 5 * time.Second
	}
	return &Loop{
		player:    p,
		audio:     ctrl,
		session:   session,
		bridge:    bridge,
		flags:     flags,
		tick:      tick,
		retryWait: retryWait,
	}
}

// Run ticks until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.tick)
	defer ticker.Stop()

	logger.Info("control loop started", logger.Duration("tick", l.tick))
	for {
		select {
		case <-ctx.Done():
			l.flushState()
			logger.Info("control loop stopped")
			return
		case <-ticker.C:
			l.Step()
		}
	}
}

// Step runs one tick. Exported so tests can drive the loop without a
// ticker.
func (l *Loop) Step() {
	l.ticks++

	if l.flags != nil {
		l.applyInput(l.flags.Drain())
	}
	if l.session != nil {
		l.session.Poll()
	}
	if l.bridge != nil {
		l.bridge.Tick()
	}
	l.checkStream()

	if l.ticks%persistEvery == 0 && l.player.Dirty() {
		l.flushState()
	}
}

// applyInput turns drained edges into player actions: rotary steps the
// volume, the button toggles play/stop, touch advances the station.
func (l *Loop) applyInput(ev input.Events) {
	if ev.Empty() {
		return
	}

	if ev.RotaryDelta != 0 {
		l.player.SetVolume(l.player.Volume() + ev.RotaryDelta)
	}

	if ev.ButtonPress%2 == 1 {
		if l.player.State().Playing {
			l.player.StopStream()
		} else if err := l.player.StartStream("", ""); err != nil {
			logger.Warn("button play failed", logger.ErrorField(err))
		}
	}

	for i := 0; i < ev.TouchPress; i++ {
		if err := l.player.Next(); err != nil {
			logger.Warn("touch next failed", logger.ErrorField(err))
			break
		}
	}
}

// checkStream restarts a stream that died underneath a playing state,
// after a fixed backoff so a flapping station cannot cause a reconnect
// storm.
func (l *Loop) checkStream() {
	state := l.player.State()
	if !state.Playing || l.audio.IsRunning() {
		l.nextRetry = time.Time{}
		return
	}

	now := time.Now()
	if l.nextRetry.IsZero() {
		l.nextRetry = now.Add(l.retryWait)
		logger.Warn("stream feed stopped unexpectedly, scheduling reconnect",
			logger.Duration("wait", l.retryWait))
		return
	}
	if now.Before(l.nextRetry) {
		return
	}

	l.nextRetry = now.Add(l.retryWait)
	if err := l.player.StartStream("", ""); err != nil {
		logger.Warn("stream reconnect failed", logger.ErrorField(err))
	}
}

// flushState persists dirty player state with a bounded deadline.
func (l *Loop) flushState() {
	if !l.player.Dirty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.player.SaveState(ctx); err != nil {
		logger.Warn("failed to flush player state", logger.ErrorField(err))
	}
}
