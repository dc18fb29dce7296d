package input

import "sync/atomic"

// Flags is the hand-off point between interrupt-context input producers
// and the control-plane loop. The edge handlers for the rotary encoder,
// the button and the touch pad only bump these primitive counters; every
// decision about what an input means runs later in the control loop.
type Flags struct {
	rotary atomic.Int32 // signed detent delta since last drain
	button atomic.Int32 // press count since last drain
	touch  atomic.Int32 // touch count since last drain
}

// Events is one drained batch of input activity.
type Events struct {
	RotaryDelta int
	ButtonPress int
	TouchPress  int
}

// Empty reports whether the batch carries no activity.
func (e Events) Empty() bool {
	return e.RotaryDelta == 0 && e.ButtonPress == 0 && e.TouchPress == 0
}

// AddRotary accumulates rotary detents. Interrupt-context safe.
func (f *Flags) AddRotary(delta int) {
	f.rotary.Add(int32(delta))
}

// PressButton records one button press. Interrupt-context safe.
func (f *Flags) PressButton() {
	f.button.Add(1)
}

// PressTouch records one touch. Interrupt-context safe.
func (f *Flags) PressTouch() {
	f.touch.Add(1)
}

// Drain atomically swaps out the accumulated activity.
func (f *Flags) Drain() Events {
	return Events{
		RotaryDelta: int(f.rotary.Swap(0)),
		ButtonPress: int(f.button.Swap(0)),
		TouchPress:  int(f.touch.Swap(0)),
	}
}
