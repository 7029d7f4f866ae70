package frontend

import (
	"fmt"
	"time"
)

// DefaultPollInterval is how often WaitForLock reads the frontend status
// when the caller does not say otherwise.
const DefaultPollInterval = 50 * time.Millisecond

// Tuner drives a Device through the tune/wait-for-lock cycle. Tuning is
// asynchronous hardware behavior: Tune always leaves the tuner unlocked,
// and WaitForLock polls until the lock bit appears or the wait times out.
type Tuner struct {
	dev    Device
	locked bool

	// Injectable for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewTuner wraps a Device.
func NewTuner(dev Device) *Tuner {
	return &Tuner{
		dev:   dev,
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Tune requests the device to tune to frequency (Hz for terrestrial and
// cable systems, kHz for satellite) with the given delivery system and
// bandwidth. The tuner transitions to unlocked; call WaitForLock to
// observe lock acquisition.
func (t *Tuner) Tune(frequency uint32, system DeliverySystem, bandwidth Bandwidth) error {
	t.locked = false
	if err := t.dev.Tune(frequency, system, bandwidth); err != nil {
		return fmt.Errorf("frontend: tune to %d Hz: %w", frequency, err)
	}
	return nil
}

// WaitForLock polls the device status every pollInterval until the lock
// bit is set or timeout elapses. It returns true when the frontend locked,
// false when the wait timed out. A zero pollInterval means
// DefaultPollInterval; a zero timeout polls once.
func (t *Tuner) WaitForLock(timeout, pollInterval time.Duration) (bool, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	deadline := t.now().Add(timeout)
	for {
		status, err := t.dev.Status()
		if err != nil {
			return false, fmt.Errorf("frontend: read status: %w", err)
		}
		if status.HasLock() {
			t.locked = true
			return true, nil
		}
		if !t.now().Before(deadline) {
			return false, nil
		}
		t.sleep(pollInterval)
	}
}

// Locked reports whether the last WaitForLock observed a lock since the
// last Tune.
func (t *Tuner) Locked() bool { return t.locked }

// SignalStrength reads the current signal strength. The reading is only
// meaningful while the frontend is locked.
func (t *Tuner) SignalStrength() (SignalStrength, error) {
	s, err := t.dev.SignalStrength()
	if err != nil {
		return SignalStrength{}, fmt.Errorf("frontend: read signal strength: %w", err)
	}
	return s, nil
}
