package frontend

import (
	"errors"
	"testing"
	"time"
)

// fakeDevice scripts Status replies: each call pops the next status.
type fakeDevice struct {
	tuned     []uint32
	statuses  []Status
	statusErr error
	strength  SignalStrength
}

func (d *fakeDevice) Tune(frequency uint32, system DeliverySystem, bandwidth Bandwidth) error {
	d.tuned = append(d.tuned, frequency)
	return nil
}

func (d *fakeDevice) Status() (Status, error) {
	if d.statusErr != nil {
		return 0, d.statusErr
	}
	if len(d.statuses) == 0 {
		return 0, nil
	}
	s := d.statuses[0]
	if len(d.statuses) > 1 {
		d.statuses = d.statuses[1:]
	}
	return s, nil
}

func (d *fakeDevice) SignalStrength() (SignalStrength, error) { return d.strength, nil }

func (d *fakeDevice) DeliverySystems() ([]DeliverySystem, error) {
	return []DeliverySystem{SystemDVBT, SystemDVBT2}, nil
}

// fakeClock advances only when the tuner sleeps.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time        { return c.t }
func (c *fakeClock) sleep(d time.Duration) { c.t = c.t.Add(d) }

func newTestTuner(dev Device) (*Tuner, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	tuner := NewTuner(dev)
	tuner.now = clock.now
	tuner.sleep = clock.sleep
	return tuner, clock
}

func TestWaitForLock_LocksAfterPolls(t *testing.T) {
	t.Parallel()
	dev := &fakeDevice{statuses: []Status{
		0,
		StatusHasSignal | StatusHasCarrier,
		StatusHasSignal | StatusHasCarrier | StatusHasViterbi | StatusHasSync | StatusHasLock,
	}}
	tuner, _ := newTestTuner(dev)

	if err := tuner.Tune(474_166_000, SystemDVBT, Bandwidth8MHz); err != nil {
		t.Fatalf("Tune: %v", err)
	}
	if tuner.Locked() {
		t.Error("tuner should be unlocked right after Tune")
	}

	locked, err := tuner.WaitForLock(time.Second, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForLock: %v", err)
	}
	if !locked || !tuner.Locked() {
		t.Error("tuner should have locked")
	}
	if len(dev.tuned) != 1 || dev.tuned[0] != 474_166_000 {
		t.Errorf("tuned frequencies = %v", dev.tuned)
	}
}

func TestWaitForLock_Timeout(t *testing.T) {
	t.Parallel()
	dev := &fakeDevice{statuses: []Status{StatusHasSignal}} // never locks
	tuner, clock := newTestTuner(dev)

	start := clock.t
	locked, err := tuner.WaitForLock(100*time.Millisecond, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForLock: %v", err)
	}
	if locked || tuner.Locked() {
		t.Error("tuner should not have locked")
	}
	if waited := clock.t.Sub(start); waited < 100*time.Millisecond {
		t.Errorf("gave up after %v, want at least the 100ms timeout", waited)
	}
}

func TestWaitForLock_StatusError(t *testing.T) {
	t.Parallel()
	statusErr := errors.New("device gone")
	tuner, _ := newTestTuner(&fakeDevice{statusErr: statusErr})

	if _, err := tuner.WaitForLock(time.Second, 0); !errors.Is(err, statusErr) {
		t.Errorf("WaitForLock error = %v, want wrapped %v", err, statusErr)
	}
}

func TestSignalStrengthCompare(t *testing.T) {
	t.Parallel()
	weak := SignalStrength{Scale: ScaleDecibel, Decibel: -61_300}
	strong := SignalStrength{Scale: ScaleDecibel, Decibel: -42_000}

	if c, err := weak.Compare(strong); err != nil || c != -1 {
		t.Errorf("weak vs strong = %d, %v, want -1, nil", c, err)
	}
	if c, err := strong.Compare(weak); err != nil || c != 1 {
		t.Errorf("strong vs weak = %d, %v, want 1, nil", c, err)
	}
	if c, err := weak.Compare(weak); err != nil || c != 0 {
		t.Errorf("weak vs weak = %d, %v, want 0, nil", c, err)
	}

	relative := SignalStrength{Scale: ScaleRelative, Relative: 40_000}
	if _, err := weak.Compare(relative); !errors.Is(err, ErrScaleMismatch) {
		t.Errorf("cross-scale compare error = %v, want ErrScaleMismatch", err)
	}
}
