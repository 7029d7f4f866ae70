// Package frontend drives a DVB frontend: tuning to a frequency and
// delivery system, polling for transponder lock, and reading signal
// statistics. The hardware itself is reached through the Device interface;
// the Linux implementation lives in internal/linuxdvb.
package frontend

import "fmt"

// DeliverySystem identifies a broadcast standard. Values follow the Linux
// fe_delivery_system enumeration so they can be passed to the kernel
// unchanged.
type DeliverySystem uint32

const (
	SystemUndefined DeliverySystem = iota
	SystemDVBCAnnexA
	SystemDVBCAnnexB
	SystemDVBT
	SystemDSS
	SystemDVBS
	SystemDVBS2
	SystemDVBH
	SystemISDBT
	SystemISDBS
	SystemISDBC
	SystemATSC
	SystemATSCMH
	SystemDTMB
	SystemCMMB
	SystemDAB
	SystemDVBT2
	SystemTurbo
	SystemDVBCAnnexC
)

var systemNames = map[DeliverySystem]string{
	SystemUndefined:  "UNDEFINED",
	SystemDVBCAnnexA: "DVB-C",
	SystemDVBCAnnexB: "DVB-C/B",
	SystemDVBT:       "DVB-T",
	SystemDSS:        "DSS",
	SystemDVBS:       "DVB-S",
	SystemDVBS2:      "DVB-S2",
	SystemDVBH:       "DVB-H",
	SystemISDBT:      "ISDB-T",
	SystemISDBS:      "ISDB-S",
	SystemISDBC:      "ISDB-C",
	SystemATSC:       "ATSC",
	SystemATSCMH:     "ATSC-M/H",
	SystemDTMB:       "DTMB",
	SystemCMMB:       "CMMB",
	SystemDAB:        "DAB",
	SystemDVBT2:      "DVB-T2",
	SystemTurbo:      "TURBO",
	SystemDVBCAnnexC: "DVB-C/C",
}

func (s DeliverySystem) String() string {
	if name, ok := systemNames[s]; ok {
		return name
	}
	return fmt.Sprintf("fe_delivery_system(%d)", uint32(s))
}

// Bandwidth is a channel bandwidth in Hz, as accepted by the
// DTV_BANDWIDTH_HZ tuning property.
type Bandwidth uint32

const (
	Bandwidth1_712MHz Bandwidth = 1_712_000
	Bandwidth5MHz     Bandwidth = 5_000_000
	Bandwidth6MHz     Bandwidth = 6_000_000
	Bandwidth7MHz     Bandwidth = 7_000_000
	Bandwidth8MHz     Bandwidth = 8_000_000
	Bandwidth10MHz    Bandwidth = 10_000_000
)

// Hz returns the bandwidth as a plain Hz count.
func (b Bandwidth) Hz() uint32 { return uint32(b) }

// Status is the fe_status bit set reported by FE_READ_STATUS.
type Status uint32

const (
	// StatusHasSignal means the frontend found something above the noise level.
	StatusHasSignal Status = 0x01
	// StatusHasCarrier means the frontend found a signal.
	StatusHasCarrier Status = 0x02
	// StatusHasViterbi means the FEC inner coding is stable.
	StatusHasViterbi Status = 0x04
	// StatusHasSync means sync bytes were found.
	StatusHasSync Status = 0x08
	// StatusHasLock means everything locked and the stream is usable.
	StatusHasLock Status = 0x10
	// StatusTimedout means no lock within the last tuning attempt.
	StatusTimedout Status = 0x20
	// StatusReinit means the frontend was reinitialized and retuning is needed.
	StatusReinit Status = 0x40
)

// HasLock reports whether the frontend has a full lock on a transponder.
func (s Status) HasLock() bool { return s&StatusHasLock != 0 }

// Info describes a frontend device: its name and the tuning ranges it
// supports, per FE_GET_INFO. Frequencies are in Hz for terrestrial and
// cable frontends and in kHz for satellite frontends.
type Info struct {
	Name               string
	FrequencyMin       uint32
	FrequencyMax       uint32
	FrequencyStepSize  uint32
	FrequencyTolerance uint32
	SymbolRateMin      uint32
	SymbolRateMax      uint32
	SymbolRateTol      uint32
	Capabilities       uint32
}

// Device is the hardware collaborator the tuner drives. Tune is
// asynchronous: the hardware acquires lock in the background, observable
// through Status.
type Device interface {
	Tune(frequency uint32, system DeliverySystem, bandwidth Bandwidth) error
	Status() (Status, error)
	SignalStrength() (SignalStrength, error)
	DeliverySystems() ([]DeliverySystem, error)
}
