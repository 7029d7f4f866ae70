//go:build linux

package linuxdvb

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"github.com/dvbtk/dvbscan/frontend"
)

var (
	feGetInfo     = ioc(iocRead, 61, unsafe.Sizeof(frontendInfo{}))
	feReadStatus  = ioc(iocRead, 69, unsafe.Sizeof(uint32(0)))
	feSetProperty = ioc(iocWrite, 82, unsafe.Sizeof(dtvProperties{}))
	feGetProperty = ioc(iocRead, 83, unsafe.Sizeof(dtvProperties{}))
)

// DTV property commands, from the fe_property enumeration.
const (
	dtvTune               = 1
	dtvFrequency          = 3
	dtvBandwidthHz        = 5
	dtvDeliverySystem     = 17
	dtvEnumDelsys         = 44
	dtvStatSignalStrength = 62
)

// fe_scale values carried in dtv_fe_stats entries.
const (
	scaleNotAvailable = 0
	scaleDecibel      = 1
	scaleRelative     = 2
)

// dtv_property is declared packed in the kernel header. The union is
// carried as raw bytes and decoded per command; with these field types Go
// lays the struct out with no padding, matching the 76-byte kernel ABI.
type dtvProperty struct {
	cmd      uint32
	reserved [3]uint32
	u        [56]byte
	result   int32
}

type dtvProperties struct {
	num   uint32
	props *dtvProperty
}

// dvb_frontend_info: a 128-byte name followed by the legacy type field and
// the tuning ranges.
type frontendInfo struct {
	name                [128]byte
	typ                 uint32
	frequencyMin        uint32
	frequencyMax        uint32
	frequencyStepSize   uint32
	frequencyTolerance  uint32
	symbolRateMin       uint32
	symbolRateMax       uint32
	symbolRateTolerance uint32
	notifierDelay       uint32
	caps                uint32
}

// Frontend is an open /dev/dvb/adapterN/frontendN device. It implements
// frontend.Device.
type Frontend struct {
	f    *os.File
	info frontend.Info
}

// OpenFrontend opens a frontend device read-write; tuning is refused by the
// kernel on read-only descriptors.
func OpenFrontend(path string) (*Frontend, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("linuxdvb: open frontend: %w", err)
	}

	var raw frontendInfo
	if err := ioctl(int(f.Fd()), feGetInfo, unsafe.Pointer(&raw)); err != nil {
		f.Close()
		return nil, fmt.Errorf("linuxdvb: FE_GET_INFO: %w", err)
	}

	return &Frontend{f: f, info: infoFrom(&raw)}, nil
}

func infoFrom(raw *frontendInfo) frontend.Info {
	name := raw.name[:]
	for i, b := range name {
		if b == 0 {
			name = name[:i]
			break
		}
	}
	return frontend.Info{
		Name:               string(name),
		FrequencyMin:       raw.frequencyMin,
		FrequencyMax:       raw.frequencyMax,
		FrequencyStepSize:  raw.frequencyStepSize,
		FrequencyTolerance: raw.frequencyTolerance,
		SymbolRateMin:      raw.symbolRateMin,
		SymbolRateMax:      raw.symbolRateMax,
		SymbolRateTol:      raw.symbolRateTolerance,
		Capabilities:       raw.caps,
	}
}

// Info returns the device description read at open time.
func (fe *Frontend) Info() frontend.Info { return fe.info }

// Close releases the device.
func (fe *Frontend) Close() error { return fe.f.Close() }

// Tune sets the delivery system, frequency and bandwidth and kicks off the
// tuning sequence. The frequency is in Hz for terrestrial and cable
// systems, kHz for satellite.
func (fe *Frontend) Tune(frequency uint32, system frontend.DeliverySystem, bandwidth frontend.Bandwidth) error {
	props := []dtvProperty{
		dataProperty(dtvFrequency, frequency),
		dataProperty(dtvBandwidthHz, bandwidth.Hz()),
		dataProperty(dtvDeliverySystem, uint32(system)),
		dataProperty(dtvTune, 0),
	}
	wrapped := dtvProperties{num: uint32(len(props)), props: &props[0]}
	if err := ioctl(int(fe.f.Fd()), feSetProperty, unsafe.Pointer(&wrapped)); err != nil {
		return fmt.Errorf("linuxdvb: FE_SET_PROPERTY: %w", err)
	}
	return nil
}

// Status reads the current fe_status bit set.
func (fe *Frontend) Status() (frontend.Status, error) {
	var status uint32
	if err := ioctl(int(fe.f.Fd()), feReadStatus, unsafe.Pointer(&status)); err != nil {
		return 0, fmt.Errorf("linuxdvb: FE_READ_STATUS: %w", err)
	}
	return frontend.Status(status), nil
}

// SignalStrength queries the DTV_STAT_SIGNAL_STRENGTH statistic.
func (fe *Frontend) SignalStrength() (frontend.SignalStrength, error) {
	prop, err := fe.getProperty(dtvStatSignalStrength)
	if err != nil {
		return frontend.SignalStrength{}, err
	}

	// dtv_fe_stats: a length byte followed by packed {scale u8, value u64}
	// entries; the value bytes are not aligned.
	if prop.u[0] == 0 {
		return frontend.SignalStrength{Scale: frontend.ScaleNotAvailable}, nil
	}
	value := binary.NativeEndian.Uint64(prop.u[2:10])
	switch prop.u[1] {
	case scaleDecibel:
		return frontend.SignalStrength{Scale: frontend.ScaleDecibel, Decibel: int64(value)}, nil
	case scaleRelative:
		return frontend.SignalStrength{Scale: frontend.ScaleRelative, Relative: value}, nil
	}
	return frontend.SignalStrength{Scale: frontend.ScaleNotAvailable}, nil
}

// DeliverySystems enumerates the broadcast standards the hardware supports.
func (fe *Frontend) DeliverySystems() ([]frontend.DeliverySystem, error) {
	prop, err := fe.getProperty(dtvEnumDelsys)
	if err != nil {
		return nil, err
	}

	// The buffer union member: 32 data bytes, then the valid length.
	n := binary.NativeEndian.Uint32(prop.u[32:36])
	if n > 32 {
		n = 32
	}
	systems := make([]frontend.DeliverySystem, 0, n)
	for _, b := range prop.u[:n] {
		systems = append(systems, frontend.DeliverySystem(b))
	}
	return systems, nil
}

func (fe *Frontend) getProperty(cmd uint32) (*dtvProperty, error) {
	prop := dtvProperty{cmd: cmd}
	wrapped := dtvProperties{num: 1, props: &prop}
	if err := ioctl(int(fe.f.Fd()), feGetProperty, unsafe.Pointer(&wrapped)); err != nil {
		return nil, fmt.Errorf("linuxdvb: FE_GET_PROPERTY %d: %w", cmd, err)
	}
	if prop.result < 0 {
		return nil, fmt.Errorf("linuxdvb: property %d query failed: result %d", cmd, prop.result)
	}
	return &prop, nil
}

func dataProperty(cmd, data uint32) dtvProperty {
	p := dtvProperty{cmd: cmd}
	binary.NativeEndian.PutUint32(p.u[:4], data)
	return p
}
