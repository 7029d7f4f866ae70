package psi

import "fmt"

// AC3Descriptor signals an AC-3 audio stream (EN 300 468 annex D, §D.3).
// Optional fields are nil when the corresponding flag is clear.
type AC3Descriptor struct {
	ComponentType  *uint8
	BSID           *uint8
	MainID         *uint8
	ASVC           *uint8
	AdditionalInfo []byte
}

func (d *AC3Descriptor) Tag() uint8 { return TagAC3 }

func decodeAC3(buf []byte) (Descriptor, error) {
	if len(buf) < 1 {
		return nil, fmt.Errorf("AC-3 descriptor empty")
	}
	d := &AC3Descriptor{}
	flags := buf[0]
	off := 1

	var err error
	if d.ComponentType, off, err = optionalByte(buf, off, flags&0x80 != 0, "component_type"); err != nil {
		return nil, err
	}
	if d.BSID, off, err = optionalByte(buf, off, flags&0x40 != 0, "bsid"); err != nil {
		return nil, err
	}
	if d.MainID, off, err = optionalByte(buf, off, flags&0x20 != 0, "mainid"); err != nil {
		return nil, err
	}
	if d.ASVC, off, err = optionalByte(buf, off, flags&0x10 != 0, "asvc"); err != nil {
		return nil, err
	}

	d.AdditionalInfo = make([]byte, len(buf)-off)
	copy(d.AdditionalInfo, buf[off:])
	return d, nil
}

// EAC3ServiceType is the service classification encoded in an Enhanced-AC-3
// component type byte (EN 300 468 annex D, table D.2).
type EAC3ServiceType uint8

const (
	EAC3ServiceCompleteMain EAC3ServiceType = iota
	EAC3ServiceMusicAndEffects
	EAC3ServiceVisuallyImpaired
	EAC3ServiceHearingImpaired
	EAC3ServiceDialogue
	EAC3ServiceCommentary
	EAC3ServiceEmergency
	EAC3ServiceVoiceover
	EAC3ServiceKaraoke
	EAC3ServiceInvalid
)

// EAC3ChannelSetup is the channel configuration encoded in an Enhanced-AC-3
// component type byte.
type EAC3ChannelSetup uint8

const (
	EAC3ChannelMono EAC3ChannelSetup = iota
	EAC3ChannelTwoIndependent
	EAC3ChannelStereo
	EAC3ChannelSurroundEncoded
	EAC3ChannelMultichannelOver2
	EAC3ChannelMultichannelOver5_1
	EAC3ChannelIndependent
	EAC3ChannelReserved
)

// EAC3ComponentType is the decoded component_type byte of an Enhanced-AC-3
// descriptor.
type EAC3ComponentType struct {
	Enhanced     bool
	FullService  bool
	ServiceType  EAC3ServiceType
	ChannelSetup EAC3ChannelSetup
}

// EnhancedAC3Descriptor signals an Enhanced-AC-3 audio stream
// (EN 300 468 annex D, §D.5). Optional fields are nil when the
// corresponding flag is clear.
type EnhancedAC3Descriptor struct {
	MixInfoExists  bool
	ComponentType  *EAC3ComponentType
	BSID           *uint8
	MainID         *uint8
	ASVC           *uint8
	Substream1     *uint8
	Substream2     *uint8
	Substream3     *uint8
	AdditionalInfo []byte
}

func (d *EnhancedAC3Descriptor) Tag() uint8 { return TagEnhancedAC3 }

func decodeEnhancedAC3(buf []byte) (Descriptor, error) {
	if len(buf) < 1 {
		return nil, fmt.Errorf("Enhanced-AC-3 descriptor empty")
	}
	flags := buf[0]
	d := &EnhancedAC3Descriptor{MixInfoExists: flags&0x08 != 0}
	off := 1

	if flags&0x80 != 0 {
		if off >= len(buf) {
			return nil, fmt.Errorf("Enhanced-AC-3 component_type missing")
		}
		d.ComponentType = decodeEAC3ComponentType(buf[off])
		off++
	}

	var err error
	if d.BSID, off, err = optionalByte(buf, off, flags&0x40 != 0, "bsid"); err != nil {
		return nil, err
	}
	if d.MainID, off, err = optionalByte(buf, off, flags&0x20 != 0, "mainid"); err != nil {
		return nil, err
	}
	if d.ASVC, off, err = optionalByte(buf, off, flags&0x10 != 0, "asvc"); err != nil {
		return nil, err
	}
	if d.Substream1, off, err = optionalByte(buf, off, flags&0x04 != 0, "substream1"); err != nil {
		return nil, err
	}
	if d.Substream2, off, err = optionalByte(buf, off, flags&0x02 != 0, "substream2"); err != nil {
		return nil, err
	}
	if d.Substream3, off, err = optionalByte(buf, off, flags&0x01 != 0, "substream3"); err != nil {
		return nil, err
	}

	d.AdditionalInfo = make([]byte, len(buf)-off)
	copy(d.AdditionalInfo, buf[off:])
	return d, nil
}

func decodeEAC3ComponentType(b byte) *EAC3ComponentType {
	ct := &EAC3ComponentType{
		Enhanced:    b&0x80 != 0,
		FullService: b&0x40 != 0,
	}

	b1 := b&0x20 != 0
	b2 := b&0x10 != 0
	b3 := b&0x08 != 0

	switch {
	case !b1 && !b2 && !b3 && ct.FullService:
		ct.ServiceType = EAC3ServiceCompleteMain
	case !b1 && !b2 && b3 && !ct.FullService:
		ct.ServiceType = EAC3ServiceMusicAndEffects
	case !b1 && b2 && !b3:
		ct.ServiceType = EAC3ServiceVisuallyImpaired
	case !b1 && b2 && b3:
		ct.ServiceType = EAC3ServiceHearingImpaired
	case b1 && !b2 && !b3 && !ct.FullService:
		ct.ServiceType = EAC3ServiceDialogue
	case b1 && !b2 && b3:
		ct.ServiceType = EAC3ServiceCommentary
	case b1 && b2 && !b3 && ct.FullService:
		ct.ServiceType = EAC3ServiceEmergency
	case b1 && b2 && b3 && !ct.FullService:
		ct.ServiceType = EAC3ServiceVoiceover
	case b1 && b2 && b3 && ct.FullService:
		ct.ServiceType = EAC3ServiceKaraoke
	default:
		ct.ServiceType = EAC3ServiceInvalid
	}

	switch {
	case !b1 && !b2 && !b3:
		ct.ChannelSetup = EAC3ChannelMono
	case !b1 && !b2 && b3:
		ct.ChannelSetup = EAC3ChannelTwoIndependent
	case !b1 && b2 && !b3:
		ct.ChannelSetup = EAC3ChannelStereo
	case !b1 && b2 && b3:
		ct.ChannelSetup = EAC3ChannelSurroundEncoded
	case b1 && !b2 && !b3:
		ct.ChannelSetup = EAC3ChannelMultichannelOver2
	case b1 && !b2 && b3:
		ct.ChannelSetup = EAC3ChannelMultichannelOver5_1
	case b1 && b2 && !b3:
		ct.ChannelSetup = EAC3ChannelIndependent
	default:
		ct.ChannelSetup = EAC3ChannelReserved
	}

	return ct
}

// optionalByte consumes one byte from buf at off when present is set,
// returning a pointer to a copy and the advanced offset.
func optionalByte(buf []byte, off int, present bool, what string) (*uint8, int, error) {
	if !present {
		return nil, off, nil
	}
	if off >= len(buf) {
		return nil, off, fmt.Errorf("%s field missing", what)
	}
	v := buf[off]
	return &v, off + 1, nil
}
