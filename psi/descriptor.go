package psi

import "fmt"

// Descriptor tag values handled by DecodeDescriptor. Tags are defined in
// ETSI EN 300 468 table 12 except where noted.
const (
	TagISO639Language        uint8 = 0x0A // ISO/IEC 13818-1
	TagCarouselIdentifier    uint8 = 0x13 // ETSI TS 102 809
	TagNetworkName           uint8 = 0x40
	TagServiceList           uint8 = 0x41
	TagService               uint8 = 0x48
	TagComponent             uint8 = 0x50
	TagStreamIdentifier      uint8 = 0x52
	TagSubtitling            uint8 = 0x59
	TagTerrestrialDelivery   uint8 = 0x5A
	TagPrivateDataSpecifier  uint8 = 0x5F
	TagDataBroadcastID       uint8 = 0x66
	TagAC3                   uint8 = 0x6A
	TagApplicationSignalling uint8 = 0x6F // ETSI TS 102 809
	TagEnhancedAC3           uint8 = 0x7A
	TagExtension             uint8 = 0x7F
	// TagLogicalChannel is the vendor extension used by terrestrial
	// broadcasters to assign channel numbers. The tag sits in the
	// user-defined range; the layout below follows what reference scanning
	// tools (w_scan2 and friends) decode.
	TagLogicalChannel uint8 = 0x83
)

// Descriptor is one decoded entry of a descriptor loop. Concrete types are
// the *Descriptor structs in this package; tags without a dedicated decoder
// come back as UnknownDescriptor, never dropped, so downstream consumers
// can still match on the raw tag.
type Descriptor interface {
	// Tag returns the descriptor_tag byte the entry was transmitted with.
	Tag() uint8
}

// UnknownDescriptor preserves a descriptor this package has no decoder for.
type UnknownDescriptor struct {
	ID   uint8
	Data []byte
}

func (d *UnknownDescriptor) Tag() uint8 { return d.ID }

// DecodeDescriptor decodes the payload of a single descriptor (the bytes
// after the tag and length) according to its tag.
func DecodeDescriptor(tag uint8, data []byte) (Descriptor, error) {
	switch tag {
	case TagISO639Language:
		return decodeISO639Language(data)
	case TagCarouselIdentifier:
		return decodeCarouselIdentifier(data)
	case TagNetworkName:
		return decodeNetworkName(data)
	case TagServiceList:
		return decodeServiceList(data)
	case TagService:
		return decodeService(data)
	case TagComponent:
		return decodeComponent(data)
	case TagStreamIdentifier:
		return decodeStreamIdentifier(data)
	case TagSubtitling:
		return decodeSubtitling(data)
	case TagTerrestrialDelivery:
		return decodeTerrestrialDelivery(data)
	case TagPrivateDataSpecifier:
		return decodePrivateDataSpecifier(data)
	case TagDataBroadcastID:
		return decodeDataBroadcastID(data)
	case TagAC3:
		return decodeAC3(data)
	case TagApplicationSignalling:
		return decodeApplicationSignalling(data)
	case TagEnhancedAC3:
		return decodeEnhancedAC3(data)
	case TagExtension:
		return decodeExtension(data)
	case TagLogicalChannel:
		return decodeLogicalChannel(data)
	}

	raw := make([]byte, len(data))
	copy(raw, data)
	return &UnknownDescriptor{ID: tag, Data: raw}, nil
}

// DecodeDescriptors walks a contiguous descriptor loop, dispatching each
// tag/length/payload entry, and consumes exactly the supplied buffer.
func DecodeDescriptors(buf []byte) ([]Descriptor, error) {
	var descriptors []Descriptor

	off := 0
	for off < len(buf) {
		if off+2 > len(buf) {
			return nil, fmt.Errorf("psi: descriptor header truncated at offset %d", off)
		}
		tag := buf[off]
		length := int(buf[off+1])
		off += 2

		if off+length > len(buf) {
			return nil, fmt.Errorf("psi: descriptor 0x%02X length %d overruns loop at offset %d", tag, length, off)
		}
		d, err := DecodeDescriptor(tag, buf[off:off+length])
		if err != nil {
			return nil, fmt.Errorf("psi: descriptor 0x%02X: %w", tag, err)
		}
		descriptors = append(descriptors, d)
		off += length
	}

	return descriptors, nil
}

// FindDescriptor returns the first descriptor of type T in the list, or
// false when none is present.
func FindDescriptor[T Descriptor](descriptors []Descriptor) (T, bool) {
	for _, d := range descriptors {
		if t, ok := d.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}
