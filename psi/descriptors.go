package psi

import "fmt"

// NetworkNameDescriptor carries the network name (EN 300 468 §6.2.27). The
// bytes are kept raw; use DecodeText for a displayable form.
type NetworkNameDescriptor struct {
	Name []byte
}

func (d *NetworkNameDescriptor) Tag() uint8 { return TagNetworkName }

func decodeNetworkName(buf []byte) (Descriptor, error) {
	name := make([]byte, len(buf))
	copy(name, buf)
	return &NetworkNameDescriptor{Name: name}, nil
}

// ServiceListEntry maps a service to its type within a transport stream.
// The service_id equals the program_number of the service's PMT, except for
// NVOD services (EN 300 468 §6.2.35).
type ServiceListEntry struct {
	ServiceID uint16
	Type      ServiceType
}

// ServiceListDescriptor lists the services of a transport stream
// (EN 300 468 §6.2.35).
type ServiceListDescriptor struct {
	Services []ServiceListEntry
}

func (d *ServiceListDescriptor) Tag() uint8 { return TagServiceList }

func decodeServiceList(buf []byte) (Descriptor, error) {
	if len(buf)%3 != 0 {
		return nil, fmt.Errorf("service list length %d not a multiple of 3", len(buf))
	}
	d := &ServiceListDescriptor{}
	for off := 0; off < len(buf); off += 3 {
		d.Services = append(d.Services, ServiceListEntry{
			ServiceID: uint16(buf[off])<<8 | uint16(buf[off+1]),
			Type:      ServiceType(buf[off+2]),
		})
	}
	return d, nil
}

// ServiceDescriptor carries the service type and the human-readable
// provider and service names (EN 300 468 §6.2.33).
type ServiceDescriptor struct {
	Type     ServiceType
	Provider string
	Name     string
}

func (d *ServiceDescriptor) Tag() uint8 { return TagService }

func decodeService(buf []byte) (Descriptor, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("service descriptor too short: %d bytes", len(buf))
	}
	d := &ServiceDescriptor{Type: ServiceType(buf[0])}

	pos := 1
	providerLen := int(buf[pos])
	pos++
	if pos+providerLen > len(buf) {
		return nil, fmt.Errorf("service provider name overruns descriptor")
	}
	d.Provider = DecodeText(buf[pos : pos+providerLen])
	pos += providerLen

	if pos >= len(buf) {
		return nil, fmt.Errorf("service name length missing")
	}
	nameLen := int(buf[pos])
	pos++
	if pos+nameLen > len(buf) {
		return nil, fmt.Errorf("service name overruns descriptor")
	}
	d.Name = DecodeText(buf[pos : pos+nameLen])

	return d, nil
}

// StreamIdentifierDescriptor labels a component stream so it can be matched
// with a component descriptor (EN 300 468 §6.2.39).
type StreamIdentifierDescriptor struct {
	ComponentTag uint8
}

func (d *StreamIdentifierDescriptor) Tag() uint8 { return TagStreamIdentifier }

func decodeStreamIdentifier(buf []byte) (Descriptor, error) {
	if len(buf) < 1 {
		return nil, fmt.Errorf("stream identifier descriptor empty")
	}
	return &StreamIdentifierDescriptor{ComponentTag: buf[0]}, nil
}

// ComponentDescriptor describes one component of a service
// (EN 300 468 §6.2.8).
type ComponentDescriptor struct {
	StreamContentExt uint8
	StreamContent    uint8
	ComponentType    uint8
	ComponentTag     uint8
	LanguageCode     [3]byte
	Text             []byte
}

func (d *ComponentDescriptor) Tag() uint8 { return TagComponent }

func decodeComponent(buf []byte) (Descriptor, error) {
	if len(buf) < 6 {
		return nil, fmt.Errorf("component descriptor too short: %d bytes", len(buf))
	}
	d := &ComponentDescriptor{
		StreamContentExt: buf[0] >> 4,
		StreamContent:    buf[0] & 0x0F,
		ComponentType:    buf[1],
		ComponentTag:     buf[2],
		LanguageCode:     [3]byte{buf[3], buf[4], buf[5]},
	}
	d.Text = make([]byte, len(buf)-6)
	copy(d.Text, buf[6:])
	return d, nil
}

// SubtitlingEntry is one subtitle stream description
// (EN 300 468 §6.2.41).
type SubtitlingEntry struct {
	LanguageCode      [3]byte
	SubtitlingType    uint8
	CompositionPageID uint16
	AncillaryPageID   uint16
}

// SubtitlingDescriptor lists the DVB subtitle streams of a service.
type SubtitlingDescriptor struct {
	Entries []SubtitlingEntry
}

func (d *SubtitlingDescriptor) Tag() uint8 { return TagSubtitling }

func decodeSubtitling(buf []byte) (Descriptor, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("subtitling descriptor length %d not a multiple of 8", len(buf))
	}
	d := &SubtitlingDescriptor{}
	for off := 0; off < len(buf); off += 8 {
		d.Entries = append(d.Entries, SubtitlingEntry{
			LanguageCode:      [3]byte{buf[off], buf[off+1], buf[off+2]},
			SubtitlingType:    buf[off+3],
			CompositionPageID: uint16(buf[off+4])<<8 | uint16(buf[off+5]),
			AncillaryPageID:   uint16(buf[off+6])<<8 | uint16(buf[off+7]),
		})
	}
	return d, nil
}

// TerrestrialDeliveryDescriptor carries the DVB-T modulation parameters of
// a transport stream (EN 300 468 §6.2.13.4). The centre frequency is in
// units of 10 Hz.
type TerrestrialDeliveryDescriptor struct {
	CentreFrequency     uint32
	Bandwidth           uint8
	Priority            bool
	TimeSlicing         bool
	MPEFEC              bool
	Constellation       uint8
	Hierarchy           uint8
	CodeRateHP          uint8
	CodeRateLP          uint8
	GuardInterval       uint8
	TransmissionMode    uint8
	OtherFrequencyInUse bool
}

func (d *TerrestrialDeliveryDescriptor) Tag() uint8 { return TagTerrestrialDelivery }

func decodeTerrestrialDelivery(buf []byte) (Descriptor, error) {
	if len(buf) < 11 {
		return nil, fmt.Errorf("terrestrial delivery descriptor too short: %d bytes", len(buf))
	}
	return &TerrestrialDeliveryDescriptor{
		CentreFrequency:     uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]),
		Bandwidth:           buf[4] >> 5,
		Priority:            buf[4]&0x10 != 0,
		TimeSlicing:         buf[4]&0x08 != 0,
		MPEFEC:              buf[4]&0x04 != 0,
		Constellation:       buf[5] >> 6,
		Hierarchy:           buf[5] >> 3 & 0x07,
		CodeRateHP:          buf[5] & 0x07,
		CodeRateLP:          buf[6] >> 5,
		GuardInterval:       buf[6] >> 3 & 0x03,
		TransmissionMode:    buf[6] >> 1 & 0x03,
		OtherFrequencyInUse: buf[6]&0x01 != 0,
	}, nil
}

// PrivateDataSpecifierDescriptor scopes following user-defined descriptors
// to a registered specifier (EN 300 468 §6.2.31).
type PrivateDataSpecifierDescriptor struct {
	Specifier uint32
}

func (d *PrivateDataSpecifierDescriptor) Tag() uint8 { return TagPrivateDataSpecifier }

func decodePrivateDataSpecifier(buf []byte) (Descriptor, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("private data specifier too short: %d bytes", len(buf))
	}
	return &PrivateDataSpecifierDescriptor{
		Specifier: uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]),
	}, nil
}

// DataBroadcastIDDescriptor identifies a data broadcast
// (EN 300 468 §6.2.12).
type DataBroadcastIDDescriptor struct {
	ID       uint16
	Selector []byte
}

func (d *DataBroadcastIDDescriptor) Tag() uint8 { return TagDataBroadcastID }

func decodeDataBroadcastID(buf []byte) (Descriptor, error) {
	if len(buf) < 2 {
		return nil, fmt.Errorf("data broadcast id descriptor too short: %d bytes", len(buf))
	}
	d := &DataBroadcastIDDescriptor{
		ID: uint16(buf[0])<<8 | uint16(buf[1]),
	}
	d.Selector = make([]byte, len(buf)-2)
	copy(d.Selector, buf[2:])
	return d, nil
}

// ExtensionDescriptor wraps an extended descriptor (EN 300 468 §6.2.16).
// Only the extension tag and raw selector bytes are retained.
type ExtensionDescriptor struct {
	TagExtension uint8
	Selector     []byte
}

func (d *ExtensionDescriptor) Tag() uint8 { return TagExtension }

func decodeExtension(buf []byte) (Descriptor, error) {
	if len(buf) < 1 {
		return nil, fmt.Errorf("extension descriptor empty")
	}
	d := &ExtensionDescriptor{TagExtension: buf[0]}
	d.Selector = make([]byte, len(buf)-1)
	copy(d.Selector, buf[1:])
	return d, nil
}

// ISO639LanguageDescriptor carries the language and audio type of an
// elementary stream (ISO/IEC 13818-1 §2.6.18). Only the single-entry form
// seen on air is decoded.
type ISO639LanguageDescriptor struct {
	Language  [3]byte
	AudioType uint8
}

func (d *ISO639LanguageDescriptor) Tag() uint8 { return TagISO639Language }

// Code returns the language as a display string.
func (d *ISO639LanguageDescriptor) Code() string {
	return DecodeText(d.Language[:])
}

func decodeISO639Language(buf []byte) (Descriptor, error) {
	if len(buf) != 4 {
		return nil, fmt.Errorf("ISO 639 language descriptor length %d, expected 4", len(buf))
	}
	return &ISO639LanguageDescriptor{
		Language:  [3]byte{buf[0], buf[1], buf[2]},
		AudioType: buf[3],
	}, nil
}

// ApplicationSignallingEntry announces one interactive application type
// (ETSI TS 102 809 §5.3.5.1).
type ApplicationSignallingEntry struct {
	ApplicationType uint16
	AITVersion      uint8
}

// ApplicationSignallingDescriptor marks a stream as carrying AIT sections.
type ApplicationSignallingDescriptor struct {
	Entries []ApplicationSignallingEntry
}

func (d *ApplicationSignallingDescriptor) Tag() uint8 { return TagApplicationSignalling }

func decodeApplicationSignalling(buf []byte) (Descriptor, error) {
	if len(buf)%3 != 0 {
		return nil, fmt.Errorf("application signalling length %d not a multiple of 3", len(buf))
	}
	d := &ApplicationSignallingDescriptor{}
	for off := 0; off < len(buf); off += 3 {
		d.Entries = append(d.Entries, ApplicationSignallingEntry{
			ApplicationType: uint16(buf[off]&0x7F)<<8 | uint16(buf[off+1]),
			AITVersion:      buf[off+2] & 0x1F,
		})
	}
	return d, nil
}

// CarouselIdentifierDescriptor identifies an object carousel
// (ETSI TS 102 809 §B.2.8). FormatID 0x01 carries the enhanced boot info.
type CarouselIdentifierDescriptor struct {
	CarouselID uint32
	FormatID   uint8
	// Standard format (FormatID 0x00).
	PrivateData []byte
	// Enhanced format (FormatID 0x01).
	ModuleVersion     uint8
	ModuleID          uint16
	BlockSize         uint16
	ModuleSize        uint32
	CompressionMethod uint8
	OriginalSize      uint32
	Timeout           uint8
	ObjectKey         []byte
}

func (d *CarouselIdentifierDescriptor) Tag() uint8 { return TagCarouselIdentifier }

func decodeCarouselIdentifier(buf []byte) (Descriptor, error) {
	if len(buf) < 5 {
		return nil, fmt.Errorf("carousel identifier descriptor too short: %d bytes", len(buf))
	}
	d := &CarouselIdentifierDescriptor{
		CarouselID: uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]),
		FormatID:   buf[4],
	}

	switch d.FormatID {
	case 0x00:
		d.PrivateData = make([]byte, len(buf)-5)
		copy(d.PrivateData, buf[5:])
	case 0x01:
		if len(buf) < 21 {
			return nil, fmt.Errorf("carousel identifier enhanced boot info too short: %d bytes", len(buf))
		}
		d.ModuleVersion = buf[5]
		d.ModuleID = uint16(buf[6])<<8 | uint16(buf[7])
		d.BlockSize = uint16(buf[8])<<8 | uint16(buf[9])
		d.ModuleSize = uint32(buf[10])<<24 | uint32(buf[11])<<16 | uint32(buf[12])<<8 | uint32(buf[13])
		d.CompressionMethod = buf[14]
		d.OriginalSize = uint32(buf[15])<<24 | uint32(buf[16])<<16 | uint32(buf[17])<<8 | uint32(buf[18])
		d.Timeout = buf[19]
		keyLen := int(buf[20])
		if 21+keyLen > len(buf) {
			return nil, fmt.Errorf("carousel identifier object key overruns descriptor")
		}
		d.ObjectKey = make([]byte, keyLen)
		copy(d.ObjectKey, buf[21:21+keyLen])
		d.PrivateData = make([]byte, len(buf)-21-keyLen)
		copy(d.PrivateData, buf[21+keyLen:])
	default:
		return nil, fmt.Errorf("carousel identifier format id 0x%02X not recognized", d.FormatID)
	}

	return d, nil
}

// LogicalChannelEntry assigns a channel number to a service.
type LogicalChannelEntry struct {
	ServiceID     uint16
	Visible       bool
	ChannelNumber uint16
}

// LogicalChannelDescriptor carries broadcaster-assigned channel numbers.
// The layout follows the EN 300 468 vendor convention used by reference
// scanning tools: 16-bit service id, visible flag, 10-bit channel number.
type LogicalChannelDescriptor struct {
	Entries []LogicalChannelEntry
}

func (d *LogicalChannelDescriptor) Tag() uint8 { return TagLogicalChannel }

func decodeLogicalChannel(buf []byte) (Descriptor, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("logical channel descriptor length %d not a multiple of 4", len(buf))
	}
	d := &LogicalChannelDescriptor{}
	for off := 0; off < len(buf); off += 4 {
		d.Entries = append(d.Entries, LogicalChannelEntry{
			ServiceID:     uint16(buf[off])<<8 | uint16(buf[off+1]),
			Visible:       buf[off+2]&0x80 != 0,
			ChannelNumber: uint16(buf[off+2]&0x03)<<8 | uint16(buf[off+3]),
		})
	}
	return d, nil
}
