// Package psi implements decoding of MPEG Program-Specific Information and
// DVB Service Information sections: the generic section framing per
// ISO/IEC 13818-1 §2.4.4, the PAT, PMT, NIT and SDT tables, and the
// descriptor loops embedded in them per ETSI EN 300 468.
//
// All decoders are pure functions over byte slices. Broadcast-received
// bytes are untrusted input, so every decode path is length-checked and
// returns an error instead of panicking on malformed data.
package psi

import "fmt"

const (
	// PIDPAT is the fixed PID carrying the Program Association Table.
	PIDPAT uint16 = 0x0000
	// PIDSDT is the fixed PID carrying the Service Description Table
	// (EN 300 468 table 1).
	PIDSDT uint16 = 0x0011

	// TableIDPAT identifies a program_association_section.
	TableIDPAT uint8 = 0x00
	// TableIDPMT identifies a TS_program_map_section.
	TableIDPMT uint8 = 0x02
	// TableIDNITActual identifies a network_information_section for the
	// actual network (EN 300 468 table 2).
	TableIDNITActual uint8 = 0x40
	// TableIDSDTActual identifies a service_description_section for the
	// actual transport stream.
	TableIDSDTActual uint8 = 0x42
)

const (
	sectionHeaderLen = 8
	crcLen           = 4

	// maxSectionLength is the largest section_length a PSI section may
	// carry (ISO/IEC 13818-1 §2.4.4.3 and EN 300 468 §5.1.2).
	maxSectionLength = 0x3FD
)

// Section is one decoded MPEG section: the fixed 8-byte header, the payload
// between the header and the CRC, and the trailing CRC32 word.
type Section struct {
	TableID         uint8
	SyntaxIndicator bool
	SectionLength   uint16
	// Identifier is the 16-bit field following the length whose meaning is
	// table-dependent: transport_stream_id for PAT, network_id for NIT,
	// transport_stream_id for SDT, program_number for PMT.
	Identifier        uint16
	Version           uint8
	CurrentNext       bool
	SectionNumber     uint8
	LastSectionNumber uint8

	// Payload holds the bytes between the header and the CRC word.
	Payload []byte
	// CRC is the trailing CRC_32 field as transmitted.
	CRC uint32
}

// ParseSection decodes one complete section buffer as read from a demux
// device: 8-byte header, payload, 4-byte CRC.
func ParseSection(buf []byte) (*Section, error) {
	if len(buf) < sectionHeaderLen+crcLen {
		return nil, fmt.Errorf("psi: section too short: %d bytes", len(buf))
	}

	s := &Section{
		TableID:         buf[0],
		SyntaxIndicator: buf[1]&0x80 != 0,
	}
	if buf[1]&0x0C != 0 {
		return nil, fmt.Errorf("psi: non-zero must-be-zero bits in section length field (0x%02X)", buf[1])
	}
	s.SectionLength = uint16(buf[1]&0x03)<<8 | uint16(buf[2])
	if s.SectionLength > maxSectionLength {
		return nil, fmt.Errorf("psi: section_length %d exceeds maximum %d", s.SectionLength, maxSectionLength)
	}
	if int(s.SectionLength) != len(buf)-3 {
		return nil, fmt.Errorf("psi: section_length %d does not match buffer size %d", s.SectionLength, len(buf))
	}

	s.Identifier = uint16(buf[3])<<8 | uint16(buf[4])
	s.Version = buf[5] >> 1 & 0x1F
	s.CurrentNext = buf[5]&0x01 != 0
	s.SectionNumber = buf[6]
	s.LastSectionNumber = buf[7]

	crcStart := len(buf) - crcLen
	s.Payload = make([]byte, crcStart-sectionHeaderLen)
	copy(s.Payload, buf[sectionHeaderLen:crcStart])
	s.CRC = uint32(buf[crcStart])<<24 | uint32(buf[crcStart+1])<<16 |
		uint32(buf[crcStart+2])<<8 | uint32(buf[crcStart+3])

	return s, nil
}

// PayloadLen returns the payload size implied by the section length field:
// section_length minus the 5 header bytes after the length field and the
// 4 CRC bytes.
func (s *Section) PayloadLen() int {
	n := int(s.SectionLength) - (5 + crcLen)
	if n < 0 {
		return 0
	}
	return n
}

// tableBounds validates that the payload actually holds the number of bytes
// the section length promises, returning that length. Every table decoder
// calls this before walking the payload.
func (s *Section) tableBounds(table string) (int, error) {
	n := s.PayloadLen()
	if n > len(s.Payload) {
		return 0, fmt.Errorf("psi: %s payload truncated: section_length implies %d bytes, have %d", table, n, len(s.Payload))
	}
	return n, nil
}
