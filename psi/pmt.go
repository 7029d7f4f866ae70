package psi

import "fmt"

// StreamType classifies an elementary stream, per ISO/IEC 13818-1 table 2-29.
type StreamType uint8

const (
	StreamTypeReserved        StreamType = 0x00
	StreamTypeMPEG1Video      StreamType = 0x01
	StreamTypeMPEG2Video      StreamType = 0x02
	StreamTypeMPEG1Audio      StreamType = 0x03
	StreamTypeMPEG2Audio      StreamType = 0x04
	StreamTypePrivateSections StreamType = 0x05
	StreamTypePrivatePES      StreamType = 0x06
	StreamTypeMHEG            StreamType = 0x07
	StreamTypeDSMCC           StreamType = 0x08
	StreamTypeH222_1          StreamType = 0x09
	StreamTypeDSMCCTypeA      StreamType = 0x0A
	StreamTypeDSMCCTypeB      StreamType = 0x0B
	StreamTypeDSMCCTypeC      StreamType = 0x0C
	StreamTypeDSMCCTypeD      StreamType = 0x0D
	StreamTypeAuxiliary       StreamType = 0x0E
	StreamTypeADTSAudio       StreamType = 0x0F
	StreamTypeMPEG4Visual     StreamType = 0x10
	StreamTypeLATMAudio       StreamType = 0x11
	StreamTypeSLPES           StreamType = 0x12
	StreamTypeSLSections      StreamType = 0x13
	StreamTypeSyncDownload    StreamType = 0x14
	StreamTypeH264Video       StreamType = 0x1B
	StreamTypeH265Video       StreamType = 0x24
)

// IsVideo reports whether the stream carries a video elementary stream the
// channel projection understands.
func (t StreamType) IsVideo() bool {
	switch t {
	case StreamTypeMPEG1Video, StreamTypeMPEG2Video, StreamTypeH264Video, StreamTypeH265Video:
		return true
	}
	return false
}

// IsRegularAudio reports whether the stream carries plain MPEG audio
// (ISO/IEC 11172-3 or 13818-3).
func (t StreamType) IsRegularAudio() bool {
	return t == StreamTypeMPEG1Audio || t == StreamTypeMPEG2Audio
}

// IsPrivate reports whether the stream carries private sections or private
// PES data. Dolby audio on DVB is signalled this way, with an AC-3 or
// Enhanced-AC-3 descriptor attached to the stream.
func (t StreamType) IsPrivate() bool {
	return t == StreamTypePrivateSections || t == StreamTypePrivatePES
}

// ElementaryStream is one stream entry of a PMT: its type, the PID carrying
// it, and the descriptors attached to it.
type ElementaryStream struct {
	Type        StreamType
	PID         uint16
	Descriptors []Descriptor
}

// ProgramMapTable lists the elementary streams making up one program
// (ISO/IEC 13818-1 §2.4.4.8).
type ProgramMapTable struct {
	ProgramNumber      uint16
	PCRPID             uint16
	ProgramDescriptors []Descriptor
	Streams            []ElementaryStream
}

// ParsePMT decodes a Program Map Table from a section. The section's
// identifier field carries the program number.
func ParsePMT(s *Section) (*ProgramMapTable, error) {
	n, err := s.tableBounds("PMT")
	if err != nil {
		return nil, err
	}
	if n < 4 {
		return nil, fmt.Errorf("psi: PMT payload too short: %d bytes", n)
	}

	pmt := &ProgramMapTable{
		ProgramNumber: s.Identifier,
		PCRPID:        uint16(s.Payload[0]&0x1F)<<8 | uint16(s.Payload[1]),
	}

	infoLen := int(s.Payload[2]&0x03)<<8 | int(s.Payload[3])
	off := 4
	if off+infoLen > n {
		return nil, fmt.Errorf("psi: PMT program_info_length %d overruns payload", infoLen)
	}
	pmt.ProgramDescriptors, err = DecodeDescriptors(s.Payload[off : off+infoLen])
	if err != nil {
		return nil, fmt.Errorf("psi: PMT program descriptors: %w", err)
	}
	off += infoLen

	for off < n {
		if off+5 > n {
			return nil, fmt.Errorf("psi: PMT stream entry truncated at offset %d", off)
		}
		es := ElementaryStream{
			Type: StreamType(s.Payload[off]),
			PID:  uint16(s.Payload[off+1]&0x1F)<<8 | uint16(s.Payload[off+2]),
		}
		esInfoLen := int(s.Payload[off+3]&0x03)<<8 | int(s.Payload[off+4])
		off += 5

		if off+esInfoLen > n {
			return nil, fmt.Errorf("psi: PMT ES_info_length %d overruns payload", esInfoLen)
		}
		es.Descriptors, err = DecodeDescriptors(s.Payload[off : off+esInfoLen])
		if err != nil {
			return nil, fmt.Errorf("psi: PMT stream 0x%04X descriptors: %w", es.PID, err)
		}
		off += esInfoLen

		pmt.Streams = append(pmt.Streams, es)
	}

	return pmt, nil
}
