package psi

import "fmt"

// PATEntry associates a program number with the PID carrying that program's
// map section, or with the network PID when the program number is 0
// (ISO/IEC 13818-1 §2.4.4.3).
type PATEntry struct {
	ProgramNumber uint16
	PID           uint16
}

// IsNetwork reports whether the entry points at the Network Information
// Table rather than a program map.
func (e PATEntry) IsNetwork() bool {
	return e.ProgramNumber == 0
}

// ParsePAT decodes the Program Association Table from a section. Entries
// are returned in transmission order.
func ParsePAT(s *Section) ([]PATEntry, error) {
	n, err := s.tableBounds("PAT")
	if err != nil {
		return nil, err
	}

	var entries []PATEntry
	for off := 0; off < n; off += 4 {
		if off+4 > n {
			return nil, fmt.Errorf("psi: PAT entry truncated at offset %d", off)
		}
		entries = append(entries, PATEntry{
			ProgramNumber: uint16(s.Payload[off])<<8 | uint16(s.Payload[off+1]),
			PID:           uint16(s.Payload[off+2]&0x1F)<<8 | uint16(s.Payload[off+3]),
		})
	}
	return entries, nil
}
