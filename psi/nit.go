package psi

import "fmt"

// NITElement describes one transport stream referenced by the network:
// its identifiers and the descriptor loop attached to it, which typically
// carries delivery parameters, a service list and logical channel numbers.
type NITElement struct {
	TransportStreamID    uint16
	OriginalNetworkID    uint16
	TransportDescriptors []Descriptor
}

// NetworkInformation is the decoded Network Information Table
// (ETSI EN 300 468 §5.2.1). The section's identifier field carries the
// network_id.
type NetworkInformation struct {
	NetworkDescriptors []Descriptor
	Elements           []NITElement
}

// ParseNIT decodes a Network Information Table from a section.
func ParseNIT(s *Section) (*NetworkInformation, error) {
	n, err := s.tableBounds("NIT")
	if err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("psi: NIT payload too short: %d bytes", n)
	}

	nit := &NetworkInformation{}

	netDescLen := int(s.Payload[0]&0x0F)<<8 | int(s.Payload[1])
	off := 2
	if off+netDescLen > n {
		return nil, fmt.Errorf("psi: NIT network_descriptors_length %d overruns payload", netDescLen)
	}
	nit.NetworkDescriptors, err = DecodeDescriptors(s.Payload[off : off+netDescLen])
	if err != nil {
		return nil, fmt.Errorf("psi: NIT network descriptors: %w", err)
	}
	off += netDescLen

	// transport_stream_loop_length; the loop is bounded by the section
	// length anyway, matching how the loop below walks the payload.
	if off+2 > n {
		return nil, fmt.Errorf("psi: NIT transport stream loop header truncated")
	}
	off += 2

	for off < n {
		if off+6 > n {
			return nil, fmt.Errorf("psi: NIT transport stream entry truncated at offset %d", off)
		}
		el := NITElement{
			TransportStreamID: uint16(s.Payload[off])<<8 | uint16(s.Payload[off+1]),
			OriginalNetworkID: uint16(s.Payload[off+2])<<8 | uint16(s.Payload[off+3]),
		}
		descLen := int(s.Payload[off+4]&0x0F)<<8 | int(s.Payload[off+5])
		off += 6

		if off+descLen > n {
			return nil, fmt.Errorf("psi: NIT transport_descriptors_length %d overruns payload", descLen)
		}
		el.TransportDescriptors, err = DecodeDescriptors(s.Payload[off : off+descLen])
		if err != nil {
			return nil, fmt.Errorf("psi: NIT transport stream 0x%04X descriptors: %w", el.TransportStreamID, err)
		}
		off += descLen

		nit.Elements = append(nit.Elements, el)
	}

	return nit, nil
}
