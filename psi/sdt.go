package psi

import "fmt"

// Service is one service entry of the SDT, with its EIT signalling flags,
// running status (3-bit field, EN 300 468 table 6) and descriptor loop.
// The human-readable service name lives in a ServiceDescriptor among the
// descriptors.
type Service struct {
	ServiceID           uint16
	EITSchedule         bool
	EITPresentFollowing bool
	RunningStatus       uint8
	FreeCAMode          bool
	Descriptors         []Descriptor
}

// ServiceDescription is the decoded Service Description Table
// (ETSI EN 300 468 §5.2.3). The section's identifier field carries the
// transport_stream_id.
type ServiceDescription struct {
	OriginalNetworkID uint16
	Services          []Service
}

// ParseSDT decodes a Service Description Table from a section.
func ParseSDT(s *Section) (*ServiceDescription, error) {
	n, err := s.tableBounds("SDT")
	if err != nil {
		return nil, err
	}
	if n < 3 {
		return nil, fmt.Errorf("psi: SDT payload too short: %d bytes", n)
	}

	sdt := &ServiceDescription{
		OriginalNetworkID: uint16(s.Payload[0])<<8 | uint16(s.Payload[1]),
	}
	// Payload[2] is reserved_future_use.

	off := 3
	for off < n {
		if off+5 > n {
			return nil, fmt.Errorf("psi: SDT service entry truncated at offset %d", off)
		}
		svc := Service{
			ServiceID:           uint16(s.Payload[off])<<8 | uint16(s.Payload[off+1]),
			EITSchedule:         s.Payload[off+2]&0x02 != 0,
			EITPresentFollowing: s.Payload[off+2]&0x01 != 0,
			RunningStatus:       s.Payload[off+3] >> 5,
			FreeCAMode:          s.Payload[off+3]&0x10 != 0,
		}
		descLen := int(s.Payload[off+3]&0x0F)<<8 | int(s.Payload[off+4])
		off += 5

		if off+descLen > n {
			return nil, fmt.Errorf("psi: SDT descriptors_loop_length %d overruns payload", descLen)
		}
		svc.Descriptors, err = DecodeDescriptors(s.Payload[off : off+descLen])
		if err != nil {
			return nil, fmt.Errorf("psi: SDT service 0x%04X descriptors: %w", svc.ServiceID, err)
		}
		off += descLen

		sdt.Services = append(sdt.Services, svc)
	}

	return sdt, nil
}
