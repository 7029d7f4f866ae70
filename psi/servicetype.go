package psi

// ServiceType classifies a DVB service, per ETSI EN 300 468 table 89.
// Values not listed below are either user-defined (0x80-0xFE) or reserved.
type ServiceType uint8

const (
	ServiceDigitalTelevision        ServiceType = 0x01
	ServiceDigitalRadioSound        ServiceType = 0x02
	ServiceTeletext                 ServiceType = 0x03
	ServiceNVODReference            ServiceType = 0x04
	ServiceNVODTimeShifted          ServiceType = 0x05
	ServiceMosaic                   ServiceType = 0x06
	ServiceFMRadio                  ServiceType = 0x07
	ServiceDVBSRM                   ServiceType = 0x08
	ServiceAdvancedCodecRadioSound  ServiceType = 0x0A
	ServiceH264Mosaic               ServiceType = 0x0B
	ServiceDataBroadcast            ServiceType = 0x0C
	ServiceCIUsage                  ServiceType = 0x0D
	ServiceRCSMap                   ServiceType = 0x0E
	ServiceRCSForwardLinkSignalling ServiceType = 0x0F
	ServiceDVBMHP                   ServiceType = 0x10
	ServiceMPEG2HDTelevision        ServiceType = 0x11
	ServiceH264SDTelevision         ServiceType = 0x16
	ServiceH264SDNVODTimeShifted    ServiceType = 0x17
	ServiceH264SDNVODReference      ServiceType = 0x18
	ServiceH264HDTelevision         ServiceType = 0x19
	ServiceH264HDNVODTimeShifted    ServiceType = 0x1A
	ServiceH264HDNVODReference      ServiceType = 0x1B
	ServiceH264StereoHDTelevision   ServiceType = 0x1C
	ServiceH264StereoNVODShifted    ServiceType = 0x1D
	ServiceH264StereoNVODReference  ServiceType = 0x1E
	ServiceHEVCTelevision           ServiceType = 0x1F
	ServiceHEVCUHDTelevision        ServiceType = 0x20
)

// IsUserDefined reports whether the value falls in the user-defined range.
func (t ServiceType) IsUserDefined() bool {
	return t >= 0x80 && t <= 0xFE
}

func (t ServiceType) String() string {
	switch t {
	case ServiceDigitalTelevision:
		return "digital television"
	case ServiceDigitalRadioSound:
		return "digital radio sound"
	case ServiceTeletext:
		return "teletext"
	case ServiceNVODReference:
		return "NVOD reference"
	case ServiceNVODTimeShifted:
		return "NVOD time-shifted"
	case ServiceMosaic:
		return "mosaic"
	case ServiceFMRadio:
		return "FM radio"
	case ServiceDVBSRM:
		return "DVB SRM"
	case ServiceAdvancedCodecRadioSound:
		return "advanced codec digital radio sound"
	case ServiceH264Mosaic:
		return "H.264 mosaic"
	case ServiceDataBroadcast:
		return "data broadcast"
	case ServiceCIUsage:
		return "reserved for CI usage"
	case ServiceRCSMap:
		return "RCS map"
	case ServiceRCSForwardLinkSignalling:
		return "RCS forward link signalling"
	case ServiceDVBMHP:
		return "DVB MHP"
	case ServiceMPEG2HDTelevision:
		return "MPEG-2 HD digital television"
	case ServiceH264SDTelevision:
		return "H.264 SD digital television"
	case ServiceH264HDTelevision:
		return "H.264 HD digital television"
	case ServiceHEVCTelevision:
		return "HEVC digital television"
	case ServiceHEVCUHDTelevision:
		return "HEVC UHD digital television"
	}
	if t.IsUserDefined() {
		return "user-defined"
	}
	return "reserved"
}
