package psi

import (
	"bytes"
	"testing"
)

func TestDecodeDescriptor_KnownTags(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		tag  uint8
		data []byte
		want Descriptor
	}{
		{"iso639", TagISO639Language, []byte{'e', 'n', 'g', 0x00}, &ISO639LanguageDescriptor{}},
		{"carousel", TagCarouselIdentifier, []byte{0x00, 0x00, 0x00, 0x01, 0x00}, &CarouselIdentifierDescriptor{}},
		{"network name", TagNetworkName, []byte("Net"), &NetworkNameDescriptor{}},
		{"service list", TagServiceList, []byte{0x01, 0x01, 0x01}, &ServiceListDescriptor{}},
		{"service", TagService, []byte{0x01, 0x00, 0x02, 'T', 'V'}, &ServiceDescriptor{}},
		{"component", TagComponent, []byte{0x01, 0x01, 0x00, 'e', 'n', 'g'}, &ComponentDescriptor{}},
		{"stream identifier", TagStreamIdentifier, []byte{0x07}, &StreamIdentifierDescriptor{}},
		{"subtitling", TagSubtitling, []byte{'e', 'n', 'g', 0x10, 0x00, 0x01, 0x00, 0x02}, &SubtitlingDescriptor{}},
		{"terrestrial delivery", TagTerrestrialDelivery, make([]byte, 11), &TerrestrialDeliveryDescriptor{}},
		{"private data specifier", TagPrivateDataSpecifier, []byte{0x00, 0x00, 0x00, 0x28}, &PrivateDataSpecifierDescriptor{}},
		{"data broadcast id", TagDataBroadcastID, []byte{0x01, 0x23}, &DataBroadcastIDDescriptor{}},
		{"ac3", TagAC3, []byte{0x00}, &AC3Descriptor{}},
		{"application signalling", TagApplicationSignalling, []byte{0x00, 0x10, 0x01}, &ApplicationSignallingDescriptor{}},
		{"enhanced ac3", TagEnhancedAC3, []byte{0x00}, &EnhancedAC3Descriptor{}},
		{"extension", TagExtension, []byte{0x04}, &ExtensionDescriptor{}},
		{"logical channel", TagLogicalChannel, []byte{0x01, 0x01, 0xFC, 0x05}, &LogicalChannelDescriptor{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeDescriptor(tc.tag, tc.data)
			if err != nil {
				t.Fatalf("DecodeDescriptor(0x%02X): %v", tc.tag, err)
			}
			if got.Tag() != tc.tag {
				t.Errorf("Tag() = 0x%02X, want 0x%02X", got.Tag(), tc.tag)
			}
			if _, unknown := got.(*UnknownDescriptor); unknown {
				t.Errorf("tag 0x%02X decoded as UnknownDescriptor", tc.tag)
			}
		})
	}
}

func TestDecodeDescriptor_Unknown(t *testing.T) {
	t.Parallel()
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	got, err := DecodeDescriptor(0xC7, data)
	if err != nil {
		t.Fatalf("DecodeDescriptor: %v", err)
	}
	u, ok := got.(*UnknownDescriptor)
	if !ok {
		t.Fatalf("got %T, want *UnknownDescriptor", got)
	}
	if u.Tag() != 0xC7 {
		t.Errorf("Tag() = 0x%02X, want 0xC7", u.Tag())
	}
	if !bytes.Equal(u.Data, data) {
		t.Errorf("Data = % X, want % X", u.Data, data)
	}
	// The descriptor must hold its own copy of the bytes.
	data[0] = 0x00
	if u.Data[0] != 0xDE {
		t.Error("UnknownDescriptor aliases the caller's buffer")
	}
}

func TestDecodeDescriptors_Truncation(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		buf  []byte
	}{
		{"header cut", []byte{0x48}},
		{"length overrun", []byte{0x48, 0x10, 0x01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeDescriptors(tc.buf); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDecodeAC3_OptionalFields(t *testing.T) {
	t.Parallel()
	got, err := DecodeDescriptor(TagAC3, []byte{0xC0, 0x42, 0x08, 0xAA})
	if err != nil {
		t.Fatalf("DecodeDescriptor: %v", err)
	}
	d := got.(*AC3Descriptor)
	if d.ComponentType == nil || *d.ComponentType != 0x42 {
		t.Errorf("ComponentType = %v, want 0x42", d.ComponentType)
	}
	if d.BSID == nil || *d.BSID != 0x08 {
		t.Errorf("BSID = %v, want 0x08", d.BSID)
	}
	if d.MainID != nil || d.ASVC != nil {
		t.Error("MainID and ASVC should be absent")
	}
	if !bytes.Equal(d.AdditionalInfo, []byte{0xAA}) {
		t.Errorf("AdditionalInfo = % X", d.AdditionalInfo)
	}
}

func TestDecodeAC3_MissingOptionalField(t *testing.T) {
	t.Parallel()
	if _, err := DecodeDescriptor(TagAC3, []byte{0x80}); err == nil {
		t.Error("expected error when component_type flag is set with no byte")
	}
}

func TestDecodeEnhancedAC3_ComponentType(t *testing.T) {
	t.Parallel()
	// component_type present: enhanced, full service, stereo (b2 set).
	got, err := DecodeDescriptor(TagEnhancedAC3, []byte{0x80, 0xD0})
	if err != nil {
		t.Fatalf("DecodeDescriptor: %v", err)
	}
	d := got.(*EnhancedAC3Descriptor)
	if d.ComponentType == nil {
		t.Fatal("ComponentType should be present")
	}
	ct := d.ComponentType
	if !ct.Enhanced || !ct.FullService {
		t.Errorf("Enhanced = %v, FullService = %v, want both set", ct.Enhanced, ct.FullService)
	}
	if ct.ServiceType != EAC3ServiceVisuallyImpaired {
		t.Errorf("ServiceType = %d, want visually impaired", ct.ServiceType)
	}
	if ct.ChannelSetup != EAC3ChannelStereo {
		t.Errorf("ChannelSetup = %d, want stereo", ct.ChannelSetup)
	}
}

func TestDecodeEnhancedAC3_Substreams(t *testing.T) {
	t.Parallel()
	got, err := DecodeDescriptor(TagEnhancedAC3, []byte{0x0F, 0x01, 0x02, 0x03})
	if err != nil {
		t.Fatalf("DecodeDescriptor: %v", err)
	}
	d := got.(*EnhancedAC3Descriptor)
	if !d.MixInfoExists {
		t.Error("MixInfoExists should be set")
	}
	for i, sub := range []*uint8{d.Substream1, d.Substream2, d.Substream3} {
		if sub == nil || *sub != uint8(i+1) {
			t.Errorf("Substream%d = %v, want %d", i+1, sub, i+1)
		}
	}
}

func TestDecodeCarouselIdentifier(t *testing.T) {
	t.Parallel()
	t.Run("standard format", func(t *testing.T) {
		got, err := DecodeDescriptor(TagCarouselIdentifier, []byte{0x00, 0x00, 0x00, 0x07, 0x00, 0xAB})
		if err != nil {
			t.Fatalf("DecodeDescriptor: %v", err)
		}
		d := got.(*CarouselIdentifierDescriptor)
		if d.CarouselID != 7 || d.FormatID != 0 {
			t.Errorf("CarouselID = %d, FormatID = %d", d.CarouselID, d.FormatID)
		}
		if !bytes.Equal(d.PrivateData, []byte{0xAB}) {
			t.Errorf("PrivateData = % X", d.PrivateData)
		}
	})

	t.Run("unrecognized format id", func(t *testing.T) {
		if _, err := DecodeDescriptor(TagCarouselIdentifier, []byte{0x00, 0x00, 0x00, 0x07, 0x02}); err == nil {
			t.Error("expected error for format id 0x02")
		}
	})
}

func TestDecodeTerrestrialDelivery(t *testing.T) {
	t.Parallel()
	buf := []byte{
		0x02, 0xD3, 0x85, 0x18, // 47 416 600 * 10 Hz = 474.166 MHz
		0x18,                   // 8 MHz bandwidth, priority set, time slicing
		0x6D,                   // 16-QAM, hierarchy 5, code rate HP 5/6
		0x27,                   // code rate LP, guard interval, mode, other frequency
		0xFF, 0xFF, 0xFF, 0xFF,
	}
	got, err := DecodeDescriptor(TagTerrestrialDelivery, buf)
	if err != nil {
		t.Fatalf("DecodeDescriptor: %v", err)
	}
	d := got.(*TerrestrialDeliveryDescriptor)
	if d.CentreFrequency != 47416600 {
		t.Errorf("CentreFrequency = %d, want 47416600", d.CentreFrequency)
	}
	if d.Bandwidth != 0 {
		t.Errorf("Bandwidth = %d, want 0 (8 MHz)", d.Bandwidth)
	}
	if !d.Priority || !d.TimeSlicing || d.MPEFEC {
		t.Errorf("flags = priority %v, time slicing %v, MPE-FEC %v", d.Priority, d.TimeSlicing, d.MPEFEC)
	}
	if d.Constellation != 1 {
		t.Errorf("Constellation = %d, want 1 (16-QAM range bits)", d.Constellation)
	}
	if !d.OtherFrequencyInUse {
		t.Error("OtherFrequencyInUse should be set")
	}
}

func TestFindDescriptor(t *testing.T) {
	t.Parallel()
	list := []Descriptor{
		&StreamIdentifierDescriptor{ComponentTag: 1},
		&ISO639LanguageDescriptor{Language: [3]byte{'e', 'n', 'g'}},
	}
	lang, ok := FindDescriptor[*ISO639LanguageDescriptor](list)
	if !ok || lang.Code() != "eng" {
		t.Errorf("FindDescriptor = %v, %v", lang, ok)
	}
	if _, ok := FindDescriptor[*AC3Descriptor](list); ok {
		t.Error("FindDescriptor should miss absent types")
	}
}
