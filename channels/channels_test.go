package channels

import (
	"testing"

	"github.com/dvbtk/dvbscan/frontend"
	"github.com/dvbtk/dvbscan/psi"
	"github.com/dvbtk/dvbscan/scan"
)

func serviceEntry(id uint16, name string) psi.Service {
	return psi.Service{
		ServiceID: id,
		Descriptors: []psi.Descriptor{
			&psi.ServiceDescriptor{Type: psi.ServiceDigitalTelevision, Name: name},
		},
	}
}

func nitWith(tsid uint16, serviceIDs []uint16, lcns map[uint16]uint16) *psi.NetworkInformation {
	list := &psi.ServiceListDescriptor{}
	for _, id := range serviceIDs {
		list.Services = append(list.Services, psi.ServiceListEntry{
			ServiceID: id,
			Type:      psi.ServiceDigitalTelevision,
		})
	}
	descriptors := []psi.Descriptor{list}
	if len(lcns) > 0 {
		lcd := &psi.LogicalChannelDescriptor{}
		for id, number := range lcns {
			lcd.Entries = append(lcd.Entries, psi.LogicalChannelEntry{
				ServiceID:     id,
				Visible:       true,
				ChannelNumber: number,
			})
		}
		descriptors = append(descriptors, lcd)
	}
	return &psi.NetworkInformation{
		Elements: []psi.NITElement{{
			TransportStreamID:    tsid,
			OriginalNetworkID:    1,
			TransportDescriptors: descriptors,
		}},
	}
}

func testTransponder() *scan.Transponder {
	return &scan.Transponder{
		Frequency:         474_166_000,
		System:            frontend.SystemDVBT,
		Bandwidth:         frontend.Bandwidth8MHz,
		TransportStreamID: 42,
		NIT:               nitWith(42, []uint16{0x0101}, map[uint16]uint16{0x0101: 3}),
		SDT: &psi.ServiceDescription{
			OriginalNetworkID: 0x20FA,
			Services:          []psi.Service{serviceEntry(0x0101, "Test TV")},
		},
		PMTs: []*psi.ProgramMapTable{{
			ProgramNumber: 0x0101,
			PCRPID:        0x064,
			Streams: []psi.ElementaryStream{
				{Type: psi.StreamTypeH264Video, PID: 0x065},
				{
					Type: psi.StreamTypeMPEG2Audio,
					PID:  0x066,
					Descriptors: []psi.Descriptor{
						&psi.ISO639LanguageDescriptor{Language: [3]byte{'f', 'r', 'a'}},
					},
				},
				{
					Type: psi.StreamTypePrivatePES,
					PID:  0x067,
					Descriptors: []psi.Descriptor{
						&psi.AC3Descriptor{},
						&psi.ISO639LanguageDescriptor{Language: [3]byte{'q', 'a', 'a'}},
					},
				},
				{Type: psi.StreamTypePrivatePES, PID: 0x068}, // data, not audio
			},
		}},
	}
}

func TestFromTransponder(t *testing.T) {
	t.Parallel()
	channels := FromTransponder(testTransponder())

	if len(channels) != 1 {
		t.Fatalf("channels = %d, want 1", len(channels))
	}
	ch := channels[0]

	if ch.Name != "Test TV" {
		t.Errorf("Name = %q, want %q", ch.Name, "Test TV")
	}
	if ch.Frequency != 474_166_000 || ch.System != frontend.SystemDVBT {
		t.Errorf("tuning info = %d Hz %v", ch.Frequency, ch.System)
	}
	if ch.ServiceID != 0x0101 || ch.OriginalNetworkID != 0x20FA || ch.TransportStreamID != 42 {
		t.Errorf("ids = sid 0x%04X onid 0x%04X tsid %d", ch.ServiceID, ch.OriginalNetworkID, ch.TransportStreamID)
	}
	if ch.LogicalChannel == nil || *ch.LogicalChannel != 3 {
		t.Errorf("LogicalChannel = %v, want 3", ch.LogicalChannel)
	}
	if ch.SymbolRate != nil {
		t.Error("terrestrial channel should have no symbol rate")
	}

	if ch.Video.PCRPID != 0x064 || ch.Video.PID != 0x065 {
		t.Errorf("Video = %+v", ch.Video)
	}
	if ch.Video.Mode != uint16(psi.StreamTypeH264Video) {
		t.Errorf("Video.Mode = 0x%02X, want H.264 stream type", ch.Video.Mode)
	}

	if len(ch.Audio.Regular) != 1 {
		t.Fatalf("regular audio = %d, want 1", len(ch.Audio.Regular))
	}
	regular := ch.Audio.Regular[0]
	if regular.PID != 0x066 || regular.Language != "fra" || regular.Type != uint16(psi.StreamTypeMPEG2Audio) {
		t.Errorf("regular audio = %+v", regular)
	}

	if len(ch.Audio.Dolby) != 1 {
		t.Fatalf("dolby audio = %d, want 1 (plain private stream must not count)", len(ch.Audio.Dolby))
	}
	dolby := ch.Audio.Dolby[0]
	if dolby.PID != 0x067 || dolby.Language != "qaa" || dolby.Type != uint16(psi.TagAC3) {
		t.Errorf("dolby audio = %+v", dolby)
	}
}

func TestFromTransponder_VideoSharesPCR(t *testing.T) {
	t.Parallel()
	tp := testTransponder()
	tp.PMTs[0].PCRPID = 0x065 // same as the video PID

	channels := FromTransponder(tp)
	if len(channels) != 1 {
		t.Fatalf("channels = %d, want 1", len(channels))
	}
	if v := channels[0].Video; v.PCRPID != 0x065 || v.PID != 0 {
		t.Errorf("Video = %+v, want PCR-only assignment", v)
	}
}

func TestFromTransponder_SkipConditions(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*scan.Transponder)
	}{
		{"no service descriptor", func(tp *scan.Transponder) {
			tp.SDT.Services[0].Descriptors = nil
		}},
		{"service not in NIT", func(tp *scan.Transponder) {
			tp.NIT = nitWith(42, []uint16{0x0999}, nil)
		}},
		{"nil NIT", func(tp *scan.Transponder) {
			tp.NIT = nil
		}},
		{"no matching PMT", func(tp *scan.Transponder) {
			tp.PMTs[0].ProgramNumber = 0x0999
		}},
		{"no video stream", func(tp *scan.Transponder) {
			tp.PMTs[0].Streams = tp.PMTs[0].Streams[1:]
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tp := testTransponder()
			tc.mutate(tp)
			if got := FromTransponder(tp); len(got) != 0 {
				t.Errorf("channels = %d, want 0", len(got))
			}
		})
	}
}

func TestFromTransponder_MissingLCN(t *testing.T) {
	t.Parallel()
	tp := testTransponder()
	tp.NIT = nitWith(42, []uint16{0x0101}, nil)

	channels := FromTransponder(tp)
	if len(channels) != 1 {
		t.Fatalf("channels = %d, want 1", len(channels))
	}
	if channels[0].LogicalChannel != nil {
		t.Errorf("LogicalChannel = %v, want nil", channels[0].LogicalChannel)
	}
}

func TestDolbyTagPrecedence(t *testing.T) {
	t.Parallel()
	t.Run("ac3 wins over earlier enhanced ac3", func(t *testing.T) {
		tag, ok := dolbyTag([]psi.Descriptor{
			&psi.EnhancedAC3Descriptor{},
			&psi.AC3Descriptor{},
		})
		if !ok || tag != psi.TagAC3 {
			t.Errorf("tag = 0x%02X, %v, want AC-3", tag, ok)
		}
	})
	t.Run("enhanced ac3 alone", func(t *testing.T) {
		tag, ok := dolbyTag([]psi.Descriptor{&psi.EnhancedAC3Descriptor{}})
		if !ok || tag != psi.TagEnhancedAC3 {
			t.Errorf("tag = 0x%02X, %v, want Enhanced-AC-3", tag, ok)
		}
	})
	t.Run("no dolby descriptors", func(t *testing.T) {
		if _, ok := dolbyTag([]psi.Descriptor{&psi.StreamIdentifierDescriptor{}}); ok {
			t.Error("plain private stream should not classify as dolby")
		}
	})
}

func lcn(n uint16) *uint16 { return &n }

func TestSortByLCN(t *testing.T) {
	t.Parallel()
	channels := []ChannelInformation{
		{Name: "no lcn A"},
		{Name: "five", LogicalChannel: lcn(5)},
		{Name: "no lcn B"},
		{Name: "one", LogicalChannel: lcn(1)},
		{Name: "three", LogicalChannel: lcn(3)},
	}

	SortByLCN(channels)

	wantOrder := []string{"one", "three", "five", "no lcn A", "no lcn B"}
	for i, want := range wantOrder {
		if channels[i].Name != want {
			t.Fatalf("order = %v", names(channels))
		}
	}

	// Idempotent: sorting again must not change the order; the unnumbered
	// entries keep their relative order by stability.
	SortByLCN(channels)
	for i, want := range wantOrder {
		if channels[i].Name != want {
			t.Fatalf("order after re-sort = %v", names(channels))
		}
	}
}

func names(channels []ChannelInformation) []string {
	out := make([]string, len(channels))
	for i, ch := range channels {
		out[i] = ch.Name
	}
	return out
}
