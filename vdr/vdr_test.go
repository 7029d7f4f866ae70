package vdr

import (
	"testing"

	"github.com/dvbtk/dvbscan/channels"
	"github.com/dvbtk/dvbscan/frontend"
)

// The example line from vdr(5).
const exampleLine = "RTL Television,RTL;RTL World:12187:hC34M2O0S0:S19.2E:27500:163=2:104=deu;106=deu:105:0:12003:1:1089:0"

func TestParseChannel(t *testing.T) {
	t.Parallel()
	ch, err := ParseChannel(exampleLine)
	if err != nil {
		t.Fatalf("ParseChannel: %v", err)
	}

	if ch.Name != "RTL Television" || ch.ShortName != "RTL" || ch.Bouquet != "RTL World" {
		t.Errorf("names = %q / %q / %q", ch.Name, ch.ShortName, ch.Bouquet)
	}
	if ch.Frequency != 12187 {
		t.Errorf("Frequency = %d, want 12187", ch.Frequency)
	}
	if ch.Source != "S19.2E" {
		t.Errorf("Source = %q", ch.Source)
	}
	if ch.SymbolRate != 27500 {
		t.Errorf("SymbolRate = %d, want 27500", ch.SymbolRate)
	}

	p := ch.Parameters
	if p.Polarization == nil || *p.Polarization != PolarizationHorizontal {
		t.Errorf("Polarization = %v, want horizontal", p.Polarization)
	}
	if p.CodeRateHP == nil || *p.CodeRateHP != CodeRate3_4 {
		t.Errorf("CodeRateHP = %v, want 3/4", p.CodeRateHP)
	}
	if p.Modulation == nil || *p.Modulation != ModulationQPSK {
		t.Errorf("Modulation = %v, want QPSK", p.Modulation)
	}
	if p.RollOff == nil || *p.RollOff != RollOffNone {
		t.Errorf("RollOff = %v, want none", p.RollOff)
	}
	if p.Generation == nil || *p.Generation != GenerationFirst {
		t.Errorf("Generation = %v, want first", p.Generation)
	}

	if ch.Video.PCRPID != 163 || ch.Video.PID != 0 || ch.Video.Mode != 2 {
		t.Errorf("Video = %+v", ch.Video)
	}
	if len(ch.Audio.Regular) != 1 || ch.Audio.Regular[0].PID != 104 || ch.Audio.Regular[0].Language != "deu" {
		t.Errorf("regular audio = %+v", ch.Audio.Regular)
	}
	if len(ch.Audio.Dolby) != 1 || ch.Audio.Dolby[0].PID != 106 || ch.Audio.Dolby[0].Language != "deu" {
		t.Errorf("dolby audio = %+v", ch.Audio.Dolby)
	}
	if len(ch.Teletext.Teletext) != 1 || ch.Teletext.Teletext[0] != 105 {
		t.Errorf("teletext = %+v", ch.Teletext)
	}
	if ch.ConditionalAccess != "0" {
		t.Errorf("ConditionalAccess = %q", ch.ConditionalAccess)
	}
	if ch.ServiceID != 12003 || ch.NetworkID != 1 || ch.TransportStreamID != 1089 || ch.RadioID != 0 {
		t.Errorf("ids = %d/%d/%d/%d", ch.ServiceID, ch.NetworkID, ch.TransportStreamID, ch.RadioID)
	}
}

func TestChannelRoundTrip(t *testing.T) {
	t.Parallel()
	ch, err := ParseChannel(exampleLine)
	if err != nil {
		t.Fatalf("ParseChannel: %v", err)
	}

	// Formatting normalizes the parameter order and letter case; a second
	// parse+format cycle must reproduce the line verbatim.
	once := ch.String()
	again, err := ParseChannel(once)
	if err != nil {
		t.Fatalf("ParseChannel(formatted): %v", err)
	}
	if twice := again.String(); twice != once {
		t.Errorf("format not stable:\n first %q\nsecond %q", once, twice)
	}
}

func TestParseChannel_ColumnCount(t *testing.T) {
	t.Parallel()
	if _, err := ParseChannel("Name:474000000:B8:T:0"); err == nil {
		t.Error("expected error for short line")
	}
}

func TestNameEscaping(t *testing.T) {
	t.Parallel()
	ch := &ChannelDefinition{
		Name:              "News: Late Edition",
		Source:            "T",
		ConditionalAccess: "0",
	}
	line := ch.String()

	parsed, err := ParseChannel(line)
	if err != nil {
		t.Fatalf("ParseChannel: %v", err)
	}
	if parsed.Name != "News: Late Edition" {
		t.Errorf("Name = %q, colon should survive the '|' escaping", parsed.Name)
	}
}

func TestParseParameters(t *testing.T) {
	t.Parallel()
	p, err := ParseParameters("B8C23D0G32M64T8X0Y0P3Q1234I1")
	if err != nil {
		t.Fatalf("ParseParameters: %v", err)
	}
	if p.Bandwidth == nil || *p.Bandwidth != Bandwidth8MHz {
		t.Errorf("Bandwidth = %v", p.Bandwidth)
	}
	if p.CodeRateHP == nil || *p.CodeRateHP != CodeRate2_3 {
		t.Errorf("CodeRateHP = %v", p.CodeRateHP)
	}
	if p.CodeRateLP == nil || *p.CodeRateLP != CodeRateNone {
		t.Errorf("CodeRateLP = %v", p.CodeRateLP)
	}
	if p.GuardInterval == nil || *p.GuardInterval != Guard1_32 {
		t.Errorf("GuardInterval = %v", p.GuardInterval)
	}
	if p.Modulation == nil || *p.Modulation != ModulationQAM64 {
		t.Errorf("Modulation = %v", p.Modulation)
	}
	if p.TransmissionMode == nil || *p.TransmissionMode != Transmission8k {
		t.Errorf("TransmissionMode = %v", p.TransmissionMode)
	}
	if p.InputMode == nil || *p.InputMode != InputSingle {
		t.Errorf("InputMode = %v", p.InputMode)
	}
	if p.Hierarchy == nil || *p.Hierarchy != HierarchyOff {
		t.Errorf("Hierarchy = %v", p.Hierarchy)
	}
	if p.StreamID == nil || *p.StreamID != 3 {
		t.Errorf("StreamID = %v", p.StreamID)
	}
	if p.T2SystemID == nil || *p.T2SystemID != 1234 {
		t.Errorf("T2SystemID = %v", p.T2SystemID)
	}
	if p.Inversion == nil || !*p.Inversion {
		t.Errorf("Inversion = %v", p.Inversion)
	}

	if got := p.String(); got != "B8C23D0G32I1M64P3Q1234T8X0Y0" {
		t.Errorf("String() = %q", got)
	}
}

func TestParseParameters_Rejects(t *testing.T) {
	t.Parallel()
	for _, bad := range []string{"B9", "C11", "Z1", "I5", "G7"} {
		if _, err := ParseParameters(bad); err == nil {
			t.Errorf("ParseParameters(%q) should fail", bad)
		}
	}
}

func TestVideoPIDForms(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want VideoPID
	}{
		{"164", VideoPID{PCRPID: 164}},
		{"164=27", VideoPID{PCRPID: 164, Mode: 27}},
		{"164+17", VideoPID{PID: 164, PCRPID: 17}},
		{"164+17=27", VideoPID{PID: 164, PCRPID: 17, Mode: 27}},
	}
	for _, tc := range cases {
		got, err := ParseVideoPID(tc.in)
		if err != nil {
			t.Errorf("ParseVideoPID(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseVideoPID(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
		if out := got.String(); out != tc.in {
			t.Errorf("round trip of %q produced %q", tc.in, out)
		}
	}
}

func TestParseList(t *testing.T) {
	t.Parallel()
	text := "# comment\n\n:Favourites\n" + exampleLine + "\n"
	list, err := ParseList(text)
	if err != nil {
		t.Fatalf("ParseList: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("channels = %d, want 1", len(list))
	}
	if list[0].Name != "RTL Television" {
		t.Errorf("Name = %q", list[0].Name)
	}
}

func TestFromChannel(t *testing.T) {
	t.Parallel()
	number := uint16(3)
	ch := channels.ChannelInformation{
		Frequency:         474_166_000,
		Bandwidth:         frontend.Bandwidth8MHz,
		System:            frontend.SystemDVBT,
		Name:              "Test TV",
		LogicalChannel:    &number,
		ServiceID:         0x0101,
		OriginalNetworkID: 0x20FA,
		TransportStreamID: 42,
		Video:             channels.VideoPID{PCRPID: 100, PID: 101, Mode: 27},
		Audio: channels.AudioPIDList{
			Regular: []channels.AudioPID{{PID: 102, Language: "fra", Type: 4}},
			Dolby:   []channels.AudioPID{{PID: 103, Language: "qaa", Type: 0x6A}},
		},
	}

	def := FromChannel(ch)
	want := "Test TV:474166000:B8S0:T:0:101+100=27:102=fra@4;103=qaa@106:0:0:257:8442:42:0"
	if got := def.String(); got != want {
		t.Errorf("line = %q\n want %q", got, want)
	}
}
