// Package vdr reads and writes VDR-style channels.conf lines: thirteen
// colon-separated columns per channel, e.g.
//
//	RTL Television,RTL;RTL World:12187:hC34M2O0S0:S19.2E:27500:163=2:104=deu;106=deu:105:0:12003:1:1089:0
//
// per vdr(5). Scan results are exported through FromChannel.
package vdr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dvbtk/dvbscan/channels"
	"github.com/dvbtk/dvbscan/frontend"
)

// ChannelDefinition is one channels.conf line.
type ChannelDefinition struct {
	Name      string
	ShortName string
	Bouquet   string

	Frequency  uint32
	Parameters Parameters
	// Source is the VDR source identifier; "T" for terrestrial.
	Source     string
	SymbolRate uint32

	Video    VideoPID
	Audio    AudioPIDList
	Teletext TeletextPIDList

	// ConditionalAccess is "0" for free-to-air.
	ConditionalAccess string
	ServiceID         uint16
	NetworkID         uint16
	TransportStreamID uint16
	// RadioID is 0 for television.
	RadioID uint16
}

const channelColumns = 13

// ParseChannel decodes one channels.conf line.
func ParseChannel(line string) (*ChannelDefinition, error) {
	columns := strings.Split(line, ":")
	if len(columns) != channelColumns {
		return nil, fmt.Errorf("vdr: channel line has %d columns, expected %d", len(columns), channelColumns)
	}

	ch := &ChannelDefinition{
		Source:            columns[3],
		ConditionalAccess: columns[8],
	}

	// The name column packs name, short name and bouquet as
	// "name,short;bouquet"; colons inside the name are escaped as '|'.
	names := columns[0]
	if rest, bouquet, found := strings.Cut(names, ";"); found {
		names, ch.Bouquet = rest, bouquet
	}
	if name, short, found := strings.Cut(names, ","); found {
		names, ch.ShortName = name, short
	}
	ch.Name = strings.ReplaceAll(names, "|", ":")

	var err error
	if ch.Frequency, err = parseUint32(columns[1], "frequency"); err != nil {
		return nil, err
	}
	if ch.Parameters, err = ParseParameters(columns[2]); err != nil {
		return nil, err
	}
	if ch.SymbolRate, err = parseUint32(columns[4], "symbol rate"); err != nil {
		return nil, err
	}
	if ch.Video, err = ParseVideoPID(columns[5]); err != nil {
		return nil, err
	}
	if ch.Audio, err = ParseAudioPIDList(columns[6]); err != nil {
		return nil, err
	}
	if ch.Teletext, err = ParseTeletextPIDList(columns[7]); err != nil {
		return nil, err
	}
	if ch.ServiceID, err = parsePID(columns[9], "service id"); err != nil {
		return nil, err
	}
	if ch.NetworkID, err = parsePID(columns[10], "network id"); err != nil {
		return nil, err
	}
	if ch.TransportStreamID, err = parsePID(columns[11], "transport stream id"); err != nil {
		return nil, err
	}
	if ch.RadioID, err = parsePID(columns[12], "radio id"); err != nil {
		return nil, err
	}

	return ch, nil
}

// String formats the channel as one channels.conf line.
func (ch *ChannelDefinition) String() string {
	name := strings.ReplaceAll(ch.Name, ":", "|")
	if ch.ShortName != "" {
		name += "," + ch.ShortName
	}
	if ch.Bouquet != "" {
		name += ";" + ch.Bouquet
	}

	return strings.Join([]string{
		name,
		strconv.FormatUint(uint64(ch.Frequency), 10),
		ch.Parameters.String(),
		ch.Source,
		strconv.FormatUint(uint64(ch.SymbolRate), 10),
		ch.Video.String(),
		ch.Audio.String(),
		ch.Teletext.String(),
		ch.ConditionalAccess,
		strconv.Itoa(int(ch.ServiceID)),
		strconv.Itoa(int(ch.NetworkID)),
		strconv.Itoa(int(ch.TransportStreamID)),
		strconv.Itoa(int(ch.RadioID)),
	}, ":")
}

// ParseList decodes a whole channels.conf. Empty lines, comments and group
// separator lines (starting with ':') are skipped.
func ParseList(text string) ([]*ChannelDefinition, error) {
	var list []*ChannelDefinition
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ":") {
			continue
		}
		ch, err := ParseChannel(line)
		if err != nil {
			return nil, fmt.Errorf("vdr: line %d: %w", i+1, err)
		}
		list = append(list, ch)
	}
	return list, nil
}

// FormatList renders channels as a channels.conf document, one line per
// channel with a trailing newline.
func FormatList(list []*ChannelDefinition) string {
	var b strings.Builder
	for _, ch := range list {
		b.WriteString(ch.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// FromChannel maps a scanned channel to its channels.conf representation.
// Only the tuning parameters the scan actually observed are emitted:
// bandwidth and the delivery system generation.
func FromChannel(ch channels.ChannelInformation) *ChannelDefinition {
	def := &ChannelDefinition{
		Name:      ch.Name,
		Frequency: ch.Frequency,
		Parameters: Parameters{
			Bandwidth:  bandwidthToken(ch.Bandwidth),
			Generation: generationToken(ch.System),
		},
		Source: sourceFor(ch.System),
		Video: VideoPID{
			PCRPID: ch.Video.PCRPID,
			PID:    ch.Video.PID,
			Mode:   ch.Video.Mode,
		},
		ConditionalAccess: "0",
		ServiceID:         ch.ServiceID,
		NetworkID:         ch.OriginalNetworkID,
		TransportStreamID: ch.TransportStreamID,
	}
	if ch.SymbolRate != nil {
		def.SymbolRate = *ch.SymbolRate
	}

	for _, a := range ch.Audio.Regular {
		def.Audio.Regular = append(def.Audio.Regular, audioPID(a))
	}
	for _, a := range ch.Audio.Dolby {
		def.Audio.Dolby = append(def.Audio.Dolby, audioPID(a))
	}

	return def
}

func audioPID(a channels.AudioPID) AudioPID {
	return AudioPID{
		PID:            a.PID,
		Language:       a.Language,
		SecondLanguage: a.SecondLanguage,
		Type:           a.Type,
	}
}

func bandwidthToken(b frontend.Bandwidth) *Bandwidth {
	var t Bandwidth
	switch b {
	case frontend.Bandwidth1_712MHz:
		t = Bandwidth1712kHz
	case frontend.Bandwidth5MHz:
		t = Bandwidth5MHz
	case frontend.Bandwidth6MHz:
		t = Bandwidth6MHz
	case frontend.Bandwidth7MHz:
		t = Bandwidth7MHz
	case frontend.Bandwidth8MHz:
		t = Bandwidth8MHz
	case frontend.Bandwidth10MHz:
		t = Bandwidth10MHz
	default:
		return nil
	}
	return &t
}

func generationToken(s frontend.DeliverySystem) *Generation {
	var g Generation
	switch s {
	case frontend.SystemDVBT, frontend.SystemDVBS, frontend.SystemDVBCAnnexA:
		g = GenerationFirst
	case frontend.SystemDVBT2, frontend.SystemDVBS2:
		g = GenerationSecond
	default:
		return nil
	}
	return &g
}

func sourceFor(s frontend.DeliverySystem) string {
	switch s {
	case frontend.SystemDVBT, frontend.SystemDVBT2:
		return "T"
	case frontend.SystemDVBCAnnexA, frontend.SystemDVBCAnnexB, frontend.SystemDVBCAnnexC:
		return "C"
	case frontend.SystemATSC, frontend.SystemATSCMH:
		return "A"
	}
	return "T"
}
