// Package channels derives logical TV channels from scanned transponders by
// correlating SDT service entries, NIT service-list and logical-channel
// descriptors, and PMT elementary streams.
package channels

import (
	"sort"

	"github.com/dvbtk/dvbscan/frontend"
	"github.com/dvbtk/dvbscan/psi"
	"github.com/dvbtk/dvbscan/scan"
)

// VideoPID is a channel's resolved video assignment. PID is zero when the
// video stream rides the PCR PID itself; Mode carries the stream type so
// consumers can tell MPEG-2 from H.264/H.265 video.
type VideoPID struct {
	PCRPID uint16
	PID    uint16
	Mode   uint16
}

// AudioPID is one resolved audio stream with its ISO 639 language code.
// For regular audio Type is the MPEG stream type; for Dolby audio it is the
// AC-3 or Enhanced-AC-3 descriptor tag that identified the stream.
type AudioPID struct {
	PID            uint16
	Language       string
	SecondLanguage string
	Type           uint16
}

// AudioPIDList splits a channel's audio streams into regular MPEG audio and
// enhanced (Dolby) audio carried on private stream types.
type AudioPIDList struct {
	Regular []AudioPID
	Dolby   []AudioPID
}

// ChannelInformation is one logical channel derived from a transponder.
// It is immutable once created; ordering is imposed by SortByLCN.
type ChannelInformation struct {
	Frequency uint32
	Bandwidth frontend.Bandwidth
	System    frontend.DeliverySystem
	// SymbolRate is nil for terrestrial channels.
	SymbolRate *uint32

	Name string
	// LogicalChannel is the broadcaster-assigned channel number, nil when
	// the NIT carries none for this service.
	LogicalChannel *uint16

	ServiceID         uint16
	OriginalNetworkID uint16
	TransportStreamID uint16

	Video VideoPID
	Audio AudioPIDList
}

// FromTransponders projects every transponder of a scan result into a flat
// channel list.
func FromTransponders(transponders []*scan.Transponder) []ChannelInformation {
	var channels []ChannelInformation
	for _, tp := range transponders {
		channels = append(channels, FromTransponder(tp)...)
	}
	return channels
}

// FromTransponder derives the channels of one transponder. A service is
// skipped when it has no service descriptor (nothing to name it by), no NIT
// element references it, no PMT matches its service id, or its PMT carries
// no video stream.
func FromTransponder(tp *scan.Transponder) []ChannelInformation {
	if tp.SDT == nil {
		return nil
	}

	var channels []ChannelInformation
	for _, service := range tp.SDT.Services {
		desc, ok := psi.FindDescriptor[*psi.ServiceDescriptor](service.Descriptors)
		if !ok {
			continue
		}

		element := findNITElement(tp.NIT, service.ServiceID)
		if element == nil {
			// Weird that the service is not in the NIT, skip it.
			continue
		}

		pmt := findPMT(tp.PMTs, service.ServiceID)
		if pmt == nil {
			continue
		}

		video, ok := videoPID(pmt)
		if !ok {
			continue
		}

		channels = append(channels, ChannelInformation{
			Frequency:         tp.Frequency,
			Bandwidth:         tp.Bandwidth,
			System:            tp.System,
			Name:              desc.Name,
			LogicalChannel:    logicalChannel(element, service.ServiceID),
			ServiceID:         service.ServiceID,
			OriginalNetworkID: tp.SDT.OriginalNetworkID,
			TransportStreamID: element.TransportStreamID,
			Video:             video,
			Audio:             audioPIDs(pmt),
		})
	}
	return channels
}

// SortByLCN orders channels ascending by logical channel number; channels
// without one sort after all numbered channels. The sort is stable so scan
// order breaks ties.
func SortByLCN(channels []ChannelInformation) {
	sort.SliceStable(channels, func(i, j int) bool {
		a, b := channels[i].LogicalChannel, channels[j].LogicalChannel
		switch {
		case a != nil && b != nil:
			return *a < *b
		case a != nil:
			return true
		default:
			return false
		}
	})
}

// findNITElement returns the NIT element whose service list references the
// service, or nil.
func findNITElement(nit *psi.NetworkInformation, serviceID uint16) *psi.NITElement {
	if nit == nil {
		return nil
	}
	for i := range nit.Elements {
		element := &nit.Elements[i]
		list, ok := psi.FindDescriptor[*psi.ServiceListDescriptor](element.TransportDescriptors)
		if !ok {
			continue
		}
		for _, entry := range list.Services {
			if entry.ServiceID == serviceID {
				return element
			}
		}
	}
	return nil
}

func findPMT(pmts []*psi.ProgramMapTable, serviceID uint16) *psi.ProgramMapTable {
	for _, pmt := range pmts {
		if pmt.ProgramNumber == serviceID {
			return pmt
		}
	}
	return nil
}

func logicalChannel(element *psi.NITElement, serviceID uint16) *uint16 {
	for _, d := range element.TransportDescriptors {
		lcd, ok := d.(*psi.LogicalChannelDescriptor)
		if !ok {
			continue
		}
		for _, entry := range lcd.Entries {
			if entry.ServiceID == serviceID {
				number := entry.ChannelNumber
				return &number
			}
		}
	}
	return nil
}

// videoPID finds the first video elementary stream and pairs it with the
// PCR PID. PID stays zero when the video stream and the PCR share a PID.
func videoPID(pmt *psi.ProgramMapTable) (VideoPID, bool) {
	for _, es := range pmt.Streams {
		if !es.Type.IsVideo() {
			continue
		}
		v := VideoPID{
			PCRPID: pmt.PCRPID,
			Mode:   uint16(es.Type),
		}
		if es.PID != pmt.PCRPID {
			v.PID = es.PID
		}
		return v, true
	}
	return VideoPID{}, false
}

// audioPIDs classifies the PMT's elementary streams. Regular MPEG audio
// types are taken as-is; private stream types count as audio only when an
// AC-3 or Enhanced-AC-3 descriptor marks them, with the descriptor tag
// recorded as the audio type (matching what reference scanning tools emit).
func audioPIDs(pmt *psi.ProgramMapTable) AudioPIDList {
	var list AudioPIDList

	for _, es := range pmt.Streams {
		var language string
		if lang, ok := psi.FindDescriptor[*psi.ISO639LanguageDescriptor](es.Descriptors); ok {
			language = lang.Code()
		}

		switch {
		case es.Type.IsRegularAudio():
			list.Regular = append(list.Regular, AudioPID{
				PID:      es.PID,
				Language: language,
				Type:     uint16(es.Type),
			})

		case es.Type.IsPrivate():
			tag, ok := dolbyTag(es.Descriptors)
			if !ok {
				// Private data without an AC-3 descriptor is not audio.
				continue
			}
			list.Dolby = append(list.Dolby, AudioPID{
				PID:      es.PID,
				Language: language,
				Type:     uint16(tag),
			})
		}
	}
	return list
}

// dolbyTag scans a private stream's descriptors for Dolby signalling. An
// AC-3 descriptor settles the audio type immediately; an Enhanced-AC-3
// descriptor is recorded but the scan continues, so a later AC-3 descriptor
// still wins. The asymmetry matches the reference scanning tools, whose
// audio-type tagging is acknowledged to be incoherent between the two.
func dolbyTag(descriptors []psi.Descriptor) (uint8, bool) {
	var tag uint8
	var found bool
	for _, d := range descriptors {
		switch d.(type) {
		case *psi.AC3Descriptor:
			return d.Tag(), true
		case *psi.EnhancedAC3Descriptor:
			tag, found = d.Tag(), true
		}
	}
	return tag, found
}
