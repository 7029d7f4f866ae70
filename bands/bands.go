// Package bands holds frequency band tables for terrestrial broadcast
// scanning: contiguous runs of channel slots with their traditional channel
// numbering. A scan walks a band's channel parameters as its candidate
// frequency sequence.
package bands

import "github.com/dvbtk/dvbscan/frontend"

// ChannelParameters is a single frequency candidate: the centre frequency
// in Hz, the channel bandwidth, and the traditional channel number when the
// candidate comes from a numbered band.
type ChannelParameters struct {
	Frequency uint32
	Bandwidth frontend.Bandwidth
	// Number is the traditional channel number, nil for ad-hoc candidates.
	Number *uint32
	// DisplayPrefix is shown before the channel number (e.g. "E" for the
	// European VHF numbering).
	DisplayPrefix string
}

// BroadcastBand is a contiguous region of equally sized frequency slots
// with consecutive channel numbers.
type BroadcastBand struct {
	FirstFrequency uint32
	FirstChannel   uint32
	LastChannel    uint32
	Bandwidth      frontend.Bandwidth
	DisplayPrefix  string
}

// ChannelCount returns the number of channels in the band.
func (b BroadcastBand) ChannelCount() uint32 {
	return b.LastChannel - b.FirstChannel + 1
}

// Channels expands the band into its channel parameter list, one entry per
// channel number, frequencies stepping by the band's bandwidth.
func (b BroadcastBand) Channels() []ChannelParameters {
	params := make([]ChannelParameters, 0, b.ChannelCount())
	for ch := b.FirstChannel; ch <= b.LastChannel; ch++ {
		number := ch
		params = append(params, ChannelParameters{
			Frequency:     b.FirstFrequency + (ch-b.FirstChannel)*b.Bandwidth.Hz(),
			Bandwidth:     b.Bandwidth,
			Number:        &number,
			DisplayPrefix: b.DisplayPrefix,
		})
	}
	return params
}

// European band plans. Channel numbering and first frequencies follow the
// CEPT band III / IV / V plans.
var (
	// EuropeVHFBandIII covers channels E5-E12 at 7 MHz spacing.
	EuropeVHFBandIII = BroadcastBand{
		FirstFrequency: 177_500_000,
		FirstChannel:   5,
		LastChannel:    12,
		Bandwidth:      frontend.Bandwidth7MHz,
		DisplayPrefix:  "E",
	}

	// EuropeUHFBandIVV covers channels 21-68 at 8 MHz spacing.
	EuropeUHFBandIVV = BroadcastBand{
		FirstFrequency: 474_000_000,
		FirstChannel:   21,
		LastChannel:    68,
		Bandwidth:      frontend.Bandwidth8MHz,
	}
)

// FranceCorrection is the +166 kHz offset applied to UHF centre
// frequencies in France.
const FranceCorrection = 166_000

// FranceUHF is the French UHF plan: band IV/V channels 21-49 with the
// national frequency correction, matching the post-700MHz reallocation.
var FranceUHF = BroadcastBand{
	FirstFrequency: EuropeUHFBandIVV.FirstFrequency + FranceCorrection,
	FirstChannel:   EuropeUHFBandIVV.FirstChannel,
	LastChannel:    49,
	Bandwidth:      EuropeUHFBandIVV.Bandwidth,
}
