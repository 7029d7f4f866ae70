package vdr

import (
	"fmt"
	"strconv"
	"strings"
)

// Parameters is the third column of a channels.conf line: a run of
// single-letter codes, each optionally followed by a numeric value
// (e.g. "B8C23D0G32M16S0T8Y0"). Nil fields are omitted on output.
type Parameters struct {
	Bandwidth        *Bandwidth
	CodeRateHP       *CodeRate
	CodeRateLP       *CodeRate
	GuardInterval    *GuardInterval
	Polarization     *Polarization
	Inversion        *bool
	Modulation       *Modulation
	PilotMode        *PilotMode
	RollOff          *RollOff
	StreamID         *uint8
	T2SystemID       *uint16
	Generation       *Generation
	TransmissionMode *TransmissionMode
	InputMode        *InputMode
	Hierarchy        *Hierarchy
}

// The parameter value types hold the numeric token exactly as written in
// the file, so formatting round-trips byte for byte.

// Bandwidth is the B parameter value, in MHz ("1712" means 1.712 MHz).
type Bandwidth string

const (
	Bandwidth1712kHz Bandwidth = "1712"
	Bandwidth5MHz    Bandwidth = "5"
	Bandwidth6MHz    Bandwidth = "6"
	Bandwidth7MHz    Bandwidth = "7"
	Bandwidth8MHz    Bandwidth = "8"
	Bandwidth10MHz   Bandwidth = "10"
)

// CodeRate is a C (high priority) or D (low priority) parameter value,
// the FEC fraction with the slash removed ("34" is 3/4, "0" no hierarchy).
type CodeRate string

const (
	CodeRateNone CodeRate = "0"
	CodeRate1_2  CodeRate = "12"
	CodeRate2_3  CodeRate = "23"
	CodeRate3_4  CodeRate = "34"
	CodeRate3_5  CodeRate = "35"
	CodeRate4_5  CodeRate = "45"
	CodeRate5_6  CodeRate = "56"
	CodeRate6_7  CodeRate = "67"
	CodeRate7_8  CodeRate = "78"
	CodeRate8_9  CodeRate = "89"
	CodeRate9_10 CodeRate = "910"
)

// GuardInterval is the G parameter value (fraction denominator, or the
// full fraction for 19/128 and 19/256).
type GuardInterval string

const (
	Guard1_4    GuardInterval = "4"
	Guard1_8    GuardInterval = "8"
	Guard1_16   GuardInterval = "16"
	Guard1_32   GuardInterval = "32"
	Guard19_128 GuardInterval = "19128"
	Guard19_256 GuardInterval = "19256"
)

// Polarization is one of the satellite polarization letters.
type Polarization byte

const (
	PolarizationHorizontal    Polarization = 'H'
	PolarizationCircularLeft  Polarization = 'L'
	PolarizationCircularRight Polarization = 'R'
	PolarizationVertical      Polarization = 'V'
)

// Modulation is the M parameter value.
type Modulation string

const (
	ModulationQPSK   Modulation = "2"
	Modulation8PSK   Modulation = "5"
	Modulation16APSK Modulation = "6"
	Modulation32APSK Modulation = "7"
	ModulationVSB8   Modulation = "10"
	ModulationVSB16  Modulation = "11"
	ModulationDQPSK  Modulation = "12"
	ModulationQAM16  Modulation = "16"
	ModulationQAM32  Modulation = "32"
	ModulationQAM64  Modulation = "64"
	ModulationQAM128 Modulation = "128"
	ModulationQAM256 Modulation = "256"
	ModulationAuto   Modulation = "999"
)

// PilotMode is the N parameter value.
type PilotMode string

const (
	PilotOff  PilotMode = "0"
	PilotOn   PilotMode = "1"
	PilotAuto PilotMode = "999"
)

// RollOff is the O parameter value (percent, "0" for none).
type RollOff string

const (
	RollOffNone RollOff = "0"
	RollOff20   RollOff = "20"
	RollOff25   RollOff = "25"
	RollOff35   RollOff = "35"
)

// Generation is the S parameter value: first- (DVB-T/S/C) or
// second-generation (DVB-T2/S2) delivery.
type Generation string

const (
	GenerationFirst  Generation = "0"
	GenerationSecond Generation = "1"
)

// TransmissionMode is the T parameter value, the FFT size in k.
type TransmissionMode string

const (
	Transmission1k  TransmissionMode = "1"
	Transmission2k  TransmissionMode = "2"
	Transmission4k  TransmissionMode = "4"
	Transmission8k  TransmissionMode = "8"
	Transmission16k TransmissionMode = "16"
	Transmission32k TransmissionMode = "32"
)

// InputMode is the X parameter value (SISO/MISO).
type InputMode string

const (
	InputSingle   InputMode = "0"
	InputMultiple InputMode = "1"
)

// Hierarchy is the Y parameter value.
type Hierarchy string

const (
	HierarchyOff        Hierarchy = "0"
	HierarchyTwoStreams Hierarchy = "1"
	Hierarchy2          Hierarchy = "2"
	Hierarchy4          Hierarchy = "4"
)

var (
	validBandwidth = tokenSet(Bandwidth1712kHz, Bandwidth5MHz, Bandwidth6MHz, Bandwidth7MHz, Bandwidth8MHz, Bandwidth10MHz)
	validCodeRate  = tokenSet(CodeRateNone, CodeRate1_2, CodeRate2_3, CodeRate3_4, CodeRate3_5, CodeRate4_5, CodeRate5_6, CodeRate6_7, CodeRate7_8, CodeRate8_9, CodeRate9_10)
	validGuard     = tokenSet(Guard1_4, Guard1_8, Guard1_16, Guard1_32, Guard19_128, Guard19_256)

	validModulation = tokenSet(ModulationQPSK, Modulation8PSK, Modulation16APSK, Modulation32APSK,
		ModulationVSB8, ModulationVSB16, ModulationDQPSK, ModulationQAM16, ModulationQAM32,
		ModulationQAM64, ModulationQAM128, ModulationQAM256, ModulationAuto)

	validPilot        = tokenSet(PilotOff, PilotOn, PilotAuto)
	validRollOff      = tokenSet(RollOffNone, RollOff20, RollOff25, RollOff35)
	validGeneration   = tokenSet(GenerationFirst, GenerationSecond)
	validTransmission = tokenSet(Transmission1k, Transmission2k, Transmission4k, Transmission8k, Transmission16k, Transmission32k)
	validInput        = tokenSet(InputSingle, InputMultiple)
	validHierarchy    = tokenSet(HierarchyOff, HierarchyTwoStreams, Hierarchy2, Hierarchy4)
)

func tokenSet[T ~string](tokens ...T) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[string(t)] = true
	}
	return set
}

func token[T ~string](letter byte, value string, valid map[string]bool) (*T, error) {
	if !valid[value] {
		return nil, fmt.Errorf("vdr: unexpected value %q for parameter %c", value, letter)
	}
	t := T(value)
	return &t, nil
}

// ParseParameters decodes a parameter string. Letters are case-insensitive;
// each letter consumes the digits that follow it.
func ParseParameters(s string) (Parameters, error) {
	var p Parameters

	for _, group := range groupParameters(s) {
		var err error
		switch group.letter {
		case 'B':
			p.Bandwidth, err = token[Bandwidth](group.letter, group.value, validBandwidth)
		case 'C':
			p.CodeRateHP, err = token[CodeRate](group.letter, group.value, validCodeRate)
		case 'D':
			p.CodeRateLP, err = token[CodeRate](group.letter, group.value, validCodeRate)
		case 'G':
			// Accept the shorthand "128" some generators emit for 19/128.
			if group.value == "128" {
				group.value = string(Guard19_128)
			}
			p.GuardInterval, err = token[GuardInterval](group.letter, group.value, validGuard)
		case 'H', 'L', 'R', 'V':
			pol := Polarization(group.letter)
			p.Polarization = &pol
		case 'I':
			switch group.value {
			case "0", "1":
				inv := group.value == "1"
				p.Inversion = &inv
			default:
				err = fmt.Errorf("vdr: unexpected value %q for parameter I", group.value)
			}
		case 'M':
			p.Modulation, err = token[Modulation](group.letter, group.value, validModulation)
		case 'N':
			p.PilotMode, err = token[PilotMode](group.letter, group.value, validPilot)
		case 'O':
			p.RollOff, err = token[RollOff](group.letter, group.value, validRollOff)
		case 'P':
			id, perr := strconv.ParseUint(group.value, 10, 8)
			if perr != nil {
				err = fmt.Errorf("vdr: stream id: %w", perr)
				break
			}
			streamID := uint8(id)
			p.StreamID = &streamID
		case 'Q':
			id, perr := strconv.ParseUint(group.value, 10, 16)
			if perr != nil {
				err = fmt.Errorf("vdr: T2 system id: %w", perr)
				break
			}
			systemID := uint16(id)
			p.T2SystemID = &systemID
		case 'S':
			p.Generation, err = token[Generation](group.letter, group.value, validGeneration)
		case 'T':
			p.TransmissionMode, err = token[TransmissionMode](group.letter, group.value, validTransmission)
		case 'X':
			p.InputMode, err = token[InputMode](group.letter, group.value, validInput)
		case 'Y':
			p.Hierarchy, err = token[Hierarchy](group.letter, group.value, validHierarchy)
		default:
			err = fmt.Errorf("vdr: unknown parameter letter %c", group.letter)
		}
		if err != nil {
			return Parameters{}, err
		}
	}

	return p, nil
}

type parameterGroup struct {
	letter byte
	value  string
}

func groupParameters(s string) []parameterGroup {
	s = strings.ToUpper(s)

	var groups []parameterGroup
	for i := 0; i < len(s); {
		letter := s[i]
		j := i + 1
		for j < len(s) && !(s[j] >= 'A' && s[j] <= 'Z') {
			j++
		}
		groups = append(groups, parameterGroup{letter: letter, value: s[i+1 : j]})
		i = j
	}
	return groups
}

// String formats the parameters in canonical order.
func (p Parameters) String() string {
	var b strings.Builder

	if p.Bandwidth != nil {
		b.WriteByte('B')
		b.WriteString(string(*p.Bandwidth))
	}
	if p.CodeRateHP != nil {
		b.WriteByte('C')
		b.WriteString(string(*p.CodeRateHP))
	}
	if p.CodeRateLP != nil {
		b.WriteByte('D')
		b.WriteString(string(*p.CodeRateLP))
	}
	if p.GuardInterval != nil {
		b.WriteByte('G')
		b.WriteString(string(*p.GuardInterval))
	}
	if p.Polarization != nil {
		b.WriteByte(byte(*p.Polarization))
	}
	if p.Inversion != nil {
		if *p.Inversion {
			b.WriteString("I1")
		} else {
			b.WriteString("I0")
		}
	}
	if p.Modulation != nil {
		b.WriteByte('M')
		b.WriteString(string(*p.Modulation))
	}
	if p.PilotMode != nil {
		b.WriteByte('N')
		b.WriteString(string(*p.PilotMode))
	}
	if p.RollOff != nil {
		b.WriteByte('O')
		b.WriteString(string(*p.RollOff))
	}
	if p.StreamID != nil {
		fmt.Fprintf(&b, "P%d", *p.StreamID)
	}
	if p.T2SystemID != nil {
		fmt.Fprintf(&b, "Q%d", *p.T2SystemID)
	}
	if p.Generation != nil {
		b.WriteByte('S')
		b.WriteString(string(*p.Generation))
	}
	if p.TransmissionMode != nil {
		b.WriteByte('T')
		b.WriteString(string(*p.TransmissionMode))
	}
	if p.InputMode != nil {
		b.WriteByte('X')
		b.WriteString(string(*p.InputMode))
	}
	if p.Hierarchy != nil {
		b.WriteByte('Y')
		b.WriteString(string(*p.Hierarchy))
	}

	return b.String()
}
