package vdr

import (
	"fmt"
	"strconv"
	"strings"
)

// VideoPID is the VPID column: the video PID, the PCR PID when it differs
// ("VPID+PCR"), and the video mode ("=MODE") when known. A zero PID means
// the video rides the PCR PID itself.
type VideoPID struct {
	PCRPID uint16
	PID    uint16
	Mode   uint16
}

// ParseVideoPID decodes the four VPID column shapes: "164", "164=27",
// "164+17" and "164+17=27".
func ParseVideoPID(s string) (VideoPID, error) {
	var v VideoPID

	if s, mode, found := strings.Cut(s, "="); found {
		m, err := parsePID(mode, "video mode")
		if err != nil {
			return VideoPID{}, err
		}
		v.Mode = m
		return parseVideoPIDs(s, v)
	}
	return parseVideoPIDs(s, v)
}

func parseVideoPIDs(s string, v VideoPID) (VideoPID, error) {
	video, pcr, found := strings.Cut(s, "+")
	if !found {
		pid, err := parsePID(s, "video pid")
		if err != nil {
			return VideoPID{}, err
		}
		v.PCRPID = pid
		return v, nil
	}

	vpid, err := parsePID(video, "video pid")
	if err != nil {
		return VideoPID{}, err
	}
	ppid, err := parsePID(pcr, "pcr pid")
	if err != nil {
		return VideoPID{}, err
	}
	v.PID = vpid
	v.PCRPID = ppid
	return v, nil
}

// String formats the VPID column, shortest form first: the mode is omitted
// when zero, the "+PCR" suffix when the PIDs coincide.
func (v VideoPID) String() string {
	var b strings.Builder
	if v.PID != 0 {
		fmt.Fprintf(&b, "%d+%d", v.PID, v.PCRPID)
	} else {
		fmt.Fprintf(&b, "%d", v.PCRPID)
	}
	if v.Mode != 0 {
		fmt.Fprintf(&b, "=%d", v.Mode)
	}
	return b.String()
}

// AudioPID is one entry of the APID column: "PID", "PID=lang",
// "PID=lang+lang2", optionally suffixed with "@TYPE".
type AudioPID struct {
	PID            uint16
	Language       string
	SecondLanguage string
	// Type is the audio type, 0 when unspecified (the column omits "@0").
	Type uint16
}

// AudioPIDList is the APID column: regular audio PIDs, then a
// semicolon-separated list of Dolby PIDs. An empty regular list is written
// as "0".
type AudioPIDList struct {
	Regular []AudioPID
	Dolby   []AudioPID
}

// ParseAudioPID decodes one audio PID entry.
func ParseAudioPID(s string) (AudioPID, error) {
	var a AudioPID

	rest, audioType, found := strings.Cut(s, "@")
	if found {
		t, err := parsePID(audioType, "audio type")
		if err != nil {
			return AudioPID{}, err
		}
		a.Type = t
	}

	pidField, languages, found := strings.Cut(rest, "=")
	pid, err := parsePID(pidField, "audio pid")
	if err != nil {
		return AudioPID{}, err
	}
	a.PID = pid

	if found {
		a.Language, a.SecondLanguage, _ = strings.Cut(languages, "+")
	}
	return a, nil
}

// String formats one audio PID entry.
func (a AudioPID) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d", a.PID)
	if a.Language != "" {
		b.WriteByte('=')
		b.WriteString(a.Language)
		if a.SecondLanguage != "" {
			b.WriteByte('+')
			b.WriteString(a.SecondLanguage)
		}
	}
	if a.Type != 0 {
		fmt.Fprintf(&b, "@%d", a.Type)
	}
	return b.String()
}

// ParseAudioPIDList decodes the APID column.
func ParseAudioPIDList(s string) (AudioPIDList, error) {
	var list AudioPIDList

	regular, dolby, found := strings.Cut(s, ";")
	if regular != "0" {
		pids, err := parseAudioPIDs(regular)
		if err != nil {
			return AudioPIDList{}, err
		}
		list.Regular = pids
	}
	if found {
		pids, err := parseAudioPIDs(dolby)
		if err != nil {
			return AudioPIDList{}, err
		}
		list.Dolby = pids
	}
	return list, nil
}

func parseAudioPIDs(s string) ([]AudioPID, error) {
	var pids []AudioPID
	for _, entry := range strings.Split(s, ",") {
		pid, err := ParseAudioPID(entry)
		if err != nil {
			return nil, err
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

// String formats the APID column.
func (l AudioPIDList) String() string {
	var b strings.Builder

	if len(l.Regular) == 0 {
		b.WriteByte('0')
	} else {
		writeAudioPIDs(&b, l.Regular)
	}
	if len(l.Dolby) > 0 {
		b.WriteByte(';')
		writeAudioPIDs(&b, l.Dolby)
	}
	return b.String()
}

func writeAudioPIDs(b *strings.Builder, pids []AudioPID) {
	for i, pid := range pids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(pid.String())
	}
}

// SubtitlePID is one DVB subtitle entry of the TPID column.
type SubtitlePID struct {
	PID      uint16
	Language string
}

// ParseSubtitlePID decodes "PID" or "PID=lang".
func ParseSubtitlePID(s string) (SubtitlePID, error) {
	pidField, language, _ := strings.Cut(s, "=")
	pid, err := parsePID(pidField, "subtitle pid")
	if err != nil {
		return SubtitlePID{}, err
	}
	return SubtitlePID{PID: pid, Language: language}, nil
}

func (s SubtitlePID) String() string {
	if s.Language != "" {
		return fmt.Sprintf("%d=%s", s.PID, s.Language)
	}
	return strconv.Itoa(int(s.PID))
}

// TeletextPIDList is the TPID column: teletext PIDs, optionally followed by
// a semicolon and DVB subtitle PIDs. Empty lists are written as "0".
type TeletextPIDList struct {
	Teletext  []uint16
	Subtitles []SubtitlePID
}

// ParseTeletextPIDList decodes the TPID column.
func ParseTeletextPIDList(s string) (TeletextPIDList, error) {
	var list TeletextPIDList
	if s == "0" {
		return list, nil
	}

	teletext, subtitles, found := strings.Cut(s, ";")
	if teletext != "0" {
		for _, entry := range strings.Split(teletext, ",") {
			pid, err := parsePID(entry, "teletext pid")
			if err != nil {
				return TeletextPIDList{}, err
			}
			list.Teletext = append(list.Teletext, pid)
		}
	}
	if found {
		for _, entry := range strings.Split(subtitles, ",") {
			pid, err := ParseSubtitlePID(entry)
			if err != nil {
				return TeletextPIDList{}, err
			}
			list.Subtitles = append(list.Subtitles, pid)
		}
	}
	return list, nil
}

// String formats the TPID column.
func (l TeletextPIDList) String() string {
	if len(l.Teletext) == 0 && len(l.Subtitles) == 0 {
		return "0"
	}

	var b strings.Builder
	if len(l.Teletext) == 0 {
		b.WriteByte('0')
	} else {
		for i, pid := range l.Teletext {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(int(pid)))
		}
	}
	if len(l.Subtitles) > 0 {
		b.WriteByte(';')
		for i, pid := range l.Subtitles {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(pid.String())
		}
	}
	return b.String()
}

func parseUint32(s, what string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("vdr: %s %q: %w", what, s, err)
	}
	return uint32(v), nil
}

func parsePID(s, what string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("vdr: %s %q: %w", what, s, err)
	}
	return uint16(v), nil
}
