package psi

import (
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

// Character coding tables selected by a first byte in the 0x01..0x0B range,
// per ETSI EN 300 468 annex A table A.3. Values without a charmap
// equivalent (0x07 Thai, 0x08 reserved, 0x0C-0x0F) fall through to the
// best-effort path.
var textTables = map[byte]*charmap.Charmap{
	0x01: charmap.ISO8859_5,
	0x02: charmap.ISO8859_6,
	0x03: charmap.ISO8859_7,
	0x04: charmap.ISO8859_8,
	0x05: charmap.Windows1254, // closest available to ISO 8859-9
	0x06: charmap.ISO8859_10,
	0x09: charmap.ISO8859_13,
	0x0A: charmap.ISO8859_14,
	0x0B: charmap.ISO8859_15,
}

// DecodeText converts a DVB text field (EN 300 468 annex A) to a displayable
// string. Fields with a single-byte ISO 8859 table prefix are decoded with
// the corresponding character map. Everything else — including the default
// ISO 6937 table, which has no direct equivalent in the encoding standard —
// is decoded best-effort: interpreted as UTF-8 with invalid sequences
// replaced, then trimmed of control characters. This is a deliberate
// simplification; full annex A decoding (multi-byte tables, broadcaster
// control codes) is not implemented.
func DecodeText(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	if raw[0] < 0x20 {
		if cm, ok := textTables[raw[0]]; ok {
			decoded, err := cm.NewDecoder().Bytes(raw[1:])
			if err == nil {
				return trimControl(string(decoded))
			}
		}
		// Unsupported table prefix: drop the prefix byte and fall through.
		raw = raw[1:]
	}

	return trimControl(strings.ToValidUTF8(string(raw), "�"))
}

func trimControl(s string) string {
	return strings.TrimFunc(s, unicode.IsControl)
}
