package psi

import "fmt"

// MPEG-2 CRC32 with polynomial 0x04C11DB7, as used for the CRC_32 field of
// PSI sections.
var crcTable [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ 0x04C11DB7
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

func crc32MPEG2(data []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, b := range data {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

// VerifyCRC32 checks that the last 4 bytes of a raw section buffer are the
// MPEG-2 CRC32 of the preceding bytes. The kernel demux already performs
// this check when a filter is installed with the CRC flag set, so callers
// reading from the demux device normally skip it; it is exposed for
// sections obtained from other sources.
func VerifyCRC32(data []byte) error {
	if len(data) < crcLen {
		return fmt.Errorf("psi: buffer too short for CRC verification")
	}
	computed := crc32MPEG2(data[:len(data)-crcLen])
	stored := uint32(data[len(data)-4])<<24 |
		uint32(data[len(data)-3])<<16 |
		uint32(data[len(data)-2])<<8 |
		uint32(data[len(data)-1])
	if computed != stored {
		return fmt.Errorf("psi: CRC32 mismatch: computed 0x%08X, stored 0x%08X", computed, stored)
	}
	return nil
}
