//go:build linux

package linuxdvb

import (
	"errors"
	"fmt"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/dvbtk/dvbscan/demux"
)

var (
	dmxStart     = ioc(iocNone, 41, 0)
	dmxStop      = ioc(iocNone, 42, 0)
	dmxSetFilter = ioc(iocWrite, 43, unsafe.Sizeof(dmxSctFilterParams{}))
)

// dmx_sct_filter_params flags.
const (
	dmxCheckCRC = 0x1
	dmxOneshot  = 0x2
)

type dmxFilter struct {
	filter [16]byte
	mask   [16]byte
	mode   [16]byte
}

// dmx_sct_filter_params; the two pad bytes realign timeout after the byte
// arrays, matching the kernel's 60-byte layout.
type dmxSctFilterParams struct {
	pid     uint16
	filter  dmxFilter
	_       [2]byte
	timeout uint32
	flags   uint32
}

// Largest section the demux hands out: a long section is at most 4096 bytes.
const sectionBufferSize = 4096

// Source opens section filters on a /dev/dvb/adapterN/demuxN device. Each
// filter is its own open descriptor, so several can collect sections
// concurrently. It implements demux.Source.
type Source struct {
	path string
}

// NewSource returns a Source reading from the demux device at path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// OpenFilter opens a new descriptor on the demux device.
func (s *Source) OpenFilter() (demux.Filter, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("linuxdvb: open demux: %w", err)
	}
	return &sectionFilter{f: f}, nil
}

// sectionFilter is one open demux descriptor configured for section
// filtering.
type sectionFilter struct {
	f *os.File
}

// Set installs a one-shot, CRC-checked section filter. When the request
// names a table id it is matched against the first payload byte. The
// filter does not collect until Start is called.
func (sf *sectionFilter) Set(req demux.Request, timeout time.Duration) error {
	params := dmxSctFilterParams{
		pid:     req.PID,
		timeout: uint32(timeout / time.Millisecond),
		flags:   dmxCheckCRC | dmxOneshot,
	}
	if req.TableID != demux.TableAny {
		params.filter.filter[0] = byte(req.TableID)
		params.filter.mask[0] = 0xFF
	}

	if err := ioctl(int(sf.f.Fd()), dmxSetFilter, unsafe.Pointer(&params)); err != nil {
		return fmt.Errorf("linuxdvb: DMX_SET_FILTER (%s): %w", req, err)
	}
	return nil
}

// Start begins collecting sections matching the installed filter.
func (sf *sectionFilter) Start() error {
	if err := ioctl(int(sf.f.Fd()), dmxStart, nil); err != nil {
		return fmt.Errorf("linuxdvb: DMX_START: %w", err)
	}
	return nil
}

// Read blocks until a matching section arrives or the filter timeout
// elapses, in which case it reports demux.ErrTimeout.
func (sf *sectionFilter) Read() ([]byte, error) {
	buf := make([]byte, sectionBufferSize)
	n, err := sf.f.Read(buf)
	if err != nil {
		if errors.Is(err, unix.ETIMEDOUT) {
			return nil, demux.ErrTimeout
		}
		return nil, fmt.Errorf("linuxdvb: read section: %w", err)
	}
	return buf[:n], nil
}

// Close stops the filter and releases the descriptor.
func (sf *sectionFilter) Close() error {
	// A filter that was never started makes DMX_STOP a no-op failure;
	// the descriptor still has to be released either way.
	ioctl(int(sf.f.Fd()), dmxStop, nil)
	return sf.f.Close()
}
