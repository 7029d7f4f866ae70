// Package demux acquires PSI/SI sections from a demultiplexer device.
// A Source hands out one hardware section filter per request; Acquire and
// AcquireMany wrap filter setup, the blocking read, and section decode.
// The Linux implementation of Source lives in internal/linuxdvb.
package demux

import (
	"errors"
	"fmt"
	"time"

	"github.com/dvbtk/dvbscan/psi"
)

// ErrTimeout is returned when a filter produced no section within its
// timeout. Callers treat it as "nothing receivable here", distinct from
// device failures which propagate as-is.
var ErrTimeout = errors.New("demux: section read timed out")

// TableAny requests a filter that matches any table id on the PID.
const TableAny = -1

// Request names one section to acquire: the PID to filter and the expected
// table id (the first payload byte), or TableAny for no table filtering.
type Request struct {
	PID     uint16
	TableID int
}

func (r Request) String() string {
	if r.TableID == TableAny {
		return fmt.Sprintf("pid 0x%04X", r.PID)
	}
	return fmt.Sprintf("pid 0x%04X table 0x%02X", r.PID, r.TableID)
}

// Filter is one hardware section filter. Set installs the match, Start
// begins capture, and Read blocks until a matching section is buffered or
// the filter's timeout elapses (ErrTimeout). The filter buffers one
// matching section as soon as it arrives on the wire, independent of when
// Read is called.
type Filter interface {
	Set(req Request, timeout time.Duration) error
	Start() error
	Read() ([]byte, error)
	Close() error
}

// Source hands out section filters. Each open filter is an independent
// hardware resource; the caller must Close it.
type Source interface {
	OpenFilter() (Filter, error)
}

// Acquire reads one section matching req. A zero timeout means the device
// default (block until a section arrives).
func Acquire(src Source, req Request, timeout time.Duration) (*psi.Section, error) {
	f, err := src.OpenFilter()
	if err != nil {
		return nil, fmt.Errorf("demux: open filter for %s: %w", req, err)
	}
	defer f.Close()

	if err := setAndStart(f, req, timeout); err != nil {
		return nil, err
	}
	return readSection(f, req)
}

// AcquireMany acquires one section per request, in request order. All
// filters are installed and started before the first read: sections repeat
// on the wire on their own schedule, and a filter that is not yet running
// misses the repetition that arrives while an earlier read blocks. Filters
// are closed on every path.
func AcquireMany(src Source, reqs []Request, timeout time.Duration) ([]*psi.Section, error) {
	filters := make([]Filter, 0, len(reqs))
	defer func() {
		for _, f := range filters {
			f.Close()
		}
	}()

	for _, req := range reqs {
		f, err := src.OpenFilter()
		if err != nil {
			return nil, fmt.Errorf("demux: open filter for %s: %w", req, err)
		}
		filters = append(filters, f)
		if err := setAndStart(f, req, timeout); err != nil {
			return nil, err
		}
	}

	sections := make([]*psi.Section, 0, len(reqs))
	for i, f := range filters {
		s, err := readSection(f, reqs[i])
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

func setAndStart(f Filter, req Request, timeout time.Duration) error {
	if err := f.Set(req, timeout); err != nil {
		return fmt.Errorf("demux: set filter for %s: %w", req, err)
	}
	if err := f.Start(); err != nil {
		return fmt.Errorf("demux: start filter for %s: %w", req, err)
	}
	return nil
}

func readSection(f Filter, req Request) (*psi.Section, error) {
	buf, err := f.Read()
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			return nil, fmt.Errorf("%w (%s)", ErrTimeout, req)
		}
		return nil, fmt.Errorf("demux: read %s: %w", req, err)
	}
	s, err := psi.ParseSection(buf)
	if err != nil {
		return nil, fmt.Errorf("demux: %s: %w", req, err)
	}
	return s, nil
}
