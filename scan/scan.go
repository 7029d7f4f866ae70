// Package scan sweeps a sequence of candidate frequencies, tunes the
// frontend to each, retrieves and decodes the PSI/SI tables of every locked
// transponder, and reduces the observations into a transponder set keyed by
// transport stream id, keeping the strongest-signal copy of each.
package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dvbtk/dvbscan/bands"
	"github.com/dvbtk/dvbscan/demux"
	"github.com/dvbtk/dvbscan/frontend"
	"github.com/dvbtk/dvbscan/psi"
)

// Transponder is one scan result: the frequency it was best received on,
// the signal strength of that reception, and the decoded tables for its
// transport stream.
type Transponder struct {
	Frequency         uint32
	System            frontend.DeliverySystem
	Bandwidth         frontend.Bandwidth
	Strength          frontend.SignalStrength
	TransportStreamID uint16

	PMTs []*psi.ProgramMapTable
	NIT  *psi.NetworkInformation
	SDT  *psi.ServiceDescription
}

// Config holds the scan timing parameters. The PAT timeout is deliberately
// longer than the lock timeout: some networks retransmit the PAT
// infrequently, and a locked frontend with no PAT yet is not a dead
// frequency.
type Config struct {
	// LockTimeout bounds the wait for frontend lock after tuning.
	LockTimeout time.Duration
	// LockPollInterval is how often the frontend status is polled.
	LockPollInterval time.Duration
	// PATTimeout bounds the PAT section read. A timeout here means the
	// signal is too weak to use and the frequency is skipped.
	PATTimeout time.Duration
	// TableTimeout bounds the batched NIT/PMT/SDT reads. Zero blocks until
	// the hardware delivers.
	TableTimeout time.Duration
	// SkipTableErrors makes NIT/PMT/SDT acquisition failures skip the
	// frequency instead of aborting the scan. A partially locked tuner can
	// legitimately fail to deliver every table.
	SkipTableErrors bool
}

// DefaultConfig returns the scan timing used when the caller has no
// preference.
func DefaultConfig() Config {
	return Config{
		LockTimeout:      time.Second,
		LockPollInterval: 50 * time.Millisecond,
		PATTimeout:       3 * time.Second,
		SkipTableErrors:  true,
	}
}

// Scanner runs scans over one tuner and one demux. It owns no state between
// Run invocations; one Scanner per physical adapter, run concurrently if
// the machine has several.
type Scanner struct {
	tuner  *frontend.Tuner
	source demux.Source
	system frontend.DeliverySystem
	cfg    Config
	log    *slog.Logger
}

// New builds a Scanner. A nil logger discards scan progress logging.
func New(tuner *frontend.Tuner, source demux.Source, system frontend.DeliverySystem, cfg Config, log *slog.Logger) *Scanner {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = time.Second
	}
	if cfg.LockPollInterval <= 0 {
		cfg.LockPollInterval = 50 * time.Millisecond
	}
	if cfg.PATTimeout <= 0 {
		cfg.PATTimeout = 3 * time.Second
	}
	if log == nil {
		log = slog.New(discardHandler{})
	}
	return &Scanner{
		tuner:  tuner,
		source: source,
		system: system,
		cfg:    cfg,
		log:    log,
	}
}

// Run sweeps the candidates and returns the transponders found, ordered by
// transport stream id. The context is checked between candidates, the
// natural cancellation granularity; an in-flight blocking read is not
// interrupted. progress, when non-nil, is called before each candidate is
// tried.
func (s *Scanner) Run(ctx context.Context, candidates []bands.ChannelParameters, progress func(bands.ChannelParameters)) ([]*Transponder, error) {
	found := make(map[uint16]*Transponder)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scan: cancelled: %w", err)
		}
		if progress != nil {
			progress(candidate)
		}
		if err := s.scanCandidate(candidate, found); err != nil {
			return nil, err
		}
	}

	transponders := make([]*Transponder, 0, len(found))
	for _, tp := range found {
		transponders = append(transponders, tp)
	}
	sort.Slice(transponders, func(i, j int) bool {
		return transponders[i].TransportStreamID < transponders[j].TransportStreamID
	})
	return transponders, nil
}

func (s *Scanner) scanCandidate(candidate bands.ChannelParameters, found map[uint16]*Transponder) error {
	log := s.log.With("frequency", candidate.Frequency)

	if err := s.tuner.Tune(candidate.Frequency, s.system, candidate.Bandwidth); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	locked, err := s.tuner.WaitForLock(s.cfg.LockTimeout, s.cfg.LockPollInterval)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if !locked {
		log.Debug("no lock, skipping")
		return nil
	}

	pat, err := demux.Acquire(s.source, demux.Request{
		PID:     psi.PIDPAT,
		TableID: int(psi.TableIDPAT),
	}, s.cfg.PATTimeout)
	if err != nil {
		if errors.Is(err, demux.ErrTimeout) {
			log.Debug("locked but no PAT, skipping")
			return nil
		}
		return fmt.Errorf("scan: acquire PAT: %w", err)
	}

	tsid := pat.Identifier
	strength, err := s.tuner.SignalStrength()
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	log = log.With("transport_stream_id", tsid, "strength", strength.String())

	if previous, ok := found[tsid]; ok {
		// Keep the stronger copy; ties keep the first-found observation.
		c, err := strength.Compare(previous.Strength)
		if err != nil {
			return fmt.Errorf("scan: transport stream %d seen on %d Hz and %d Hz: %w",
				tsid, previous.Frequency, candidate.Frequency, err)
		}
		if c <= 0 {
			log.Debug("already found with stronger signal, skipping")
			return nil
		}
		log.Info("found stronger copy of transport stream")
	}

	tp, err := s.acquireTables(pat, candidate, strength)
	if err != nil {
		if s.cfg.SkipTableErrors {
			log.Warn("table acquisition failed, skipping frequency", "error", err)
			return nil
		}
		return fmt.Errorf("scan: %w", err)
	}

	log.Info("transponder found",
		"programs", len(tp.PMTs),
		"services", len(tp.SDT.Services))
	found[tsid] = tp
	return nil
}

// acquireTables turns the PAT into one acquisition request per referenced
// table, reads them as a single batch, and decodes the results.
func (s *Scanner) acquireTables(pat *psi.Section, candidate bands.ChannelParameters, strength frontend.SignalStrength) (*Transponder, error) {
	entries, err := psi.ParsePAT(pat)
	if err != nil {
		return nil, fmt.Errorf("decode PAT: %w", err)
	}

	var reqs []demux.Request
	var pmtCount int
	for _, entry := range entries {
		if entry.IsNetwork() {
			reqs = append(reqs, demux.Request{PID: entry.PID, TableID: int(psi.TableIDNITActual)})
		} else {
			reqs = append(reqs, demux.Request{PID: entry.PID, TableID: int(psi.TableIDPMT)})
			pmtCount++
		}
	}
	reqs = append(reqs, demux.Request{PID: psi.PIDSDT, TableID: int(psi.TableIDSDTActual)})

	sections, err := demux.AcquireMany(s.source, reqs, s.cfg.TableTimeout)
	if err != nil {
		return nil, err
	}

	tp := &Transponder{
		Frequency:         candidate.Frequency,
		System:            s.system,
		Bandwidth:         candidate.Bandwidth,
		Strength:          strength,
		TransportStreamID: pat.Identifier,
		PMTs:              make([]*psi.ProgramMapTable, 0, pmtCount),
	}

	for i, section := range sections {
		switch reqs[i].TableID {
		case int(psi.TableIDNITActual):
			nit, err := psi.ParseNIT(section)
			if err != nil {
				return nil, fmt.Errorf("decode NIT: %w", err)
			}
			tp.NIT = nit
		case int(psi.TableIDPMT):
			pmt, err := psi.ParsePMT(section)
			if err != nil {
				return nil, fmt.Errorf("decode PMT on pid 0x%04X: %w", reqs[i].PID, err)
			}
			tp.PMTs = append(tp.PMTs, pmt)
		case int(psi.TableIDSDTActual):
			sdt, err := psi.ParseSDT(section)
			if err != nil {
				return nil, fmt.Errorf("decode SDT: %w", err)
			}
			tp.SDT = sdt
		}
	}

	return tp, nil
}

// discardHandler drops all records; used when New is given a nil logger.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
