//go:build linux

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"sort"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dvbtk/dvbscan/bands"
	"github.com/dvbtk/dvbscan/channels"
	"github.com/dvbtk/dvbscan/frontend"
	"github.com/dvbtk/dvbscan/internal/linuxdvb"
	"github.com/dvbtk/dvbscan/scan"
	"github.com/dvbtk/dvbscan/vdr"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to YAML configuration")
	output := flag.String("o", "", "channels.conf output path, overrides the config (\"-\" for stdout)")
	flag.Parse()

	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if *output != "" {
		cfg.Output = *output
	}

	if err := run(cfg); err != nil {
		slog.Error("scan failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg Config) error {
	band, err := cfg.band()
	if err != nil {
		return err
	}
	system, err := cfg.deliverySystem()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, stopping scan", "signal", sig)
		cancel()
	}()

	candidates := band.Channels()
	shares := splitCandidates(candidates, len(cfg.Adapters))

	slog.Info("dvbscan starting",
		"version", version,
		"band", cfg.Band,
		"system", system.String(),
		"frequencies", len(candidates),
		"adapters", len(cfg.Adapters),
	)

	// One scanner per adapter, each working its share of the band.
	results := make([][]*scan.Transponder, len(cfg.Adapters))
	g, ctx := errgroup.WithContext(ctx)
	for i, adapter := range cfg.Adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			found, err := scanAdapter(ctx, adapter, system, cfg, shares[i])
			if err != nil {
				return fmt.Errorf("adapter %s: %w", adapter.Frontend, err)
			}
			results[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	transponders, err := mergeTransponders(results)
	if err != nil {
		return err
	}
	slog.Info("scan complete", "transponders", len(transponders))

	list := channels.FromTransponders(transponders)
	channels.SortByLCN(list)

	defs := make([]*vdr.ChannelDefinition, 0, len(list))
	for _, ch := range list {
		defs = append(defs, vdr.FromChannel(ch))
	}
	slog.Info("writing channel list", "channels", len(defs), "output", cfg.Output)
	return writeOutput(cfg.Output, vdr.FormatList(defs))
}

func scanAdapter(ctx context.Context, adapter AdapterConfig, system frontend.DeliverySystem, cfg Config, candidates []bands.ChannelParameters) ([]*scan.Transponder, error) {
	fe, err := linuxdvb.OpenFrontend(adapter.Frontend)
	if err != nil {
		return nil, err
	}
	defer fe.Close()

	supported, err := fe.DeliverySystems()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(supported, system) {
		return nil, fmt.Errorf("frontend %q does not support %s", fe.Info().Name, system)
	}
	slog.Info("adapter ready",
		"frontend", adapter.Frontend,
		"name", fe.Info().Name,
		"frequencies", len(candidates),
	)

	log := slog.Default().With("adapter", adapter.Frontend)
	scanner := scan.New(frontend.NewTuner(fe), linuxdvb.NewSource(adapter.Demux), system, scan.Config{
		LockTimeout:     cfg.LockTimeout,
		PATTimeout:      cfg.PATTimeout,
		TableTimeout:    cfg.TableTimeout,
		SkipTableErrors: !cfg.AbortOnTableErr,
	}, log)

	return scanner.Run(ctx, candidates, func(c bands.ChannelParameters) {
		log.Info("scanning", "frequency", c.Frequency, "channel", channelLabel(c))
	})
}

func channelLabel(c bands.ChannelParameters) string {
	if c.Number == nil {
		return ""
	}
	return fmt.Sprintf("%s%d", c.DisplayPrefix, *c.Number)
}

// splitCandidates deals the frequency list round-robin across n adapters.
func splitCandidates(candidates []bands.ChannelParameters, n int) [][]bands.ChannelParameters {
	shares := make([][]bands.ChannelParameters, n)
	for i, c := range candidates {
		shares[i%n] = append(shares[i%n], c)
	}
	return shares
}

// mergeTransponders combines the per-adapter results, keeping the stronger
// reception when two adapters found the same transport stream.
func mergeTransponders(results [][]*scan.Transponder) ([]*scan.Transponder, error) {
	found := make(map[uint16]*scan.Transponder)
	for _, batch := range results {
		for _, t := range batch {
			prev, ok := found[t.TransportStreamID]
			if !ok {
				found[t.TransportStreamID] = t
				continue
			}
			c, err := t.Strength.Compare(prev.Strength)
			if err != nil {
				return nil, err
			}
			if c > 0 {
				found[t.TransportStreamID] = t
			}
		}
	}

	merged := make([]*scan.Transponder, 0, len(found))
	for _, t := range found {
		merged = append(merged, t)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].TransportStreamID < merged[j].TransportStreamID
	})
	return merged, nil
}

func writeOutput(path, doc string) error {
	if path == "" || path == "-" {
		_, err := io.WriteString(os.Stdout, doc)
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("write channel list: %w", err)
	}
	return nil
}
