// Package scan runs track seeds through the forward double layers of a
// geometry and collects compatibility, crack and hit estimation results.
package scan

import (
	"context"
	"runtime"
	"sync"

	"github.com/banshee-data/detlayers/internal/estimator"
	"github.com/banshee-data/detlayers/internal/geometry"
	"github.com/banshee-data/detlayers/internal/hits"
	"github.com/banshee-data/detlayers/internal/monitoring"
	"github.com/banshee-data/detlayers/internal/propagation"
	"github.com/banshee-data/detlayers/internal/trajectory"
)

const subsystem = "scan"

// Options control the optional parts of a scan.
type Options struct {
	CheckCracks  bool
	EstimateHits bool
	// Workers bounds the number of seeds scanned concurrently. Zero uses
	// GOMAXPROCS.
	Workers      int
}

// Scanner holds the geometry and the propagation and estimation tools
// shared by every seed. It is safe for concurrent use.
type Scanner struct {
	layers []geometry.NamedLayer
	prop   propagation.Propagator
	est    estimator.Estimator
	opts   Options
}

func New(layers []geometry.NamedLayer, prop propagation.Propagator, est estimator.Estimator, opts Options) *Scanner {
	return &Scanner{layers: layers, prop: prop, est: est, opts: opts}
}

// SeedResult is the outcome of one seed against every layer, in geometry
// order.
type SeedResult struct {
	Seed   Seed
	Layers []LayerResult
}

// LayerResult is the outcome of one seed against one double layer.
type LayerResult struct {
	Layer      string
	InsideOut  bool
	Compatible bool
	// Propagated is the state on the nearer sub-layer; it may be invalid.
	Propagated trajectory.State
	Crack      bool
	Groups     []GroupResult
	Hits       []HitResult
}

// GroupResult lists the compatible modules of one sub-layer.
type GroupResult struct {
	SubLayer int
	DetIDs   []uint32
}

// HitResult is the estimator verdict for a hit on a compatible module.
type HitResult struct {
	DetID       uint32
	Kind        hits.Kind
	Compatible  bool
	Chi2        float64
	Probability float64
}

// CandidateCount returns the number of compatible modules over all groups.
func (r LayerResult) CandidateCount() int {
	var n int
	for _, g := range r.Groups {
		n += len(g.DetIDs)
	}
	return n
}

// Run scans every seed and returns results in seed order. It stops early
// and returns the context error when ctx is cancelled.
func (s *Scanner) Run(ctx context.Context, seeds []Seed) ([]SeedResult, error) {
	workers := s.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]SeedResult, len(seeds))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range seeds {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			// Each worker gets its own estimator.
			results[i] = s.scanSeed(seeds[i], s.est.Clone())
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	monitoring.Tracef(subsystem, "scanned %d seeds against %d layers", len(seeds), len(s.layers))
	return results, nil
}

func (s *Scanner) scanSeed(seed Seed, est estimator.Estimator) SeedResult {
	res := SeedResult{Seed: seed, Layers: make([]LayerResult, 0, len(s.layers))}
	for _, nl := range s.layers {
		res.Layers = append(res.Layers, s.scanLayer(seed, nl, est))
	}
	return res
}

func (s *Scanner) scanLayer(seed Seed, nl geometry.NamedLayer, est estimator.Estimator) LayerResult {
	l := nl.Layer
	lr := LayerResult{Layer: nl.Name, InsideOut: l.IsInsideOut(seed.State)}

	ok, st := l.Compatible(seed.State, s.prop, est)
	lr.Compatible = ok
	lr.Propagated = st
	if !ok {
		monitoring.Tracef(subsystem, "seed %s: layer %s not compatible", seed.Name, nl.Name)
		return lr
	}
	if s.opts.CheckCracks {
		lr.Crack = l.IsCrack(st.GlobalPosition())
	}

	groups := l.GroupedCompatibleDets(seed.State, s.prop, est)
	onDet := make(map[uint32]trajectory.State)
	for _, g := range groups {
		gr := GroupResult{SubLayer: g.SubLayer, DetIDs: make([]uint32, 0, g.Len())}
		for _, d := range g.Elements {
			gr.DetIDs = append(gr.DetIDs, d.Det.ID())
			onDet[d.Det.ID()] = d.State
		}
		lr.Groups = append(lr.Groups, gr)
	}

	if s.opts.EstimateHits {
		for _, h := range seed.Hits {
			dst, found := onDet[h.DetID]
			if !found {
				continue
			}
			compatible, chi2 := est.Estimate(dst, h)
			hr := HitResult{DetID: h.DetID, Kind: h.Kind, Compatible: compatible, Chi2: chi2}
			if compatible {
				hr.Probability = estimator.Probability(chi2, h.Dimension())
			}
			lr.Hits = append(lr.Hits, hr)
		}
	}
	monitoring.Tracef(subsystem, "seed %s: layer %s %d candidates %d hits", seed.Name, nl.Name, lr.CandidateCount(), len(lr.Hits))
	return lr
}
