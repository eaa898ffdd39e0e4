// Package scandb persists scan runs in SQLite.
package scandb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/banshee-data/detlayers/internal/monitoring"
	"github.com/banshee-data/detlayers/internal/scan"
	"github.com/banshee-data/detlayers/internal/timeutil"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const subsystem = "scandb"

type Store struct {
	*sql.DB
	clock timeutil.Clock
}

// Open opens or creates the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan database: %w", err)
	}
	// One connection keeps the pragmas in force for every statement.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set pragmas: %w", err)
	}
	s := &Store{DB: db, clock: timeutil.RealClock{}}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// SetClock replaces the clock used to stamp recorded runs.
func (s *Store) SetClock(c timeutil.Clock) {
	s.clock = c
}

// RunMeta describes the inputs of a scan run.
type RunMeta struct {
	GeometryPath string
	SeedsPath    string
	MaxChi2      float64
	NSigma       float64
	Direction    string
}

// RecordRun stores a run and all its results in one transaction and
// returns the new run ID.
func (s *Store) RecordRun(ctx context.Context, meta RunMeta, results []scan.SeedResult) (string, error) {
	runID := uuid.NewString()
	var layerCount int
	if len(results) > 0 {
		layerCount = len(results[0].Layers)
	}

	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO scan_runs (run_id, created_unix_ns, geometry_path, seeds_path, max_chi2, n_sigma, direction, seed_count, layer_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, s.clock.Now().UnixNano(), meta.GeometryPath, meta.SeedsPath,
		meta.MaxChi2, meta.NSigma, meta.Direction, len(results), layerCount,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	layerStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO layer_results (run_id, seed_index, seed_name, layer_index, layer_name, inside_out, compatible, crack, x, y, z, candidate_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare layer insert: %w", err)
	}
	defer layerStmt.Close()

	candStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO candidates (run_id, seed_index, layer_index, sub_layer, det_id)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare candidate insert: %w", err)
	}
	defer candStmt.Close()

	hitStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hit_results (run_id, seed_index, layer_index, det_id, kind, compatible, chi2, probability)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare hit insert: %w", err)
	}
	defer hitStmt.Close()

	for si, sr := range results {
		for li, lr := range sr.Layers {
			var x, y, z sql.NullFloat64
			if lr.Propagated.IsValid() {
				p := lr.Propagated.GlobalPosition()
				x = sql.NullFloat64{Float64: p.X, Valid: true}
				y = sql.NullFloat64{Float64: p.Y, Valid: true}
				z = sql.NullFloat64{Float64: p.Z, Valid: true}
			}
			if _, err := layerStmt.ExecContext(ctx, runID, si, sr.Seed.Name, li, lr.Layer,
				lr.InsideOut, lr.Compatible, lr.Crack, x, y, z, lr.CandidateCount()); err != nil {
				return "", fmt.Errorf("insert layer result %s/%s: %w", sr.Seed.Name, lr.Layer, err)
			}
			for _, g := range lr.Groups {
				for _, id := range g.DetIDs {
					if _, err := candStmt.ExecContext(ctx, runID, si, li, g.SubLayer, id); err != nil {
						return "", fmt.Errorf("insert candidate %d: %w", id, err)
					}
				}
			}
			for _, h := range lr.Hits {
				if _, err := hitStmt.ExecContext(ctx, runID, si, li, h.DetID, h.Kind.String(),
					h.Compatible, h.Chi2, h.Probability); err != nil {
					return "", fmt.Errorf("insert hit result on det %d: %w", h.DetID, err)
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	monitoring.Tracef(subsystem, "recorded run %s: %d seeds x %d layers", runID, len(results), layerCount)
	return runID, nil
}

// RunSummary aggregates one stored run.
type RunSummary struct {
	RunID        string
	CreatedAt    time.Time
	GeometryPath string
	SeedsPath    string
	Direction    string
	Seeds        int
	Layers       int
	Compatible   int
	Cracks       int
	Candidates   int
}

// RunSummaries returns every stored run, newest first.
func (s *Store) RunSummaries(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT r.run_id, r.created_unix_ns, r.geometry_path, r.seeds_path, r.direction,
		       r.seed_count, r.layer_count,
		       COALESCE(SUM(l.compatible), 0), COALESCE(SUM(l.crack), 0), COALESCE(SUM(l.candidate_count), 0)
		FROM scan_runs r
		LEFT JOIN layer_results l ON l.run_id = r.run_id
		GROUP BY r.run_id
		ORDER BY r.created_unix_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var ns int64
		if err := rows.Scan(&rs.RunID, &ns, &rs.GeometryPath, &rs.SeedsPath, &rs.Direction,
			&rs.Seeds, &rs.Layers, &rs.Compatible, &rs.Cracks, &rs.Candidates); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		rs.CreatedAt = time.Unix(0, ns)
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Candidate is a stored compatible module.
type Candidate struct {
	SeedName string
	Layer    string
	SubLayer int
	DetID    uint32
}

// Candidates returns the compatible modules of a run in seed, layer and
// insertion order.
func (s *Store) Candidates(ctx context.Context, runID string) ([]Candidate, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT l.seed_name, l.layer_name, c.sub_layer, c.det_id
		FROM candidates c
		JOIN layer_results l
		  ON l.run_id = c.run_id AND l.seed_index = c.seed_index AND l.layer_index = c.layer_index
		WHERE c.run_id = ?
		ORDER BY c.seed_index, c.layer_index, c.rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var c Candidate
		if err := rows.Scan(&c.SeedName, &c.Layer, &c.SubLayer, &c.DetID); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// HitRecord is a stored hit estimation.
type HitRecord struct {
	SeedName    string
	Layer       string
	DetID       uint32
	Kind        string
	Compatible  bool
	Chi2        float64
	Probability float64
}

// Hits returns the hit estimations of a run.
func (s *Store) Hits(ctx context.Context, runID string) ([]HitRecord, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT l.seed_name, l.layer_name, h.det_id, h.kind, h.compatible, h.chi2, h.probability
		FROM hit_results h
		JOIN layer_results l
		  ON l.run_id = h.run_id AND l.seed_index = h.seed_index AND l.layer_index = h.layer_index
		WHERE h.run_id = ?
		ORDER BY h.seed_index, h.layer_index, h.rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query hit results: %w", err)
	}
	defer rows.Close()

	var out []HitRecord
	for rows.Next() {
		var h HitRecord
		if err := rows.Scan(&h.SeedName, &h.Layer, &h.DetID, &h.Kind, &h.Compatible, &h.Chi2, &h.Probability); err != nil {
			return nil, fmt.Errorf("scan hit row: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
