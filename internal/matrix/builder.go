package matrix

import (
	"context"
	"fmt"
	"log"
	"sync"

	"delivery-optimizer/internal/domain"
	"delivery-optimizer/internal/metrics"
	"delivery-optimizer/internal/platform/obs"
	"delivery-optimizer/internal/ports"
)

// Builder assembles the full directed travel matrix for an ordered node
// list, reading the pair cache first and fetching only missing rows from
// the routing provider.
//
// Provider calls run on a bounded worker pool; the provider itself
// handles per-call retry with backoff.
type Builder struct {
	provider ports.MatrixProvider
	cache    ports.MatrixCache

	// workers bounds concurrent provider calls; maxSources bounds the
	// number of source rows per table request (public OSRM rejects very
	// large coordinate lists).
	workers    int
	maxSources int
}

func NewBuilder(provider ports.MatrixProvider, cache ports.MatrixCache) *Builder {
	return &Builder{
		provider:   provider,
		cache:      cache,
		workers:    5,
		maxSources: 40,
	}
}

type rowResult struct {
	sources []int
	matrix  ports.Matrix
	err     error
}

// Build returns distance/duration for every ordered node pair. The matrix
// is directed: m[i][j] and m[j][i] come from separate provider entries.
func (b *Builder) Build(ctx context.Context, coords []domain.Coordinates) (_ ports.Matrix, err error) {
	defer obs.Time(ctx, "matrix.Build")(&err)

	n := len(coords)
	m := ports.Matrix{
		DistanceMeters:  make([][]float64, n),
		DurationSeconds: make([][]float64, n),
	}
	for i := range m.DistanceMeters {
		m.DistanceMeters[i] = make([]float64, n)
		m.DurationSeconds[i] = make([]float64, n)
	}
	if n < 2 {
		return m, nil
	}

	keys := make([]ports.PairKey, 0, n*n-n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j || coords[i].Key() == coords[j].Key() {
				continue
			}
			keys = append(keys, pairKey(coords[i], coords[j]))
		}
	}

	hits := map[ports.PairKey]ports.TravelLeg{}
	if b.cache != nil {
		hits, err = b.cache.GetMany(ctx, keys)
		if err != nil {
			return ports.Matrix{}, fmt.Errorf("matrix build: read cache: %w", err)
		}
	}

	// Any row with at least one missing pair is refetched whole; the
	// table call prices a full row no matter how many columns we need.
	missingRows := make([]int, 0, n)
	for i := 0; i < n; i++ {
		rowMissing := false
		for j := 0; j < n; j++ {
			if i == j || coords[i].Key() == coords[j].Key() {
				continue
			}
			leg, ok := hits[pairKey(coords[i], coords[j])]
			if !ok {
				rowMissing = true
				metrics.MatrixCacheMisses.Inc()
				continue
			}
			metrics.MatrixCacheHits.Inc()
			m.DistanceMeters[i][j] = leg.DistanceMeters
			m.DurationSeconds[i][j] = leg.DurationSeconds
		}
		if rowMissing {
			missingRows = append(missingRows, i)
		}
	}

	if len(missingRows) == 0 {
		return m, nil
	}

	if err := b.fetchRows(ctx, coords, missingRows, &m); err != nil {
		return ports.Matrix{}, err
	}
	return m, nil
}

// fetchRows retrieves the listed source rows (against all destinations)
// in batches on a bounded worker pool and backfills the cache.
func (b *Builder) fetchRows(ctx context.Context, coords []domain.Coordinates, rows []int, m *ports.Matrix) error {
	batches := make([][]int, 0, (len(rows)+b.maxSources-1)/b.maxSources)
	for start := 0; start < len(rows); start += b.maxSources {
		end := start + b.maxSources
		if end > len(rows) {
			end = len(rows)
		}
		batches = append(batches, rows[start:end])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := make(chan struct{}, b.workers)
	resultsCh := make(chan rowResult, len(batches))
	var wg sync.WaitGroup

	for _, batch := range batches {
		wg.Add(1)
		go func(sources []int) {
			sem <- struct{}{}
			defer wg.Done()
			defer func() { <-sem }()

			fetched, err := b.provider.Table(ctx, coords, sources, nil)
			if err != nil {
				resultsCh <- rowResult{sources: sources, err: err}
				cancel()
				return
			}
			resultsCh <- rowResult{sources: sources, matrix: fetched}
		}(batch)
	}

	wg.Wait()
	close(resultsCh)

	fresh := make(map[ports.PairKey]ports.TravelLeg)
	var fetchErr error
	for res := range resultsCh {
		if res.err != nil {
			if fetchErr == nil {
				fetchErr = fmt.Errorf("matrix build: fetch rows: %w", res.err)
			}
			continue
		}
		for bi, i := range res.sources {
			if len(res.matrix.DistanceMeters) <= bi {
				return fmt.Errorf("matrix build: provider returned %d rows for %d sources",
					len(res.matrix.DistanceMeters), len(res.sources))
			}
			for j := 0; j < len(coords); j++ {
				if i == j || coords[i].Key() == coords[j].Key() {
					continue
				}
				m.DistanceMeters[i][j] = res.matrix.DistanceMeters[bi][j]
				m.DurationSeconds[i][j] = res.matrix.DurationSeconds[bi][j]
				fresh[pairKey(coords[i], coords[j])] = ports.TravelLeg{
					DistanceMeters:  res.matrix.DistanceMeters[bi][j],
					DurationSeconds: res.matrix.DurationSeconds[bi][j],
				}
			}
		}
	}
	if fetchErr != nil {
		return fetchErr
	}

	if b.cache != nil && len(fresh) > 0 {
		if err := b.cache.PutMany(ctx, fresh); err != nil {
			log.Printf("matrix cache write failed: %v", err)
		}
	}
	return nil
}

func pairKey(origin, destination domain.Coordinates) ports.PairKey {
	return ports.PairKey(origin.Key() + "|" + destination.Key())
}
