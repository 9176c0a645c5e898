package ports

import "context"

// PairKey identifies one directed coordinate pair in the matrix cache.
// Build it from rounded coordinate keys: origin + "|" + destination.
type PairKey string

// MatrixCache stores directed travel legs keyed by rounded coordinate
// pairs. Reads must be safe under concurrent access; implementations
// guard writes per key so a miss is resolved by a single writer.
type MatrixCache interface {
	GetMany(ctx context.Context, keys []PairKey) (map[PairKey]TravelLeg, error)
	PutMany(ctx context.Context, legs map[PairKey]TravelLeg) error
}
