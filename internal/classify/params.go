package classify

import (
	"errors"
	"fmt"
)

// Parameter limits.
const (
	MaxDepth          = 128
	MaxNeighborsLimit = 128
	MaxCollectedLimit = 1024
	MaxDistancePower  = 2

	// SanitizedMaxDepth is the depth ceiling applied by Sanitize.
	SanitizedMaxDepth = 32
)

// ErrInvalidParams wraps every Params.Validate failure.
var ErrInvalidParams = errors.New("invalid classifier params")

// Params tunes the neighbor walk and the Blunt/Blade/Spike split.
type Params struct {
	Depth               int     `yaml:"depth"`                 // BFS hop count
	MaxNeighbors        int     `yaml:"max_neighbors"`         // per-layer cap per source vertex, 0 = uncapped
	MaxCollected        int     `yaml:"max_collected"`         // total contributions per vertex
	SplitLow            float32 `yaml:"split_low"`             // avg |dot| at or below => Blunt
	SplitHigh           float32 `yaml:"split_high"`            // avg |dot| at or above => Spike
	DepthDecay          float32 `yaml:"depth_decay"`           // weight multiplier per hop
	DistanceWeightPower float32 `yaml:"distance_weight_power"` // 0 disables inverse-distance weighting
	MinSqrDistance      float32 `yaml:"min_sqr_distance"`      // neighbors closer than this are skipped
}

// DefaultParams returns the tuning used for typical weapon meshes.
func DefaultParams() Params {
	return Params{
		Depth:               3,
		MaxNeighbors:        16,
		MaxCollected:        128,
		SplitLow:            0.2,
		SplitHigh:           0.7,
		DepthDecay:          0,
		DistanceWeightPower: 0,
		MinSqrDistance:      1e-6,
	}
}

// Validate reports the first field outside its documented range.
func (p Params) Validate() error {
	switch {
	case p.Depth < 0 || p.Depth > MaxDepth:
		return fmt.Errorf("%w: depth %d not in [0, %d]", ErrInvalidParams, p.Depth, MaxDepth)
	case p.MaxNeighbors < 0 || p.MaxNeighbors > MaxNeighborsLimit:
		return fmt.Errorf("%w: max_neighbors %d not in [0, %d]", ErrInvalidParams, p.MaxNeighbors, MaxNeighborsLimit)
	case p.MaxCollected < 1 || p.MaxCollected > MaxCollectedLimit:
		return fmt.Errorf("%w: max_collected %d not in [1, %d]", ErrInvalidParams, p.MaxCollected, MaxCollectedLimit)
	case !unit(p.SplitLow) || !unit(p.SplitHigh):
		return fmt.Errorf("%w: splits (%g, %g) not in [0, 1]", ErrInvalidParams, p.SplitLow, p.SplitHigh)
	case p.SplitLow >= p.SplitHigh:
		return fmt.Errorf("%w: split_low %g must be below split_high %g", ErrInvalidParams, p.SplitLow, p.SplitHigh)
	case !unit(p.DepthDecay):
		return fmt.Errorf("%w: depth_decay %g not in [0, 1]", ErrInvalidParams, p.DepthDecay)
	case p.DistanceWeightPower < 0 || p.DistanceWeightPower > MaxDistancePower:
		return fmt.Errorf("%w: distance_weight_power %g not in [0, %d]", ErrInvalidParams, p.DistanceWeightPower, MaxDistancePower)
	case p.MinSqrDistance < 0:
		return fmt.Errorf("%w: min_sqr_distance %g is negative", ErrInvalidParams, p.MinSqrDistance)
	}
	return nil
}

// Sanitize clamps every field into range. Depth is held to [1, 32] and
// SplitHigh is pushed just above SplitLow when they cross.
func (p Params) Sanitize() Params {
	p.Depth = clampInt(p.Depth, 1, SanitizedMaxDepth)
	p.MaxNeighbors = clampInt(p.MaxNeighbors, 0, MaxNeighborsLimit)
	p.MaxCollected = clampInt(p.MaxCollected, 1, MaxCollectedLimit)
	p.SplitLow = clamp01(p.SplitLow)
	p.SplitHigh = clamp01(p.SplitHigh)
	if p.SplitLow >= p.SplitHigh {
		p.SplitHigh = min(1, p.SplitLow+0.01)
	}
	p.DepthDecay = clamp01(p.DepthDecay)
	p.DistanceWeightPower = max(0, min(MaxDistancePower, p.DistanceWeightPower))
	p.MinSqrDistance = max(0, p.MinSqrDistance)
	return p
}

func unit(x float32) bool {
	return x >= 0 && x <= 1
}

func clamp01(x float32) float32 {
	return max(0, min(1, x))
}

func clampInt(x, lo, hi int) int {
	return max(lo, min(hi, x))
}
