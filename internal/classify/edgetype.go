package classify

import "fmt"

// EdgeType is the categorical sharpness of a vertex.
type EdgeType uint8

const (
	Blunt EdgeType = iota
	Blade
	Spike
)

// EdgeTypeCount is the number of edge types.
const EdgeTypeCount = 3

// String returns a human-readable edge type name.
func (e EdgeType) String() string {
	switch e {
	case Blunt:
		return "blunt"
	case Blade:
		return "blade"
	case Spike:
		return "spike"
	default:
		return fmt.Sprintf("EdgeType(%d)", uint8(e))
	}
}

// MarshalText encodes the type by name.
func (e EdgeType) MarshalText() ([]byte, error) {
	if e > Spike {
		return nil, fmt.Errorf("unknown edge type %d", uint8(e))
	}
	return []byte(e.String()), nil
}

// UnmarshalText decodes a type name.
func (e *EdgeType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "blunt":
		*e = Blunt
	case "blade":
		*e = Blade
	case "spike":
		*e = Spike
	default:
		return fmt.Errorf("unknown edge type %q", text)
	}
	return nil
}

// typeFor splits an average |dot| in [0, 1] into an edge type.
func typeFor(avgAbsDot float32, p Params) EdgeType {
	switch {
	case avgAbsDot <= p.SplitLow:
		return Blunt
	case avgAbsDot >= p.SplitHigh:
		return Spike
	default:
		return Blade
	}
}

// ClassifyScore re-derives the edge type from a cached score in [0, 2].
func ClassifyScore(score float32, p Params) EdgeType {
	return typeFor(score/2, p)
}
