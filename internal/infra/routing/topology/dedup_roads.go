package topology

import (
	"slices"

	"roadnet/internal/domain/entity"
)

// DedupRoads drops roads whose coordinate sequence is repeated by a later
// road with the same direction. The later copy is the one kept. Identical
// coordinates with different declared lengths mean the input is corrupt and
// abort with a *RoadLengthMismatchError.
func DedupRoads(roads []entity.RoadSegment) ([]entity.RoadSegment, int, error) {
	kept := make([]entity.RoadSegment, 0, len(roads))
	var removed int

outer:
	for i, r := range roads {
		for _, other := range roads[i+1:] {
			if !slices.Equal(r.Coordinates, other.Coordinates) {
				continue
			}
			if r.Length != other.Length {
				return nil, 0, &RoadLengthMismatchError{
					FirstID:    r.UniqueID,
					SecondID:   other.UniqueID,
					Difference: r.Length - other.Length,
				}
			}
			if r.Direction == other.Direction {
				removed++

				continue outer
			}
		}
		kept = append(kept, r)
	}

	return kept, removed, nil
}
