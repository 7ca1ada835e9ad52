package sim

import "github.com/napolitain/citysim/internal/models"

// ProximityKind selects one of the coverage lists
type ProximityKind int

const (
	ProximityPolice ProximityKind = iota
	ProximityFire
	ProximityHospital
	ProximitySpecial
	proximityKinds
)

// String returns a string representation of the proximity kind
func (k ProximityKind) String() string {
	switch k {
	case ProximityPolice:
		return "police"
	case ProximityFire:
		return "fire"
	case ProximityHospital:
		return "hospital"
	case ProximitySpecial:
		return "special"
	default:
		return "unknown"
	}
}

// ProximityIndex answers "is (x, y) within radius of a registered building".
// Coverage is square: both axis differences must be <= radius.
type ProximityIndex interface {
	Register(kind ProximityKind, c models.Coord)
	Unregister(kind ProximityKind, c models.Coord)
	Covered(kind ProximityKind, x, y, radius int) bool
	Coords(kind ProximityKind) []models.Coord
}

// ListIndex is the linear-scan ProximityIndex
type ListIndex struct {
	lists [proximityKinds][]models.Coord
}

// NewListIndex creates an empty index
func NewListIndex() *ListIndex {
	return &ListIndex{}
}

// Register appends a coordinate to the kind's list
func (l *ListIndex) Register(kind ProximityKind, c models.Coord) {
	if !validKind(kind) {
		return
	}
	l.lists[kind] = append(l.lists[kind], c)
}

// Unregister removes the first entry equal to c, keeping order
func (l *ListIndex) Unregister(kind ProximityKind, c models.Coord) {
	if !validKind(kind) {
		return
	}
	list := l.lists[kind]
	for i, entry := range list {
		if entry == c {
			l.lists[kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Covered reports whether any registered entry lies within radius on both axes
func (l *ListIndex) Covered(kind ProximityKind, x, y, radius int) bool {
	if !validKind(kind) {
		return false
	}
	for _, entry := range l.lists[kind] {
		if abs(entry.X-x) <= radius && abs(entry.Y-y) <= radius {
			return true
		}
	}
	return false
}

// Coords returns a copy of the kind's list in registration order
func (l *ListIndex) Coords(kind ProximityKind) []models.Coord {
	if !validKind(kind) {
		return nil
	}
	return append([]models.Coord(nil), l.lists[kind]...)
}

func validKind(kind ProximityKind) bool {
	return kind >= 0 && kind < proximityKinds
}

// proximityKindsFor returns the lists a building of this type belongs to
func proximityKindsFor(bt models.BuildingType, spec models.BuildingSpec) []ProximityKind {
	var kinds []ProximityKind
	switch bt {
	case models.PoliceStation:
		kinds = append(kinds, ProximityPolice)
	case models.FireStation:
		kinds = append(kinds, ProximityFire)
	case models.Hospital:
		kinds = append(kinds, ProximityHospital)
	}
	if spec.Special {
		kinds = append(kinds, ProximitySpecial)
	}
	return kinds
}
