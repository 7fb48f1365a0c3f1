package helpkb

import "sort"

// Ordering sorts query results before they are returned from a search.
type Ordering struct {
	Name string
	Less func(a, b Match) bool
}

// Sort orders matches in place. Equal matches keep their index order.
func (o Ordering) Sort(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		return o.Less(matches[i], matches[j])
	})
}

// OrderByDistanceDesc puts the largest distance first. This is the
// historical search order; for distance metrics it ranks the farthest
// match first.
var OrderByDistanceDesc = Ordering{
	Name: "distance-desc",
	Less: func(a, b Match) bool { return a.Distance > b.Distance },
}

// OrderByDistanceAsc puts the closest match first.
var OrderByDistanceAsc = Ordering{
	Name: "distance-asc",
	Less: func(a, b Match) bool { return a.Distance < b.Distance },
}

// OrderingByName returns the ordering called name.
func OrderingByName(name string) (Ordering, error) {
	switch name {
	case OrderByDistanceDesc.Name:
		return OrderByDistanceDesc, nil
	case OrderByDistanceAsc.Name:
		return OrderByDistanceAsc, nil
	}
	return Ordering{}, Errorf(EINVALID, "unknown ordering %q", name)
}
