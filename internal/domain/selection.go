package domain

// SelectionKind represents the scope a selection resolves to
type SelectionKind int

const (
	SelectionUnselected SelectionKind = iota
	SelectionLocation
	SelectionAll
)

// Wire values used by selectors. Any other value names a location.
const (
	SelectionValueNone = ""
	SelectionValueAll  = "all"
)

// Selection is the user's chosen scope: nothing, a single location, or all locations
type Selection struct {
	Kind     SelectionKind
	Location string // set only for SelectionLocation
}

// Unselected returns the empty selection
func Unselected() Selection {
	return Selection{Kind: SelectionUnselected}
}

// All returns the all-locations selection
func All() Selection {
	return Selection{Kind: SelectionAll}
}

// ForLocation returns a selection scoped to a single location.
// An empty name is the same as no selection.
func ForLocation(name string) Selection {
	if name == "" {
		return Unselected()
	}
	return Selection{Kind: SelectionLocation, Location: name}
}

// ParseSelection converts a selector value into a Selection
func ParseSelection(value string) Selection {
	switch value {
	case SelectionValueNone:
		return Unselected()
	case SelectionValueAll:
		return All()
	default:
		return ForLocation(value)
	}
}

// Value returns the selector value for the selection
func (s Selection) Value() string {
	switch s.Kind {
	case SelectionAll:
		return SelectionValueAll
	case SelectionLocation:
		return s.Location
	default:
		return SelectionValueNone
	}
}

// IsUnselected reports whether nothing is selected
func (s Selection) IsUnselected() bool {
	return s.Kind == SelectionUnselected
}

// LocationFilter returns the location filter for fetches issued under this selection.
// The boolean is false when the selection does not require a fetch.
// An empty filter with true means "all locations".
func (s Selection) LocationFilter() (string, bool) {
	switch s.Kind {
	case SelectionAll:
		return "", true
	case SelectionLocation:
		return s.Location, true
	default:
		return "", false
	}
}

// String implements fmt.Stringer for logging
func (s Selection) String() string {
	switch s.Kind {
	case SelectionAll:
		return "all"
	case SelectionLocation:
		return "location:" + s.Location
	default:
		return "unselected"
	}
}
