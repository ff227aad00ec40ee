package domain

import (
	"errors"
)

// ID is an opaque identifier assigned by the upstream resource.
// The upstream may send it as a JSON number or a JSON string; both are kept as text.
// Any other JSON value is kept as its compact JSON text so one odd row never fails a whole response.
type ID string

// UnmarshalJSON accepts any JSON value
func (id *ID) UnmarshalJSON(data []byte) error {
	text, _, err := decodeRawText(data)
	if err != nil {
		return err
	}
	*id = ID(text)
	return nil
}

// String returns the identifier text
func (id ID) String() string {
	return string(id)
}

// Location represents a selectable location loaded from the catalog.
// The name is unique and doubles as the fetch key and the selection value.
type Location struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Validate ensures the location can be offered as a selection
func (l *Location) Validate() error {
	if l.Name == "" {
		return errors.New("location name cannot be empty")
	}

	// "all" is reserved for the all-locations selection
	if l.Name == SelectionValueAll {
		return errors.New("location name collides with the all-locations selection")
	}

	return nil
}
