package supermarkets

import (
	"fmt"
	"strconv"
	"strings"
)

// ItemPath returns the path of a single supermarket below the collection.
func ItemPath(id int64) string {
	return CollectionPath + "/" + strconv.FormatInt(id, 10)
}

// ParseID parses a route parameter into a record id.
// Zero and negative values are rejected since zero marks an unsaved record.
func ParseID(param string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(param), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", param)
	}
	if id <= 0 {
		return 0, fmt.Errorf("invalid id %q", param)
	}
	return id, nil
}

// HasName reports whether the fields carry the one value the list needs.
func (f Fields) HasName() bool {
	return strings.TrimSpace(f.Name) != ""
}
