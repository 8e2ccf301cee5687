package supermarkets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Timestamp is an optional point in time. The zero value means unset and
// encodes as null; null and "" decode to unset.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// TimestampOf converts a nullable column value.
func TimestampOf(t *time.Time) Timestamp {
	if t == nil {
		return Timestamp{}
	}
	return Timestamp{Time: *t}
}

func (t Timestamp) IsSet() bool {
	return !t.Time.IsZero()
}

// Compare orders unset before any set value.
func (t Timestamp) Compare(u Timestamp) int {
	switch {
	case !t.IsSet() && !u.IsSet():
		return 0
	case !t.IsSet():
		return -1
	case !u.IsSet():
		return 1
	}
	return t.Time.Compare(u.Time)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %v", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}

	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			*t = Timestamp{Time: parsed}
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
