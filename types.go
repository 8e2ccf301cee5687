package supermarkets

const (
	CollectionPath string = "/supermarkets"
	NewParam       string = "new"
)

// Supermarket is a single managed record.
// ID is zero until the record has been saved by the API. UpdatedAt is unset
// until the first edit.
type Supermarket struct {
	ID         int64     `json:"id,omitempty"`
	Identifier string    `json:"identifier"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UpdatedAt  Timestamp `json:"updatedAt,omitzero"`
}

// Fields are the user-editable parts of a Supermarket.
type Fields struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	URL        string `json:"url"`
}

func (s Supermarket) Persisted() bool {
	return s.ID != 0
}

func (s Supermarket) Fields() Fields {
	return Fields{
		Identifier: s.Identifier,
		Name:       s.Name,
		URL:        s.URL,
	}
}

type Event struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)
