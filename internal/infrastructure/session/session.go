// Package session keeps the per-browser login state of the web UI.
package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

var ErrNotFound = errors.New("session not found")

// Session is what the web UI remembers about a browser between requests.
// IDToken is kept apart from Token since oauth2.Token does not serialize
// its extra fields.
type Session struct {
	State    string        `json:"state,omitempty"`
	Verifier string        `json:"verifier,omitempty"`
	Token    *oauth2.Token `json:"token,omitempty"`
	IDToken  string        `json:"idToken,omitempty"`
	Subject  string        `json:"subject,omitempty"`
	Name     string        `json:"name,omitempty"`
}

func (s *Session) LoggedIn() bool {
	return s != nil && s.Token != nil
}

type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, id string, sess *Session) error
	Delete(ctx context.Context, id string) error
}

func NewID() string {
	return uuid.NewString()
}

func encode(sealer *Sealer, sess *Session) ([]byte, error) {
	plain, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	return sealer.Seal(plain), nil
}

func decode(sealer *Sealer, data []byte) (*Session, error) {
	plain, err := sealer.Open(data)
	if err != nil {
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(plain, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func key(id string) string {
	return "session:" + id
}
