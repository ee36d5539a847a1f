package session

import (
	"errors"
	"time"
)

// ErrNotFound indicates an operation on a session id that does not exist.
var ErrNotFound = errors.New("session not found")

// Exchange is one completed question/answer pair.
type Exchange struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	At       time.Time `json:"at"`
}

// state is the per-session record. All access goes through the Store's
// mutex; state itself carries no locking.
type state struct {
	exchanges []Exchange
	createdAt time.Time
	updatedAt time.Time
}
