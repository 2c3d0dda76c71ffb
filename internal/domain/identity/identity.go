package identity

import "errors"

var ErrNotAuthenticated = errors.New("not authenticated")

// Identity is the verified caller passed explicitly into every core
// operation; core logic never reads it from ambient request context.
type Identity struct {
	Email       string
	DisplayName string
}

func (i Identity) Valid() bool { return i.Email != "" }
