// Package token provides a bearer-token value that can be read only once.
package token

import (
	"errors"
	"sync/atomic"
)

// ErrConsumed is returned when a token is read a second time.
var ErrConsumed = errors.New("token already consumed")

// ErrEmpty is returned when consuming a token that carries no value.
var ErrEmpty = errors.New("token is empty")

// Kind names the token family for logs and errors.
type Kind string

const (
	KindNetworkSession   Kind = "network_session"
	KindInteroperability Kind = "interoperability"
	KindSDK              Kind = "sdk"
)

// SingleUse holds a short-lived vendor token. The zero value and nil are
// empty tokens.
type SingleUse struct {
	kind     Kind
	value    string
	consumed atomic.Bool
}

// New wraps value. An empty value yields an empty token.
func New(kind Kind, value string) *SingleUse {
	return &SingleUse{kind: kind, value: value}
}

// Kind returns the token family.
func (t *SingleUse) Kind() Kind {
	if t == nil {
		return ""
	}
	return t.kind
}

// Present reports whether the token carries a value, consumed or not.
func (t *SingleUse) Present() bool {
	return t != nil && t.value != ""
}

// Consumed reports whether the value has been read.
func (t *SingleUse) Consumed() bool {
	return t != nil && t.consumed.Load()
}

// Consume returns the value once. Later calls return ErrConsumed.
func (t *SingleUse) Consume() (string, error) {
	if !t.Present() {
		return "", ErrEmpty
	}
	if !t.consumed.CompareAndSwap(false, true) {
		return "", ErrConsumed
	}
	return t.value, nil
}

// String never reveals the value.
func (t *SingleUse) String() string {
	switch {
	case !t.Present():
		return "<empty>"
	case t.Consumed():
		return "<consumed>"
	default:
		return "<redacted>"
	}
}
