package identity

import (
	"sync"

	"github.com/cuemby/herald/pkg/types"
)

// Provider supplies the current recipient identity and a liveness
// signal. The facade stops polling when the provider's Done channel
// closes, so ending a session never leaves background work behind.
type Provider interface {
	Recipient() types.Recipient
	Done() <-chan struct{}
}

// Session is a Provider with an explicit end-of-session trigger
type Session struct {
	recipient types.Recipient
	done      chan struct{}
	once      sync.Once
}

// NewSession creates a session for a recipient. An empty role defaults
// to the regular user role.
func NewSession(recipient types.Recipient) *Session {
	if recipient.Role == "" {
		recipient.Role = types.DefaultRole
	}
	return &Session{
		recipient: recipient,
		done:      make(chan struct{}),
	}
}

// Recipient returns the session's identity
func (s *Session) Recipient() types.Recipient {
	return s.recipient
}

// Done returns a channel closed when the session ends
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// End marks the session over. Safe to call more than once.
func (s *Session) End() {
	s.once.Do(func() {
		close(s.done)
	})
}
