// Package feedback fans out discrete hit/miss events to optional listeners
// such as sound or flash effects. A nil *Bus is valid and drops everything.
package feedback

import "github.com/verte-zerg/humangate/internal/model"

// Kind classifies an event.
type Kind int

// Event kinds.
const (
	Hit Kind = iota
	Miss
	Stray
	Bounce
)

func (k Kind) String() string {
	switch k {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	case Stray:
		return "stray"
	case Bounce:
		return "bounce"
	default:
		return "unknown"
	}
}

// Event is a single feedback notification.
type Event struct {
	Challenge model.ChallengeID
	Kind      Kind
	Lane      int
}

// Listener receives events synchronously on the emitting goroutine.
type Listener func(Event)

// Bus delivers events to subscribed listeners in subscription order.
type Bus struct {
	listeners []Listener
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers l.
func (b *Bus) Subscribe(l Listener) {
	if b == nil || l == nil {
		return
	}
	b.listeners = append(b.listeners, l)
}

// Emit delivers e to every listener.
func (b *Bus) Emit(e Event) {
	if b == nil {
		return
	}
	for _, l := range b.listeners {
		l(e)
	}
}
