package state

// Watchable is anything that reports modifications with a scope.
type Watchable interface {
	Subscribe(fn func(ModifyScope)) *Subscription
}

type listener struct {
	id uint64
	fn func(ModifyScope)
}

// Notifier fans out modification scopes to subscribers in subscription order.
// The zero value is ready to use.
type Notifier struct {
	listeners []listener
	nextID    uint64
}

// Subscription is a handle returned by Subscribe.
type Subscription struct {
	n  *Notifier
	id uint64
}

// Unsubscribe stops deliveries. It is safe to call more than once and from
// inside a notification.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.n == nil {
		return
	}
	s.n.remove(s.id)
	s.n = nil
}

// Subscribe registers fn.
func (n *Notifier) Subscribe(fn func(ModifyScope)) *Subscription {
	n.nextID++
	n.listeners = append(n.listeners, listener{id: n.nextID, fn: fn})
	return &Subscription{n: n, id: n.nextID}
}

func (n *Notifier) remove(id uint64) {
	for i, l := range n.listeners {
		if l.id == id {
			n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
			return
		}
	}
}

// Notify delivers scope to every subscriber registered when the call began.
// Subscribers removed during delivery are skipped.
func (n *Notifier) Notify(scope ModifyScope) {
	if len(n.listeners) == 0 {
		return
	}
	snapshot := append([]listener(nil), n.listeners...)
	for _, l := range snapshot {
		if !n.has(l.id) {
			continue
		}
		l.fn(scope)
	}
}

func (n *Notifier) has(id uint64) bool {
	for _, l := range n.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// Len returns the number of subscribers.
func (n *Notifier) Len() int {
	return len(n.listeners)
}
