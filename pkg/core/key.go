package core

import (
	"github.com/go-drift/arbor/pkg/tree"
)

// KeyStatus is the reconciliation outcome of a keyed node.
type KeyStatus int

const (
	// KeyInitial means the node was never reconciled.
	KeyInitial KeyStatus = iota
	// KeyEntered means no previous node carried the key.
	KeyEntered
	// KeyUpdated means a previous node carried the key and handed over its value.
	KeyUpdated
	// KeyDisposed means the key is absent from the latest generation.
	KeyDisposed
)

func (s KeyStatus) String() string {
	switch s {
	case KeyEntered:
		return "entered"
	case KeyUpdated:
		return "updated"
	case KeyDisposed:
		return "disposed"
	default:
		return "initial"
	}
}

// AnyKey is the type-erased view of a Key used during reconciliation.
type AnyKey interface {
	// Identity is the comparable value keys are matched on.
	Identity() any
	// Status reports the last reconciliation outcome.
	Status() KeyStatus

	recordBefore(old AnyKey)
	markEntered()
	markDisposed()
}

// Key identifies a node across regenerations and carries a value whose
// previous version is handed over when the key is matched.
type Key[V comparable] struct {
	id        any
	value     V
	before    V
	hasBefore bool
	status    KeyStatus
}

// NewKey creates a key. id must be comparable.
func NewKey[V comparable](id any, value V) *Key[V] {
	return &Key[V]{id: id, value: value}
}

// Identity returns the key's identity.
func (k *Key[V]) Identity() any { return k.id }

// Status reports the last reconciliation outcome.
func (k *Key[V]) Status() KeyStatus { return k.status }

// Value returns the carried value.
func (k *Key[V]) Value() V { return k.value }

// Before returns the value the matched previous key carried.
func (k *Key[V]) Before() (V, bool) { return k.before, k.hasBefore }

// IsEntered reports whether the key first appeared in the latest generation.
func (k *Key[V]) IsEntered() bool { return k.status == KeyEntered }

// IsDisposed reports whether the key is gone from the latest generation.
func (k *Key[V]) IsDisposed() bool { return k.status == KeyDisposed }

// IsChanged reports whether the key was matched with a different value.
func (k *Key[V]) IsChanged() bool { return k.hasBefore && k.before != k.value }

// KeyChange pairs the previous and current value of a key.
type KeyChange[V comparable] struct {
	Before    V
	HasBefore bool
	After     V
}

// Change returns the key's value transition.
func (k *Key[V]) Change() KeyChange[V] {
	return KeyChange[V]{Before: k.before, HasBefore: k.hasBefore, After: k.value}
}

func (k *Key[V]) recordBefore(old AnyKey) {
	k.status = KeyUpdated
	if o, ok := old.(*Key[V]); ok {
		k.before, k.hasBefore = o.value, true
	}
}

func (k *Key[V]) markEntered()  { k.status = KeyEntered }
func (k *Key[V]) markDisposed() { k.status = KeyDisposed }

// WithKey attaches key to child.
func WithKey(child Widget, key AnyKey) Widget {
	return Attach{Child: child, Data: key}
}

// KeyOf returns the outermost key on id.
func KeyOf(t *Tree, id tree.NodeID) (AnyKey, bool) {
	return Query[AnyKey](t, id)
}

type keyPair struct {
	old, new int
}

// reconcileKeys matches keyed heads of the new generation against the old
// one. Matched new keys take over the old value, unmatched ones are marked
// entered and leftover old keys are marked disposed. Duplicate keys resolve
// to the last occurrence on both sides; earlier new duplicates are entered.
func (t *Tree) reconcileKeys(old, heads []tree.NodeID) []keyPair {
	byKey := make(map[any]int, len(old))
	for i, o := range old {
		if k, ok := KeyOf(t, o); ok {
			byKey[k.Identity()] = i
		}
	}
	lastHead := make(map[any]int, len(heads))
	for i, n := range heads {
		if k, ok := KeyOf(t, n); ok {
			lastHead[k.Identity()] = i
		}
	}
	var pairs []keyPair
	for i, n := range heads {
		k, ok := KeyOf(t, n)
		if !ok {
			continue
		}
		oi, found := byKey[k.Identity()]
		if !found || lastHead[k.Identity()] != i {
			k.markEntered()
			continue
		}
		prev, _ := KeyOf(t, old[oi])
		k.recordBefore(prev)
		delete(byKey, k.Identity())
		pairs = append(pairs, keyPair{old: oi, new: i})
	}
	for _, oi := range byKey {
		if k, ok := KeyOf(t, old[oi]); ok {
			k.markDisposed()
		}
	}
	return pairs
}
