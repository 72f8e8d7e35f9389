package state

import (
	"testing"

	"github.com/go-drift/arbor/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeContains(t *testing.T) {
	assert.True(t, ScopeBoth.Contains(ScopeData))
	assert.True(t, ScopeBoth.Contains(ScopeFramework))
	assert.False(t, ScopeData.Contains(ScopeFramework))
	assert.True(t, ScopeBoth.Intersects(ScopeFramework))
	assert.Equal(t, "data|framework", ScopeBoth.String())
	assert.Equal(t, "none", ModifyScope(0).String())
}

func TestWriteScopes(t *testing.T) {
	s := New(0)
	var got []ModifyScope
	s.Subscribe(func(sc ModifyScope) { got = append(got, sc) })

	s.Set(1)
	w := s.Silent()
	*w.Value() = 2
	w.Close()
	w = s.Shallow()
	*w.Value() = 3
	w.Close()
	w.Close()

	assert.Equal(t, []ModifyScope{ScopeBoth, ScopeData, ScopeFramework}, got)
	assert.Equal(t, 3, s.Get())
}

func TestWriteUnderReadPanics(t *testing.T) {
	s := New("a")
	r := s.Read()
	assert.Equal(t, "a", r.Value())

	defer func() {
		rec := recover()
		require.NotNil(t, rec)
		err, ok := rec.(*errors.TreeError)
		require.True(t, ok)
		assert.Equal(t, errors.KindBorrow, err.Kind)
		assert.True(t, errors.Is(err, errors.ErrBorrowed))
	}()
	s.Set("b")
}

func TestReleaseAllowsWrite(t *testing.T) {
	s := New(1)
	r := s.Read()
	r.Release()
	r.Release()
	s.Update(func(v *int) { *v++ })
	assert.Equal(t, 2, s.Get())
}

func TestUnsubscribeDuringNotify(t *testing.T) {
	s := New(0)
	var calls []string
	var second *Subscription
	s.Subscribe(func(ModifyScope) {
		calls = append(calls, "first")
		second.Unsubscribe()
	})
	second = s.Subscribe(func(ModifyScope) { calls = append(calls, "second") })

	s.Set(1)
	s.Set(2)
	assert.Equal(t, []string{"first", "first"}, calls)
	assert.Equal(t, 1, s.Subscribers())
}
