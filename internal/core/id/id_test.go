package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternIsStable(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"run", "jumpStart", "", "idle", "a b c", "ünïcode"} {
		first := r.Intern(name)
		second := r.Intern(name)
		assert.Equal(t, first, second, name)

		got, ok := r.Resolve(first)
		require.True(t, ok, name)
		assert.Equal(t, name, got)
	}
}

func TestBuiltinsAreSeeded(t *testing.T) {
	r := NewRegistry()
	for v := Invalid + 1; v < lastBuiltin; v++ {
		assert.Equal(t, v, r.Intern(builtinNames[v]))
		assert.True(t, v.Builtin())
		assert.Equal(t, builtinNames[v], v.String())
	}
	assert.Equal(t, int(lastBuiltin)-1, r.Len())
}

func TestDataDrivenNamesFollowBuiltins(t *testing.T) {
	r := NewRegistry()
	a := r.Intern("swing")
	b := r.Intern("crouch")
	assert.Equal(t, lastBuiltin, a)
	assert.Equal(t, a+1, b)
	assert.False(t, a.Builtin())
	assert.Equal(t, "swing", r.Name(a))
}

func TestResolveMiss(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Resolve(Invalid)
	assert.False(t, ok)
	_, ok = r.Resolve(ID(9999))
	assert.False(t, ok)
	assert.Equal(t, "unknown(9999)", r.Name(ID(9999)))

	_, ok = r.Lookup("never-interned")
	assert.False(t, ok)
	v, ok := r.Lookup("walk")
	assert.True(t, ok)
	assert.Equal(t, Walk, v)
}
