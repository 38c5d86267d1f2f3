package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probeOf(present ...string) Probe {
	set := map[string]bool{}
	for _, p := range present {
		set[p] = true
	}
	return func(cmd string) bool { return set[cmd] }
}

func TestSelect_PriorityOrder(t *testing.T) {
	reg := NewRegistry()
	b, err := reg.Select(DefaultPriority(), probeOf("lynx", "pandoc"), Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "lynx", b.Name())
}

func TestSelect_FallsBackToNative(t *testing.T) {
	reg := NewRegistry()
	b, err := reg.Select(DefaultPriority(), probeOf(), Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "native", b.Name())
}

func TestSelect_NoneAvailable(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Select([]string{"w3m", "bogus", "lynx"}, probeOf(), Options{}, nil)
	require.ErrorIs(t, err, ErrBackendUnavailable)
	assert.Contains(t, err.Error(), "w3m, lynx")
}

func TestRegistry_OverridesBuiltin(t *testing.T) {
	reg := NewRegistry(Spec{Name: " w3m ", Mode: ModePipe, Command: "my-w3m"}, Spec{Name: ""})
	assert.Equal(t, "my-w3m", reg["w3m"].Command)
	_, ok := reg[""]
	assert.False(t, ok)

	b, err := reg.Select([]string{"w3m"}, probeOf("my-w3m"), Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "w3m", b.Name())
}
