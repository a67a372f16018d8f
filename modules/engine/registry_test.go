package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathomsearch/fathom/modules/result"
)

type fakeEngine struct {
	Defaults
	name    string
	timeout float64
	weight  float64
}

func (f *fakeEngine) Name() string { return f.name }
func (f *fakeEngine) TimeoutSeconds() float64 {
	return f.timeout
}
func (f *fakeEngine) Weight() float64 { return f.weight }
func (f *fakeEngine) BuildRequest(RequestParams) (*Request, error) {
	return NewGet("https://example.test"), nil
}
func (f *fakeEngine) ParseResponse(*Response) (*result.EngineResults, error) {
	return &result.EngineResults{}, nil
}

func floatPtr(f float64) *float64 { return &f }

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Add(&fakeEngine{name: "google", timeout: 5, weight: 1}, Config{Name: "google", Shortcut: "g", Categories: []string{"general"}})
	r.Add(&fakeEngine{name: "bing", timeout: 4, weight: 1}, Config{Name: "bing", Shortcut: "bi", Categories: []string{"general", "images"}, Timeout: floatPtr(2), Weight: floatPtr(0.5)})
	return r
}

func TestResolve(t *testing.T) {
	r := newTestRegistry()

	name, ok := r.Resolve("g")
	require.True(t, ok)
	assert.Equal(t, "google", name)

	name, ok = r.Resolve("bing")
	require.True(t, ok)
	assert.Equal(t, "bing", name)

	_, ok = r.Resolve("nope")
	assert.False(t, ok)
}

func TestByCategory(t *testing.T) {
	r := newTestRegistry()

	assert.Equal(t, []string{"google", "bing"}, r.ByCategory("general"))
	assert.Equal(t, []string{"bing"}, r.ByCategory("images"))
	assert.Empty(t, r.ByCategory("unknown"))
}

func TestEffectiveTimeout(t *testing.T) {
	r := newTestRegistry()

	// config override wins
	assert.Equal(t, 2.0, r.EffectiveTimeout("bing", 10))
	// engine default next
	assert.Equal(t, 5.0, r.EffectiveTimeout("google", 10))
	// fallback for unknown engines
	assert.Equal(t, 10.0, r.EffectiveTimeout("nope", 10))
}

func TestEffectiveWeight(t *testing.T) {
	r := newTestRegistry()

	assert.Equal(t, 0.5, r.EffectiveWeight("bing"))
	assert.Equal(t, 1.0, r.EffectiveWeight("google"))
	assert.Equal(t, 1.0, r.EffectiveWeight("nope"))

	// a configured weight of 0 is honored, not treated as unset
	r.Add(&fakeEngine{name: "muted", weight: 1}, Config{Name: "muted", Weight: floatPtr(0)})
	assert.Equal(t, 0.0, r.EffectiveWeight("muted"))
}

func TestLoaderSkipsDisabled(t *testing.T) {
	RegisterFactory("fake", func(cfg Config) (Engine, error) {
		return &fakeEngine{name: cfg.Name, timeout: 5, weight: 1}, nil
	})

	reg, err := Load(RegistryConfig{Engines: []Config{
		{Name: "a", Engine: "fake", Shortcut: "a"},
		{Name: "b", Engine: "fake", Disabled: true},
	}})
	require.NoError(t, err)

	_, ok := reg.Get("a")
	assert.True(t, ok)
	_, ok = reg.Get("b")
	assert.False(t, ok)
}

func TestLoaderUnknownTypeFails(t *testing.T) {
	_, err := Load(RegistryConfig{Engines: []Config{
		{Name: "x", Engine: "no_such_engine"},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_engine")
}
