package binding

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScan is the reference first-match scan Resolve must agree with.
func manualScan(chord, domain string, l List) (Binding, bool) {
	for i := 0; i < len(l); i++ {
		if l[i].Key != chord {
			continue
		}
		if l[i].Domain != "" && l[i].Domain != domain {
			continue
		}
		return l[i], true
	}
	return Binding{}, false
}

func TestResolveMatchesManualScan(t *testing.T) {
	chords := []string{"K", "Ctrl+K", "Ctrl+Enter", "Alt+F1"}
	domains := []string{"", "example.com", "other.com"}

	rng := rand.New(rand.NewSource(42))
	for _, size := range []int{0, 1, 2, 5, 25} {
		for round := 0; round < 20; round++ {
			list := make(List, size)
			for i := range list {
				list[i] = Binding{
					Selector: fmt.Sprintf("#el-%d", i),
					Key:      chords[rng.Intn(len(chords))],
					Domain:   domains[rng.Intn(len(domains))],
				}
			}

			for _, c := range chords {
				for _, d := range domains[1:] {
					got, gotOK := Resolve(c, d, list)
					want, wantOK := manualScan(c, d, list)
					require.Equal(t, wantOK, gotOK, "size=%d chord=%s domain=%s", size, c, d)
					require.Equal(t, want, got, "size=%d chord=%s domain=%s", size, c, d)
				}
			}
		}
	}
}

func TestResolveDomainScoping(t *testing.T) {
	scoped := List{{Selector: "#a", Key: "K", Domain: "example.com"}}

	_, ok := Resolve("K", "example.com", scoped)
	assert.True(t, ok)
	_, ok = Resolve("K", "other.com", scoped)
	assert.False(t, ok, "domain-scoped binding must not match elsewhere")

	global := List{{Selector: "#a", Key: "K"}}
	_, ok = Resolve("K", "example.com", global)
	assert.True(t, ok)
	_, ok = Resolve("K", "other.com", global)
	assert.True(t, ok)
}

func TestResolveFirstMatchWins(t *testing.T) {
	list := List{
		{Selector: "#global", Key: "K"},
		{Selector: "#scoped", Key: "K", Domain: "example.com"},
	}
	got, ok := Resolve("K", "example.com", list)
	require.True(t, ok)
	assert.Equal(t, "#global", got.Selector)
}

func TestResolveEmptyChordNeverMatchesUnassignedSlots(t *testing.T) {
	list := List{{Selector: "#a", Key: ""}}
	_, ok := Resolve("", "example.com", list)
	assert.False(t, ok)
}

func TestUpsert(t *testing.T) {
	base := List{
		{Selector: "#one", Key: "Ctrl+1", Domain: "example.com"},
		{Selector: "#two", Key: "Ctrl+2"},
	}

	t.Run("identical pair replaces in place", func(t *testing.T) {
		out, replaced := Upsert(base, Binding{Selector: "#new", Key: "Ctrl+1", Domain: "example.com"})
		assert.True(t, replaced)
		require.Len(t, out, 2)
		assert.Equal(t, "#new", out[0].Selector)
		assert.Equal(t, "#one", base[0].Selector, "input list must not be modified")
	})

	t.Run("same key different domain appends", func(t *testing.T) {
		out, replaced := Upsert(base, Binding{Selector: "#new", Key: "Ctrl+1", Domain: "other.com"})
		assert.False(t, replaced)
		require.Len(t, out, 3)
		assert.Equal(t, "#new", out[2].Selector)
	})

	t.Run("novel pair on empty list", func(t *testing.T) {
		out, replaced := Upsert(nil, Binding{Selector: "#x", Key: "K"})
		assert.False(t, replaced)
		assert.Len(t, out, 1)
	})
}

func TestFillEmptySlot(t *testing.T) {
	list := List{
		{Selector: "#a", Key: "A"},
		{Selector: "", Key: "B"},
		{Selector: "", Key: "C"},
	}

	out, idx := FillEmptySlot(list, Binding{Selector: "#new", Domain: "example.com"})
	assert.Equal(t, 1, idx)
	require.Len(t, out, 3)
	assert.Equal(t, Binding{Selector: "#new", Domain: "example.com"}, out[1])
	assert.Equal(t, "", list[1].Selector)

	full := List{{Selector: "#a"}}
	out, idx = FillEmptySlot(full, Binding{Selector: "#b"})
	assert.Equal(t, 1, idx)
	assert.Len(t, out, 2)
}

func TestChordsFor(t *testing.T) {
	list := List{
		{Selector: "", Key: "Ctrl+1"},
		{Selector: "#a", Key: "Ctrl+1"},
		{Selector: "#b", Key: "Ctrl+2", Domain: "other.com"},
		{Selector: "#c", Key: "Ctrl+3", Domain: "example.com"},
		{Selector: "#d", Key: ""},
		{Selector: "#e", Key: "Ctrl+3"},
	}
	assert.Equal(t, []string{"Ctrl+3"}, ChordsFor("example.com", list))
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Ctrl+K on example.com clicks #go", Binding{Selector: "#go", Key: "Ctrl+K", Domain: "example.com"}.Describe())
	assert.Equal(t, "no key on all sites clicks .btn", Binding{Selector: ".btn"}.Describe())
}

func TestResolveIndexPointsAtFirstDuplicate(t *testing.T) {
	l := List{
		{Selector: "#a", Key: "Ctrl+K"},
		{Selector: "#a", Key: "Ctrl+K"},
	}
	assert.Equal(t, 0, ResolveIndex("Ctrl+K", "example.com", l))
	assert.Equal(t, -1, ResolveIndex("Ctrl+J", "example.com", l))
	assert.Equal(t, -1, ResolveIndex("", "example.com", List{{Selector: "#a"}}))
}
