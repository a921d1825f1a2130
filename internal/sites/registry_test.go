package sites

import "testing"

func TestNewRegistry(t *testing.T) {
	t.Run("preserves insertion order", func(t *testing.T) {
		r := NewRegistry([]Site{
			{Key: "b", Marketplace: true},
			{Key: "a", Marketplace: true},
		})
		keys := r.MarketplaceKeys()
		if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
			t.Errorf("MarketplaceKeys() = %v, want [b a]", keys)
		}
	})

	t.Run("drops duplicate keys keeping the first", func(t *testing.T) {
		r := NewRegistry([]Site{
			{Key: "x", Domains: []string{"first.com"}},
			{Key: "x", Domains: []string{"second.com"}},
		})
		if got := r.PrimaryDomain("x"); got != "first.com" {
			t.Errorf("PrimaryDomain = %q, want first.com", got)
		}
	})
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	t.Run("marketplaces come first", func(t *testing.T) {
		keys := r.MarketplaceKeys()
		if len(keys) != 2 || keys[0] != "myntra" || keys[1] != "slikk" {
			t.Errorf("MarketplaceKeys() = %v, want [myntra slikk]", keys)
		}
	})

	t.Run("lookup of unknown key returns nil", func(t *testing.T) {
		if r.Lookup("nope") != nil {
			t.Error("Lookup of unknown key should return nil")
		}
	})

	t.Run("render sites are flagged", func(t *testing.T) {
		for _, key := range []string{"slikk", "the_souled_store"} {
			site := r.Lookup(key)
			if site == nil || !site.RequiresRender {
				t.Errorf("site %s should require rendering", key)
			}
		}
	})

	t.Run("primary domain of a site without domains is empty", func(t *testing.T) {
		if got := r.PrimaryDomain("cult"); got != "" {
			t.Errorf("PrimaryDomain(cult) = %q, want empty", got)
		}
	})
}
