package sites

import "testing"

func TestBrandSite(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name  string
		brand string
		want  string
	}{
		{name: "direct alias", brand: "Bewakoof", want: "bewakoof"},
		{name: "alias with separators", brand: "the-bear-house", want: "the_bear_house"},
		{name: "spelling variant", brand: "Levi's", want: "levis"},
		{name: "sassafras sub-brand", brand: "MASCLN SASSAFRAS", want: "sassafras"},
		{name: "sassafras family fallback", brand: "Pink Paprika Luxe", want: "sassafras"},
		{name: "unknown brand", brand: "Totally Unknown Brand", want: ""},
		{name: "empty brand", brand: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.BrandSite(tt.brand); got != tt.want {
				t.Errorf("BrandSite(%q) = %q, want %q", tt.brand, got, tt.want)
			}
		})
	}
}

func TestBrandVariations(t *testing.T) {
	t.Run("includes separator variants", func(t *testing.T) {
		got := toSet(BrandVariations("Campus Sutra"))
		for _, want := range []string{"campus sutra", "campussutra", "campus-sutra", "campus_sutra"} {
			if !got[want] {
				t.Errorf("variations missing %q: %v", want, got)
			}
		}
	})

	t.Run("removes leading the", func(t *testing.T) {
		got := toSet(BrandVariations("The Souled Store"))
		if !got["souled store"] {
			t.Errorf("variations missing \"souled store\": %v", got)
		}
	})

	t.Run("includes family synonyms", func(t *testing.T) {
		got := toSet(BrandVariations("MASCLN SASSAFRAS"))
		for _, want := range []string{"mascln", "shae", "pink paprika"} {
			if !got[want] {
				t.Errorf("variations missing family synonym %q: %v", want, got)
			}
		}
	})

	t.Run("drops short variations", func(t *testing.T) {
		for _, v := range BrandVariations("The Souled Store") {
			if len(v) <= 2 {
				t.Errorf("variation %q is too short to be safe", v)
			}
		}
	})

	t.Run("empty brand yields nothing", func(t *testing.T) {
		if got := BrandVariations(""); got != nil {
			t.Errorf("BrandVariations(\"\") = %v, want nil", got)
		}
	})
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
