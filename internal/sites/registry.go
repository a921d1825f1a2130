package sites

// Site describes one retail site as pure data: how to recognize its URLs,
// which URL shapes count as product pages, and how to pull a displayed
// price out of its markup. Adding a site is a table change, not a code
// change.
type Site struct {
	Key string

	// Domains are substring patterns matched against the host (and full
	// URL) of candidate links. A site with no domains can never be
	// identified from a link but may still appear in output as a brand slot.
	Domains []string

	// Marketplace sites use rank-based candidate selection and the stricter
	// brand-relevance filter; brand sites use similarity-based selection.
	Marketplace bool

	// ProductPaths are path substrings of which at least one must appear in
	// a valid product URL. Empty means the generic "≥3 path segments" rule.
	ProductPaths []string

	// PriceSelectors are CSS selectors tried in order when scraping a
	// displayed price. Empty falls back to the generic selector chain.
	PriceSelectors []string

	// RequiresRender routes page fetches through the JS-rendering backend.
	RequiresRender bool
}

// Registry is the ordered site table. Identification respects insertion
// order, so ambiguous patterns must be curated up front.
type Registry struct {
	ordered []Site
	index   map[string]int
}

// NewRegistry builds a registry from an ordered site list.
func NewRegistry(entries []Site) *Registry {
	r := &Registry{index: make(map[string]int, len(entries))}
	for _, s := range entries {
		if _, dup := r.index[s.Key]; dup {
			continue
		}
		r.index[s.Key] = len(r.ordered)
		r.ordered = append(r.ordered, s)
	}
	return r
}

// Lookup returns the site for a key, or nil when unknown.
func (r *Registry) Lookup(key string) *Site {
	i, ok := r.index[key]
	if !ok {
		return nil
	}
	return &r.ordered[i]
}

// IsMarketplace reports whether the key names a marketplace-class site.
func (r *Registry) IsMarketplace(key string) bool {
	s := r.Lookup(key)
	return s != nil && s.Marketplace
}

// MarketplaceKeys returns the marketplace site keys in configured order.
func (r *Registry) MarketplaceKeys() []string {
	var keys []string
	for _, s := range r.ordered {
		if s.Marketplace {
			keys = append(keys, s.Key)
		}
	}
	return keys
}

// PrimaryDomain returns the first configured domain for a site, or "".
func (r *Registry) PrimaryDomain(key string) string {
	s := r.Lookup(key)
	if s == nil || len(s.Domains) == 0 {
		return ""
	}
	return s.Domains[0]
}

// shopifySelectors is the generic Shopify-style selector chain shared by
// most brand storefronts.
var shopifySelectors = []string{
	"span[data-product-price]",
	"span.product__price.on-sale", "div.product__price.on-sale",
	"span.product__price", "div.product__price",
	"span.money", "div.money",
	"span.price-item--sale", "div.price-item--sale",
	"span.price-item--regular", "div.price-item--regular",
	"span.product-price", "div.product-price",
	"span.price", "div.price",
}

// GenericPriceSelectors returns the fallback selector chain for sites with
// no configured selectors.
func GenericPriceSelectors() []string {
	return shopifySelectors
}

// DefaultRegistry returns the curated production site table. Marketplace
// entries come first so their patterns win identification ties.
func DefaultRegistry() *Registry {
	return NewRegistry([]Site{
		{
			Key: "myntra", Domains: []string{"myntra.com"}, Marketplace: true,
			ProductPaths: []string{"/buy", "/p/"},
			PriceSelectors: []string{
				"span.pdp-price", "span.pdp-discount-container",
				"span.product-price", "span.price-value",
			},
		},
		{
			Key: "slikk", Domains: []string{"slikk.club"}, Marketplace: true,
			// Any slikk URL shape is accepted; listings are filtered upstream.
			ProductPaths:   []string{"/"},
			RequiresRender: true,
		},
		{Key: "asian", Domains: []string{"asianfootwears.com"}, ProductPaths: productPaths},
		{Key: "atom"},
		{Key: "avant", Domains: []string{"avantgardeoriginal.com"}, ProductPaths: productPaths},
		{Key: "bad_and_boujee", Domains: []string{"badandboujee.in"}, ProductPaths: productPaths},
		{Key: "bauge", Domains: []string{"baugebags.com"}, ProductPaths: productPaths},
		{Key: "beeglee", Domains: []string{"beeglee.in"}, ProductPaths: productPaths,
			PriceSelectors: []string{
				"span.money", "div.money", "span.sale-price", "div.sale-price",
				"span.price", "div.price", "span.product-price", "div.product-price",
				"span.price-item--sale", "span.price-item--regular",
			}},
		{Key: "bersache", Domains: []string{"bersache.com"}, ProductPaths: productPaths},
		{Key: "bewakoof", Domains: []string{"bewakoof.com"},
			ProductPaths: []string{"/p/", "/product/", "/buy"},
			PriceSelectors: []string{
				"span.productPrice", "div.productPrice",
				"span.discountedPriceText", "div.discountedPriceText",
				"span.sellingPrice", "div.sellingPrice",
				"span.price", "div.price", "span.product-price", "div.product-price",
			}},
		{Key: "blackberrys", Domains: []string{"blackberrys.com"}, ProductPaths: productPaths,
			PriceSelectors: []string{
				"xsale-price", "span.sale-price", "div.sale-price",
				"span.h4.text-subdued", "span.price", "div.price",
				"span.product-price", "div.product-price",
			}},
		{Key: "bummer", Domains: []string{"bummer.in"}, ProductPaths: productPaths},
		{Key: "campus_sutra", Domains: []string{"campussutra.com"}, ProductPaths: productPaths,
			PriceSelectors: []string{
				"span.price", "div.price", "span.money", "div.money",
				"span.product-price", "div.product-price",
				"span.price-item--sale", "span.price-item--regular",
			}},
		{Key: "chapter_2", Domains: []string{"chapter2drip.com"}, ProductPaths: productPaths},
		{Key: "chumbak", Domains: []string{"chumbak.com"}, ProductPaths: productPaths},
		{Key: "chupps", Domains: []string{"chupps.com"}, ProductPaths: productPaths},
		{Key: "color_capital", Domains: []string{"colorcapital.in"}, ProductPaths: productPaths,
			PriceSelectors: []string{
				"span.price-item.price-item--sale.price-item-last",
				"span.price-item--sale", "span.price-item",
				"span.money", "div.money", "span.price", "div.price",
				"span.product-price", "div.product-price",
			}},
		{Key: "crazybee", Domains: []string{"mavinclub.com"}, ProductPaths: productPaths},
		{Key: "cult"},
		{Key: "ecoright", Domains: []string{"ecoright.com"}, ProductPaths: productPaths},
		{Key: "freehand"},
		{Key: "guns_and_sons", Domains: []string{"gunsnsons.com"}, ProductPaths: productPaths},
		{Key: "haute_sauce", Domains: []string{"buyhautesauce.com"}, ProductPaths: productPaths},
		{Key: "highlander"},
		{Key: "indian_garage_co", Domains: []string{"tigc.in"}, ProductPaths: []string{"/products/"}},
		{Key: "jar_gold"},
		{Key: "jockey", Domains: []string{"jockey.in"}, ProductPaths: productPaths,
			PriceSelectors: []string{"span.price-item--sale"}},
		{Key: "just_lil_things", Domains: []string{"justlilthings.in"}, ProductPaths: productPaths},
		{Key: "kedias"},
		{Key: "lancer"},
		{Key: "levis", Domains: []string{"levi.in"},
			ProductPaths: []string{"/products/", "/product/", "/in-en/p/"}},
		{Key: "locomotive"},
		{Key: "main_character", Domains: []string{"maincharacterindia.com"}, ProductPaths: productPaths,
			PriceSelectors: []string{
				"span.price-item.price-item--sale.price-item-last.custom-price",
				"span.price-item--sale", "span.custom-price", "span.price-item",
				"span.money", "div.money", "span.price", "div.price",
				"span.product-price", "div.product-price",
			}},
		{Key: "minute_mirth"},
		{Key: "mydesignation", Domains: []string{"mydesignation.com"}, ProductPaths: []string{"/products/"},
			PriceSelectors: []string{
				"price-money bdi", "span.price__prefix",
				"span.product-price", "div.product-price", "span.price", "div.price",
				"span.selling-price", "span.final-price",
			}},
		{Key: "mywishbag", Domains: []string{"mywishbag.com"}, ProductPaths: productPaths},
		{Key: "nailinit", Domains: []string{"nailin.it"}, ProductPaths: productPaths},
		{Key: "palmonas", Domains: []string{"palmonas.com"}, ProductPaths: productPaths},
		{Key: "pinacolada", Domains: []string{"buypinacolada.com"}, ProductPaths: productPaths,
			PriceSelectors: []string{
				"s.product-price__price", "span.product-price__price", "div.product-price__price",
				"span.product-single__save-amount",
				"span.price", "div.price", "span.product-price", "div.product-price",
			}},
		{Key: "puma", Domains: []string{"in.puma.com", "puma.com"},
			ProductPaths:   []string{"/products/", "/product/", "/in/en/"},
			PriceSelectors: []string{`span[data-test-id="item-price-pdp"]`}},
		{Key: "qissa", Domains: []string{"shopqissa.com"}, ProductPaths: productPaths,
			PriceSelectors: []string{
				"span.price.price--highlight.price--large",
				"span.price.price--highlight", "span.price--highlight",
				"span.price.price--compare", "span.money", "div.money",
				"span.price", "div.price",
			}},
		{Key: "rapidbox", Domains: []string{"rapidbox.in"}, ProductPaths: productPaths},
		{Key: "recast", Domains: []string{"recast.co.in"}, ProductPaths: productPaths},
		{Key: "salty", Domains: []string{"salty.co.in"}, ProductPaths: productPaths},
		{Key: "sassafras", Domains: []string{"sassafras.in"}, ProductPaths: []string{"/products/"}},
		{Key: "silisoul", Domains: []string{"silisoul.com"}, ProductPaths: productPaths},
		{Key: "styli", Domains: []string{"stylishop.com", "styli.in"}, ProductPaths: productPaths},
		{Key: "the_bear_house",
			Domains:      []string{"thebearhouse.com", "bearhouseindia.com", "thebearhouse.in"},
			ProductPaths: productPaths},
		{Key: "the_kurta", Domains: []string{"thekurtacompany.com"}, ProductPaths: productPaths},
		{Key: "theater", Domains: []string{"theater.xyz"}, ProductPaths: productPaths,
			PriceSelectors: []string{
				"span.price-item.price-item--sale.price-item--last",
				"span.price-item--sale", "span.price-item",
				"span.money", "div.money", "span.price", "div.price",
				"span.product-price", "div.product-price",
			}},
		{Key: "thela_gaadi", Domains: []string{"thelagaadi.com"}, ProductPaths: productPaths},
		{Key: "the_souled_store", Domains: []string{"thesouledstore.com"}, ProductPaths: productPaths,
			RequiresRender: true,
			PriceSelectors: []string{
				"span.offer", "span.leftPrice .offer", ".offerPrice", ".price.offer",
			}},
		{Key: "tokyo_talkies"},
		{Key: "untung", Domains: []string{"untung.in"}, ProductPaths: productPaths},
		{Key: "vara_vishudh"},
		{Key: "vishudh"},
		{Key: "xyxx", Domains: []string{"xyxxcrew.com"}, ProductPaths: productPaths},
		{Key: "bearcompany", Domains: []string{"bearcompany.in", "thebearcompany.com"}, ProductPaths: productPaths},
		{Key: "aatmana", Domains: []string{"akshahandmadejewelry.com"}, ProductPaths: productPaths},
		{Key: "technosport", Domains: []string{"technosport.in"}, ProductPaths: productPaths,
			PriceSelectors: []string{"span.m-price-item--sale"}},
		{Key: "veirdo", Domains: []string{"veirdo.in"}, ProductPaths: productPaths,
			PriceSelectors: []string{`span[data-testid="product-price-value"]`}},
	})
}

// productPaths is the standard Shopify product URL shape.
var productPaths = []string{"/products/", "/product/"}
