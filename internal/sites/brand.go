package sites

import "strings"

// brandSiteAliases maps squashed brand names (lower-cased, separators
// removed) to their canonical site key. Curated from catalog data; the
// same storefront often appears under several brand spellings.
var brandSiteAliases = map[string]string{
	"asian": "asian", "asianfootwear": "asian", "asianfootwears": "asian",
	"atom":  "atom",
	"avant": "avant", "avantgarde": "avant", "avantgardeoriginal": "avant",
	"badboujee": "bad_and_boujee", "badandboujee": "bad_and_boujee", "bad&boujee": "bad_and_boujee",
	"bauge": "bauge", "baugebags": "bauge",
	"beeglee":  "beeglee",
	"bersache": "bersache",
	"bewakoof": "bewakoof", "bwkf": "bewakoof",
	"blackberrys": "blackberrys", "blackberry": "blackberrys",
	"bummer":      "bummer",
	"campussutra": "campus_sutra", "campus": "campus_sutra",
	"chapter2": "chapter_2", "chaptertwo": "chapter_2",
	"chumbak":      "chumbak",
	"chupps":       "chupps",
	"colorcapital": "color_capital",
	"crazybee":     "crazybee", "mavinclub": "crazybee", "mavin": "crazybee",
	"cult":     "cult",
	"ecoright": "ecoright",
	"freehand": "freehand",
	"gunsandsons": "guns_and_sons", "gunssons": "guns_and_sons",
	"gunsnsons": "guns_and_sons", "guns&sons": "guns_and_sons",
	"hautesauce": "haute_sauce",
	"highlander": "highlander",
	"jargold":    "jar_gold",
	"jockey":     "jockey",
	"justlilthings": "just_lil_things",
	"kedias":        "kedias",
	"lancer":        "lancer",
	"levis":         "levis", "levi": "levis", "levi's": "levis",
	"locomotive":    "locomotive",
	"maincharacter": "main_character",
	"minutemirth":   "minute_mirth",
	"mydesignation": "mydesignation", "designation": "mydesignation",
	"mywishbag":     "mywishbag",
	"nailinit":      "nailinit",
	"palmonas":      "palmonas",
	"pinacolada":    "pinacolada",
	"puma":          "puma",
	"qissa":         "qissa",
	"rapidbox":      "rapidbox",
	"recast":        "recast",
	"salty":         "salty",
	"sassafras": "sassafras", "sassafrasbasics": "sassafras", "sassafrasworklyf": "sassafras",
	"masclnsassafras": "sassafras", "mascln": "sassafras", "masclnbysassafras": "sassafras",
	"shaebysassafras": "sassafras", "shae": "sassafras", "shaesassafras": "sassafras",
	"pinkpaprikabysassafras": "sassafras", "pinkpaprika": "sassafras", "pinkpaprikasassafras": "sassafras",
	"silisoul": "silisoul",
	"styli":    "styli", "stylishop": "styli",
	"bearhouse": "the_bear_house", "thebearhouse": "the_bear_house",
	"bearhouseindia": "the_bear_house", "thebearhouseindia": "the_bear_house",
	"bearcompany": "bearcompany", "thebearcompany": "bearcompany", "bearco": "bearcompany",
	"indiangarageco": "indian_garage_co", "indiangaragecompany": "indian_garage_co",
	"theindiangaragecompany": "indian_garage_co", "theindiangaragecom": "indian_garage_co",
	"theindiangarageco": "indian_garage_co", "theindiangarage": "indian_garage_co",
	"tigc":     "indian_garage_co",
	"thekurta": "the_kurta", "thekurtacompany": "the_kurta", "kurta": "the_kurta",
	"theater": "theater", "theatre": "theater",
	"thelagaadi":     "thela_gaadi",
	"thesouledstore": "the_souled_store", "souledstore": "the_souled_store", "tss": "the_souled_store",
	"tokyotalkies": "tokyo_talkies",
	"untung":       "untung",
	"varabyvishudh": "vara_vishudh", "vara": "vara_vishudh", "vishudh": "vishudh",
	"xyxx": "xyxx", "xyxxcrew": "xyxx",
	"aatmana":     "aatmana",
	"technosport": "technosport",
	"veirdo":      "veirdo",
}

// brandFamilies maps a key fragment of the target brand to additional
// accepted title synonyms for the brand-relevance filter.
var brandFamilies = map[string][]string{
	"asian":         {"asian", "asian footwear", "asianfootwears"},
	"avant":         {"avant", "avant garde", "avantgarde"},
	"bad boujee":    {"bad boujee", "bad and boujee", "bad & boujee"},
	"bewakoof":      {"bewakoof", "bwkf"},
	"blackberry":    {"blackberrys", "blackberry"},
	"campus":        {"campussutra", "campus sutra", "campus"},
	"chapter":       {"chapter2", "chapter 2", "chapter two"},
	"crazybee":      {"crazybee", "mavin", "mavinclub"},
	"ecoright":      {"ecoright", "eco right"},
	"freehand":      {"freehand", "free hand"},
	"guns":          {"guns", "sons", "gunsnsons", "guns & sons", "guns and sons"},
	"levis":         {"levis", "levi", "levi's"},
	"main character": {"main character", "maincharacter"},
	"mydesignation": {"mydesignation", "my designation", "designation"},
	"mywishbag":     {"mywishbag", "my wish bag"},
	"nailinit":      {"nailinit", "nail in it"},
	"pinacolada":    {"pinacolada", "pina colada"},
	"rapidbox":      {"rapidbox", "rapid box"},
	"sassafras":     {"sassafras", "mascln", "shae", "pink paprika", "sassafras basics", "sassafras worklyf"},
	"styli":         {"styli", "stylishop"},
	"bear": {"bear", "bearhouse", "bear house", "thebearhouse", "the bear house",
		"bearcompany", "bear company", "thebearcompany", "the bear company"},
	"indian garage": {"indiangarage", "indian garage", "tigc", "the indian garage co"},
	"kurta":         {"kurta", "the kurta", "the kurta company"},
	"theater":       {"theater", "theatre"},
	"thela":         {"thela gaadi", "thelagaadi"},
	"souled store":  {"souled store", "the souled store", "tss", "the souled store official"},
	"vara":          {"vara", "vishudh", "vara by vishudh"},
	"xyxx":          {"xyxx", "xyxx crew"},
	"aatmana":       {"aatmana", "aksha handmade jewelry", "aksha"},
	"technosport":   {"technosport"},
	"veirdo":        {"veirdo"},
}

// squashBrand lower-cases a brand name and strips spaces, hyphens and
// underscores so alias lookup tolerates spelling variants.
func squashBrand(brand string) string {
	s := strings.ToLower(brand)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// BrandSite maps a free-text brand name to its storefront site key.
// Returns "" when the brand has no configured site.
func (r *Registry) BrandSite(brand string) string {
	if brand == "" {
		return ""
	}
	squashed := squashBrand(brand)
	if key, ok := brandSiteAliases[squashed]; ok {
		if r.Lookup(key) != nil {
			return key
		}
	}
	// The sassafras family sells sub-brands under one storefront.
	for _, fragment := range []string{"sassafras", "mascln", "shae", "paprika"} {
		if strings.Contains(squashed, fragment) {
			if r.Lookup("sassafras") != nil {
				return "sassafras"
			}
			return ""
		}
	}
	return ""
}

// BrandVariations generates the accepted brand spellings for the
// brand-relevance filter: the name itself under separator normalization,
// the name with "the" removed, plus any curated family synonyms.
// Variations of 2 characters or fewer are dropped to avoid false positives.
func BrandVariations(brand string) []string {
	if brand == "" {
		return nil
	}
	target := strings.ToLower(brand)
	set := map[string]bool{
		target:                               true,
		strings.ReplaceAll(target, " ", ""):  true,
		strings.ReplaceAll(target, " ", "-"): true,
		strings.ReplaceAll(target, " ", "_"): true,
	}

	spaced := strings.ReplaceAll(strings.ReplaceAll(target, "-", " "), "_", " ")
	words := strings.Fields(spaced)
	if len(words) > 1 {
		var kept []string
		for _, w := range words {
			if w != "the" {
				kept = append(kept, w)
			}
		}
		withoutThe := strings.Join(kept, " ")
		if withoutThe == "" {
			withoutThe = target
		}
		set[withoutThe] = true
		set[strings.ReplaceAll(withoutThe, " ", "")] = true
	}

	for fragment, synonyms := range brandFamilies {
		if strings.Contains(target, fragment) {
			for _, syn := range synonyms {
				set[syn] = true
			}
		}
	}

	var out []string
	for v := range set {
		if len(v) > 2 {
			out = append(out, v)
		}
	}
	return out
}
