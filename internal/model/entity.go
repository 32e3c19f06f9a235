package model

import "strings"

// Roster is the canonical ordered list of the 47 county governments as they
// appear in the report. Order matters: it matches the document's chapter
// ordering, which the locator relies on when computing section end pages.
var Roster = []string{
	"Mombasa", "Kwale", "Kilifi", "Tana River", "Lamu", "Taita Taveta",
	"Garissa", "Wajir", "Mandera", "Marsabit", "Isiolo", "Meru",
	"Tharaka Nithi", "Embu", "Kitui", "Machakos", "Makueni", "Nyandarua",
	"Nyeri", "Kirinyaga", "Murang'a", "Kiambu", "Turkana", "West Pokot",
	"Samburu", "Trans Nzoia", "Uasin Gishu", "Elgeyo Marakwet", "Nandi",
	"Baringo", "Laikipia", "Nakuru", "Narok", "Kajiado", "Kericho", "Bomet",
	"Kakamega", "Vihiga", "Bungoma", "Busia", "Siaya", "Kisumu", "Homa Bay",
	"Migori", "Kisii", "Nyamira", "Nairobi",
}

// qualifierWords are generic qualifiers stripped during normalization so that
// "Mombasa", "Mombasa County" and "County Government of Mombasa" all resolve
// to the same key.
var qualifierWords = []string{"county government of", "government of", "county"}

// Normalize returns the canonical lookup key for a county name: lower-cased,
// generic qualifiers removed, whitespace collapsed. Idempotent:
// Normalize(Normalize(x)) == Normalize(x).
func Normalize(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for _, q := range qualifierWords {
		s = strings.ReplaceAll(s, q, " ")
	}
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalName resolves a free-form county name against the roster.
// Returns the roster spelling and true on a match.
func CanonicalName(name string) (string, bool) {
	key := Normalize(name)
	if key == "" {
		return "", false
	}
	for _, r := range Roster {
		if Normalize(r) == key {
			return r, true
		}
	}
	// Prefix/substring tolerance for truncated or suffixed inputs.
	for _, r := range Roster {
		rk := Normalize(r)
		if strings.HasPrefix(rk, key) || strings.Contains(rk, key) {
			return r, true
		}
	}
	return "", false
}
