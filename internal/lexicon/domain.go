package lexicon

import "strings"

// Domain is the semantic category an entry belongs to.
type Domain string

const (
	DomainNature     Domain = "Nature"
	DomainSociety    Domain = "Society"
	DomainEmotion    Domain = "Emotion"
	DomainTechnology Domain = "Technology"
	DomainCognition  Domain = "Cognition"
	DomainAction     Domain = "Action"
	DomainQuality    Domain = "Quality"
	DomainGrammar    Domain = "Grammar"
	DomainBody       Domain = "Body"
	DomainObject     Domain = "Object"
	DomainTime       Domain = "Time"
	DomainSpace      Domain = "Space"
)

var knownDomains = []Domain{
	DomainNature, DomainSociety, DomainEmotion, DomainTechnology,
	DomainCognition, DomainAction, DomainQuality, DomainGrammar,
	DomainBody, DomainObject, DomainTime, DomainSpace,
}

// compatibleDomains lists, per compound domain, the root domains it may be built from
// besides its own.
var compatibleDomains = map[Domain][]Domain{
	DomainEmotion: {DomainBody, DomainNature, DomainQuality},
	DomainAction:  {DomainBody, DomainObject, DomainNature},
	DomainQuality: {DomainNature, DomainObject, DomainBody},
}

// KnownDomains returns the fixed domain enumeration in canonical order.
func KnownDomains() []Domain {
	out := make([]Domain, len(knownDomains))
	copy(out, knownDomains)
	return out
}

// ParseDomain resolves s case-insensitively against the enumeration.
func ParseDomain(s string) (Domain, bool) {
	s = strings.TrimSpace(s)
	for _, d := range knownDomains {
		if strings.EqualFold(string(d), s) {
			return d, true
		}
	}
	return Domain(s), false
}

// IsKnown reports whether d belongs to the enumeration.
func (d Domain) IsKnown() bool {
	_, ok := ParseDomain(string(d))
	return ok
}

// CompatibleWith reports whether a compound in domain d may use a root from domain root.
func (d Domain) CompatibleWith(root Domain) bool {
	if strings.EqualFold(string(d), string(root)) {
		return true
	}
	for _, c := range compatibleDomains[canonicalDomain(string(d))] {
		if strings.EqualFold(string(c), string(root)) {
			return true
		}
	}
	return false
}

func canonicalDomain(s string) Domain {
	d, _ := ParseDomain(s)
	return d
}
