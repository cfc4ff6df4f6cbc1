// Package lists holds the two curated collections consulted before the
// remote model: the allow-list of trusted sites and the deny-list of known
// phishing domains. Both are loaded once at startup and never mutated.
package lists

import (
	"phishguard/pkg/domain"
	"phishguard/pkg/urlnorm"
)

// Whitelist is the curated allow-list. Entries are URLs; matching is exact
// domain equality so a trusted site never vouches for its subdomains.
type Whitelist struct {
	domains map[domain.Domain]struct{}
	skipped int
}

// NewWhitelist normalizes every entry once. Entries that fail to normalize
// are skipped.
func NewWhitelist(entries []string) *Whitelist {
	w := &Whitelist{domains: make(map[domain.Domain]struct{}, len(entries))}
	for _, e := range entries {
		d, err := urlnorm.Domain(e)
		if err != nil {
			w.skipped++

			continue
		}
		w.domains[d] = struct{}{}
	}

	return w
}

// Contains reports whether d equals the domain of any entry.
func (w *Whitelist) Contains(d domain.Domain) bool {
	if w == nil {
		return false
	}
	_, ok := w.domains[d]

	return ok
}

// Size returns the number of distinct whitelisted domains.
func (w *Whitelist) Size() int {
	if w == nil {
		return 0
	}

	return len(w.domains)
}

// Skipped returns how many entries could not be normalized.
func (w *Whitelist) Skipped() int {
	if w == nil {
		return 0
	}

	return w.skipped
}
