package lists

import (
	"strings"

	"phishguard/pkg/domain"
	"phishguard/pkg/urlnorm"
)

// Blocklist is the static deny-list oracle. Entries are host names and are
// keyed the same way as every other stage: lowercase, one leading "www."
// removed.
type Blocklist struct {
	domains map[domain.Domain]struct{}
}

// NewBlocklist builds a deny-list from host names. Entries written as URLs
// are accepted too.
func NewBlocklist(hosts []string) *Blocklist {
	b := &Blocklist{domains: make(map[domain.Domain]struct{}, len(hosts))}
	for _, h := range hosts {
		d := canonicalHost(h)
		if d == "" {
			continue
		}
		b.domains[d] = struct{}{}
	}

	return b
}

// Contains reports whether d, or one of its parent domains, is listed.
// Parents are walked down to two labels; a bare TLD never matches.
func (b *Blocklist) Contains(d domain.Domain) bool {
	if b == nil || d == "" {
		return false
	}
	if _, ok := b.domains[d]; ok {
		return true
	}

	rest := string(d)
	for {
		idx := strings.IndexByte(rest, '.')
		if idx < 0 {
			return false
		}
		rest = rest[idx+1:]
		if !strings.Contains(rest, ".") {
			return false
		}
		if _, ok := b.domains[domain.Domain(rest)]; ok {
			return true
		}
	}
}

// Size returns the number of listed domains.
func (b *Blocklist) Size() int {
	if b == nil {
		return 0
	}

	return len(b.domains)
}

func canonicalHost(entry string) domain.Domain {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "://") {
		d, err := urlnorm.Domain(entry)
		if err != nil {
			return ""
		}

		return d
	}
	entry = strings.TrimRight(strings.ToLower(entry), ".")

	return domain.Domain(urlnorm.StripWWW(entry))
}
