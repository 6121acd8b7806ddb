package contract

import (
	"slices"
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
)

// mountOrder sorts paths concrete first, then templated, each by canonical
// shape. Two templates of the same shape are either duplicates (same text)
// or an ambiguous hierarchy (different placeholder names); both are
// INVALID_SPEC.
func mountOrder(paths []*Path) ([]*Path, error) {
	var concrete, templated []*Path
	for _, p := range paths {
		if p.Template.Templated() {
			templated = append(templated, p)
		} else {
			concrete = append(concrete, p)
		}
	}

	slices.SortFunc(concrete, func(a, b *Path) int {
		return strings.Compare(a.String(), b.String())
	})
	for i := 1; i < len(concrete); i++ {
		if concrete[i-1].String() == concrete[i].String() {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, at("paths", concrete[i].String()), "duplicate path %s", concrete[i])
		}
	}

	slices.SortFunc(templated, func(a, b *Path) int {
		if c := strings.Compare(a.Template.Canonical(), b.Template.Canonical()); c != 0 {
			return c
		}
		return strings.Compare(a.String(), b.String())
	})
	for i := 1; i < len(templated); i++ {
		prev, cur := templated[i-1], templated[i]
		if prev.Template.Canonical() != cur.Template.Canonical() {
			continue
		}
		if prev.String() == cur.String() {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, at("paths", cur.String()), "duplicate path %s", cur)
		}
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, at("paths", cur.String()),
			"ambiguous path hierarchy: %s and %s differ only in placeholder names", prev, cur)
	}

	return append(concrete, templated...), nil
}

// at builds a JSON pointer into the document.
func at(parts ...string) string {
	var b strings.Builder
	b.WriteByte('#')
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1"))
	}
	return b.String()
}
