// Package resolver maps free-text labels from source tables onto canonical
// registry entries.
package resolver

import (
	"strings"

	"smartbizmap.kr/internal/registry"
)

// MatchKind reports which rule produced a resolution.
type MatchKind int

const (
	None MatchKind = iota
	Exact
	Alias
	Substring
)

func (k MatchKind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Alias:
		return "alias"
	case Substring:
		return "substring"
	default:
		return "none"
	}
}

type key struct {
	match  string
	target string
}

// table is one resolution domain: canonical names plus an ordered alias list.
// Keys are normalised labels and compare case-sensitively.
type table struct {
	canonical map[string]string
	aliases   map[string]string
	// scan is the substring fallback order: aliases as declared, then
	// canonical names in registry order.
	scan []key
}

func newTable(names []string, aliases []registry.Alias) table {
	t := table{
		canonical: make(map[string]string, len(names)),
		aliases:   make(map[string]string, len(aliases)),
	}
	for _, a := range aliases {
		k := registry.NormalizeLabel(a.Key)
		if _, dup := t.aliases[k]; !dup {
			t.aliases[k] = a.Target
		}
		t.scan = append(t.scan, key{match: k, target: a.Target})
	}
	for _, n := range names {
		k := registry.NormalizeLabel(n)
		t.canonical[k] = n
		t.scan = append(t.scan, key{match: k, target: n})
	}
	return t
}

func (t table) resolve(label string) (string, MatchKind) {
	k := registry.NormalizeLabel(label)
	if k == "" {
		return "", None
	}
	if name, ok := t.canonical[k]; ok {
		return name, Exact
	}
	if name, ok := t.aliases[k]; ok {
		return name, Alias
	}
	for _, s := range t.scan {
		if strings.Contains(k, s.match) || strings.Contains(s.match, k) {
			return s.target, Substring
		}
	}
	return "", None
}

// Resolver is safe for concurrent use.
type Resolver struct {
	reg        *registry.Registry
	geo        table
	industries table
}

func New(reg *registry.Registry) *Resolver {
	entities := reg.Entities()
	geoNames := make([]string, len(entities))
	for i, e := range entities {
		geoNames[i] = e.Name
	}
	industries := reg.Industries()
	industryNames := make([]string, len(industries))
	for i, ind := range industries {
		industryNames[i] = ind.CanonicalName
	}

	return &Resolver{
		reg:        reg,
		geo:        newTable(geoNames, reg.AreaAliases()),
		industries: newTable(industryNames, reg.IndustryAliases()),
	}
}

// ResolveGeo maps a dong or commercial-area label to a geo entity.
func (r *Resolver) ResolveGeo(label string) (registry.GeoEntity, MatchKind) {
	name, kind := r.geo.resolve(label)
	if kind == None {
		return registry.GeoEntity{}, None
	}
	e, ok := r.reg.EntityByName(name)
	if !ok {
		return registry.GeoEntity{}, None
	}
	return e, kind
}

// ResolveIndustry maps an industry label to its canonical record.
func (r *Resolver) ResolveIndustry(label string) (registry.IndustryRecord, MatchKind) {
	name, kind := r.industries.resolve(label)
	if kind == None {
		return registry.IndustryRecord{}, None
	}
	ind, ok := r.reg.Industry(name)
	if !ok {
		return registry.IndustryRecord{}, None
	}
	return ind, kind
}
