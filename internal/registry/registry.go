package registry

// Registry bundles the canonical tables. It is immutable after construction
// and safe for concurrent use.
type Registry struct {
	entities        []GeoEntity
	entityByID      map[string]int
	entityByName    map[string]int
	industries      []IndustryRecord
	industryByName  map[string]int
	areaAliases     []Alias
	industryAliases []Alias
	overrides       *Overrides
}

// New builds the registry from the built-in tables and the given overrides.
// A nil overrides table behaves as an empty one.
func New(overrides *Overrides) *Registry {
	if overrides == nil {
		overrides = &Overrides{Version: "none"}
	}
	r := &Registry{
		entities:        buildEntities(),
		industries:      append([]IndustryRecord(nil), industrySeeds...),
		areaAliases:     append([]Alias(nil), areaAliases...),
		industryAliases: append([]Alias(nil), industryAliases...),
		overrides:       overrides,
	}
	r.entityByID = make(map[string]int, len(r.entities))
	r.entityByName = make(map[string]int, len(r.entities))
	for i, e := range r.entities {
		r.entityByID[e.ID] = i
		r.entityByName[e.Name] = i
	}
	r.industryByName = make(map[string]int, len(r.industries))
	for i, ind := range r.industries {
		r.industryByName[ind.CanonicalName] = i
	}
	return r
}

// Entities returns all geo entities in canonical order.
func (r *Registry) Entities() []GeoEntity {
	return append([]GeoEntity(nil), r.entities...)
}

func (r *Registry) Entity(id string) (GeoEntity, bool) {
	i, ok := r.entityByID[id]
	if !ok {
		return GeoEntity{}, false
	}
	return r.entities[i], true
}

func (r *Registry) EntityByName(name string) (GeoEntity, bool) {
	i, ok := r.entityByName[name]
	if !ok {
		return GeoEntity{}, false
	}
	return r.entities[i], true
}

func (r *Registry) Industries() []IndustryRecord {
	return append([]IndustryRecord(nil), r.industries...)
}

func (r *Registry) Industry(name string) (IndustryRecord, bool) {
	i, ok := r.industryByName[name]
	if !ok {
		return IndustryRecord{}, false
	}
	return r.industries[i], true
}

// IndustriesIn returns the industries of one category in canonical order.
func (r *Registry) IndustriesIn(c Category) []IndustryRecord {
	var out []IndustryRecord
	for _, ind := range r.industries {
		if ind.Category == c {
			out = append(out, ind)
		}
	}
	return out
}

// CategoryOf returns the category of an industry, CategoryOther if unknown.
func (r *Registry) CategoryOf(industry string) Category {
	if ind, ok := r.Industry(industry); ok {
		return ind.Category
	}
	return CategoryOther
}

func (r *Registry) AreaAliases() []Alias {
	return append([]Alias(nil), r.areaAliases...)
}

func (r *Registry) IndustryAliases() []Alias {
	return append([]Alias(nil), r.industryAliases...)
}

func (r *Registry) Overrides() *Overrides {
	return r.overrides
}
