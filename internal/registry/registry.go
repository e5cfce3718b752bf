package registry

import "AnimalitoSentinel/internal/model"

// catalogue is the fixed animalito table shared by Guácharo Activo and
// Lotto Activo. Declaration order is the tie-break order everywhere.
var catalogue = []model.Animal{
	{ID: "00", Name: "Ballena", Code: "00", Glyph: "🐋"},
	{ID: "01", Name: "Carnero", Code: "01", Glyph: "🐏"},
	{ID: "02", Name: "Toro", Code: "02", Glyph: "🐂"},
	{ID: "03", Name: "Ciempiés", Code: "03", Glyph: "🐛"},
	{ID: "04", Name: "Alacrán", Code: "04", Glyph: "🦂"},
	{ID: "05", Name: "León", Code: "05", Glyph: "🦁"},
	{ID: "06", Name: "Rana", Code: "06", Glyph: "🐸"},
	{ID: "07", Name: "Perico", Code: "07", Glyph: "🦜"},
	{ID: "08", Name: "Ratón", Code: "08", Glyph: "🐭"},
	{ID: "09", Name: "Águila", Code: "09", Glyph: "🦅"},
	{ID: "10", Name: "Tigre", Code: "10", Glyph: "🐯"},
	{ID: "11", Name: "Gato", Code: "11", Glyph: "🐱"},
	{ID: "12", Name: "Caballo", Code: "12", Glyph: "🐴"},
	{ID: "13", Name: "Mono", Code: "13", Glyph: "🐒"},
	{ID: "14", Name: "Paloma", Code: "14", Glyph: "🕊️"},
	{ID: "15", Name: "Zorro", Code: "15", Glyph: "🦊"},
	{ID: "16", Name: "Oso", Code: "16", Glyph: "🐻"},
	{ID: "17", Name: "Pavo", Code: "17", Glyph: "🦃"},
	{ID: "18", Name: "Burro", Code: "18", Glyph: "🫏"},
	{ID: "19", Name: "Chivo", Code: "19", Glyph: "🐐"},
	{ID: "20", Name: "Cochino", Code: "20", Glyph: "🐷"},
	{ID: "21", Name: "Gallo", Code: "21", Glyph: "🐓"},
	{ID: "22", Name: "Camello", Code: "22", Glyph: "🐪"},
	{ID: "23", Name: "Cebra", Code: "23", Glyph: "🦓"},
	{ID: "24", Name: "Iguana", Code: "24", Glyph: "🦎"},
	{ID: "25", Name: "Gallina", Code: "25", Glyph: "🐔"},
	{ID: "26", Name: "Vaca", Code: "26", Glyph: "🐄"},
	{ID: "27", Name: "Perro", Code: "27", Glyph: "🐶"},
	{ID: "28", Name: "Zamuro", Code: "28", Glyph: "🪶"},
	{ID: "29", Name: "Elefante", Code: "29", Glyph: "🐘"},
	{ID: "30", Name: "Caimán", Code: "30", Glyph: "🐊"},
	{ID: "31", Name: "Lapa", Code: "31", Glyph: "🐹"},
	{ID: "32", Name: "Ardilla", Code: "32", Glyph: "🐿️"},
	{ID: "33", Name: "Pescado", Code: "33", Glyph: "🐟"},
	{ID: "34", Name: "Venado", Code: "34", Glyph: "🦌"},
	{ID: "35", Name: "Jirafa", Code: "35", Glyph: "🦒"},
	{ID: "36", Name: "Culebra", Code: "36", Glyph: "🐍"},
}

// Registry is the canonical catalogue with O(1) lookups by id and code.
type Registry struct {
	entries         []*model.Animal
	byID            map[string]*model.Animal
	byCode          map[string]*model.Animal
	normalizedNames []string // parallel to entries, precomputed for Resolve
}

// New builds the registry from the fixed catalogue.
func New() *Registry {
	r := &Registry{
		entries:         make([]*model.Animal, len(catalogue)),
		byID:            make(map[string]*model.Animal, len(catalogue)),
		byCode:          make(map[string]*model.Animal, len(catalogue)),
		normalizedNames: make([]string, len(catalogue)),
	}
	for i := range catalogue {
		a := &catalogue[i]
		r.entries[i] = a
		r.byID[a.ID] = a
		r.byCode[a.Code] = a
		r.normalizedNames[i] = normalizeName(a.Name)
	}
	return r
}

// Entries returns the catalogue in declaration order. Callers must not mutate.
func (r *Registry) Entries() []*model.Animal { return r.entries }

// Len returns the number of catalogue entries.
func (r *Registry) Len() int { return len(r.entries) }

// ByID looks up an animal by its stable id.
func (r *Registry) ByID(id string) (*model.Animal, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// ByCode looks up an animal by its 2-digit number.
func (r *Registry) ByCode(code string) (*model.Animal, bool) {
	a, ok := r.byCode[code]
	return a, ok
}
