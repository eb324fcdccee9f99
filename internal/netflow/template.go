package netflow

// FieldSpecifier is one (type, length) pair inside a template.
type FieldSpecifier struct {
	Type   uint16
	Length uint16
}

// TemplateStore maps template IDs to ordered field layouts for a single
// probe. Template IDs are only unique within one exporter's template space,
// so every probe owns its own store and no synchronization is needed.
// Entries never expire: a template lives for the lifetime of the probe, and
// a re-announced ID replaces the previous layout wholesale.
type TemplateStore struct {
	templates map[uint16][]FieldSpecifier
}

// NewTemplateStore returns an empty store.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{templates: make(map[uint16][]FieldSpecifier)}
}

// Upsert records the field layout for a template ID, replacing any previous
// layout under the same ID.
func (s *TemplateStore) Upsert(id uint16, fields []FieldSpecifier) {
	s.templates[id] = fields
}

// Lookup returns the field layout registered for a template ID.
func (s *TemplateStore) Lookup(id uint16) ([]FieldSpecifier, bool) {
	fields, ok := s.templates[id]
	return fields, ok
}

// Len returns the number of distinct template IDs seen so far. There is no
// upper bound; the status API exposes this count so growth can be watched.
func (s *TemplateStore) Len() int {
	return len(s.templates)
}
