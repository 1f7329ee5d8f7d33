package adapter

import (
	"context"
	"slices"

	"github.com/wippyai/http-adapter/resource"
)

// Header collection operations. Names are compared exactly as stored.

// NewFields creates a collection holding a copy of entries.
// new-fields: func(entries: list<tuple<string,string>>) -> fields
func (s *State) NewFields(_ context.Context, entries []Entry) Fields {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Fields(s.fields.Insert(slices.Clone(entries)))
}

// FieldsGet returns every value stored under name, in insertion order.
// fields-get: func(fields: fields, name: string) -> list<string>
func (s *State) FieldsGet(_ context.Context, f Fields, name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var values []string
	for _, e := range s.fields.Get(resource.Handle(f)) {
		if e.Name == name {
			values = append(values, e.Value)
		}
	}
	return values
}

// FieldsHas reports whether any entry is stored under name.
func (s *State) FieldsHas(_ context.Context, f Fields, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.ContainsFunc(s.fields.Get(resource.Handle(f)), func(e Entry) bool {
		return e.Name == name
	})
}

// FieldsSet removes every entry for name and appends values in order.
// fields-set: func(fields: fields, name: string, values: list<string>)
func (s *State) FieldsSet(_ context.Context, f Fields, name string, values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := resource.Handle(f)
	entries := withoutName(s.fields.Get(h), name)
	for _, v := range values {
		entries = append(entries, Entry{Name: name, Value: v})
	}
	s.fields.Replace(h, entries)
}

// FieldsDelete removes every entry for name.
// fields-delete: func(fields: fields, name: string)
func (s *State) FieldsDelete(_ context.Context, f Fields, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := resource.Handle(f)
	s.fields.Replace(h, withoutName(s.fields.Get(h), name))
}

// FieldsAppend adds one entry after all existing ones.
// fields-append: func(fields: fields, name: string, value: string)
func (s *State) FieldsAppend(_ context.Context, f Fields, name, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := resource.Handle(f)
	s.fields.Replace(h, append(s.fields.Get(h), Entry{Name: name, Value: value}))
}

// FieldsEntries returns a copy of all entries in order.
// fields-entries: func(fields: fields) -> list<tuple<string,string>>
func (s *State) FieldsEntries(_ context.Context, f Fields) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.fields.Get(resource.Handle(f)))
}

// FieldsClone creates an independent copy of f.
// fields-clone: func(fields: fields) -> fields
func (s *State) FieldsClone(_ context.Context, f Fields) Fields {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := slices.Clone(s.fields.Get(resource.Handle(f)))
	return Fields(s.fields.Insert(entries))
}

// DropFields removes f.
// drop-fields: func(fields: fields)
func (s *State) DropFields(_ context.Context, f Fields) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fields.Remove(resource.Handle(f))
}

// withoutName returns a fresh slice of entries not named name.
func withoutName(entries []Entry, name string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return out
}
