package adapter

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/wippyai/http-adapter/errors"
	"github.com/wippyai/http-adapter/hostabi"
)

func TestFields_Operations(t *testing.T) {
	s, _ := newTestState(t, hostabi.Request{})

	f := s.NewFields(ctx, []Entry{
		{"accept", "a"},
		{"x-id", "1"},
		{"accept", "b"},
	})

	if got := s.FieldsGet(ctx, f, "accept"); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("get accept = %v", got)
	}
	if got := s.FieldsGet(ctx, f, "Accept"); len(got) != 0 {
		t.Errorf("get is case-sensitive, got %v", got)
	}

	s.FieldsAppend(ctx, f, "x-id", "2")
	s.FieldsSet(ctx, f, "accept", []string{"c"})

	want := []Entry{{"x-id", "1"}, {"x-id", "2"}, {"accept", "c"}}
	if got := s.FieldsEntries(ctx, f); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}

	s.FieldsDelete(ctx, f, "x-id")
	if got := s.FieldsEntries(ctx, f); !reflect.DeepEqual(got, []Entry{{"accept", "c"}}) {
		t.Errorf("entries after delete = %v", got)
	}
	if !s.FieldsHas(ctx, f, "accept") || s.FieldsHas(ctx, f, "x-id") {
		t.Error("FieldsHas mismatch")
	}
}

func TestFields_NewCopiesInput(t *testing.T) {
	s, _ := newTestState(t, hostabi.Request{})

	in := []Entry{{"a", "1"}}
	f := s.NewFields(ctx, in)
	in[0].Value = "changed"

	if got := s.FieldsGet(ctx, f, "a"); got[0] != "1" {
		t.Errorf("collection aliases caller slice: %v", got)
	}

	out := s.FieldsEntries(ctx, f)
	out[0].Value = "mutated"
	if got := s.FieldsGet(ctx, f, "a"); got[0] != "1" {
		t.Errorf("entries result aliases collection: %v", got)
	}
}

func TestFields_CloneIsIndependent(t *testing.T) {
	s, _ := newTestState(t, hostabi.Request{})

	orig := s.NewFields(ctx, []Entry{{"a", "1"}, {"b", "2"}})
	clone := s.FieldsClone(ctx, orig)
	if clone == orig {
		t.Fatal("clone reused handle")
	}

	s.FieldsAppend(ctx, clone, "c", "3")
	s.FieldsSet(ctx, clone, "a", []string{"x"})
	s.FieldsDelete(ctx, clone, "b")

	if got := s.FieldsEntries(ctx, orig); !reflect.DeepEqual(got, []Entry{{"a", "1"}, {"b", "2"}}) {
		t.Errorf("original changed: %v", got)
	}

	s.DropFields(ctx, orig)
	if got := s.FieldsEntries(ctx, clone); len(got) != 2 {
		t.Errorf("clone affected by dropping original: %v", got)
	}
}

func TestFields_DroppedHandleFaults(t *testing.T) {
	s, _ := newTestState(t, hostabi.Request{})
	f := s.NewFields(ctx, nil)
	s.DropFields(ctx, f)

	ops := map[string]func(){
		"get":     func() { s.FieldsGet(ctx, f, "a") },
		"set":     func() { s.FieldsSet(ctx, f, "a", nil) },
		"delete":  func() { s.FieldsDelete(ctx, f, "a") },
		"append":  func() { s.FieldsAppend(ctx, f, "a", "b") },
		"entries": func() { s.FieldsEntries(ctx, f) },
		"clone":   func() { s.FieldsClone(ctx, f) },
		"drop":    func() { s.DropFields(ctx, f) },
		"response": func() {
			_, _ = s.NewOutgoingResponse(ctx, 200, f)
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			e := expectFault(t, op)
			if e.Kind != errors.KindUnknownHandle || e.Phase != errors.PhaseFields {
				t.Errorf("fault = %v", e)
			}
		})
	}
}

// fieldsModel is the ordered-pairs reference for header collections.
type fieldsModel []Entry

func (m fieldsModel) set(name string, values []string) fieldsModel {
	out := m.delete(name)
	for _, v := range values {
		out = append(out, Entry{name, v})
	}
	return out
}

func (m fieldsModel) delete(name string) fieldsModel {
	var out fieldsModel
	for _, e := range m {
		if e.Name != name {
			out = append(out, e)
		}
	}
	return out
}

func (m fieldsModel) get(name string) []string {
	var out []string
	for _, e := range m {
		if e.Name == name {
			out = append(out, e.Value)
		}
	}
	return out
}

func TestFields_MatchesModel(t *testing.T) {
	names := []string{"a", "b", "c", "A"}
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 50; round++ {
		s, _ := newTestState(t, hostabi.Request{})
		f := s.NewFields(ctx, nil)
		var model fieldsModel

		type clone struct {
			h     Fields
			model fieldsModel
		}
		var clones []clone

		for step := 0; step < 40; step++ {
			name := names[rng.IntN(len(names))]
			value := string(rune('0' + rng.IntN(10)))

			switch rng.IntN(5) {
			case 0:
				s.FieldsAppend(ctx, f, name, value)
				model = append(model, Entry{name, value})
			case 1:
				values := []string{value, value + "!"}[:rng.IntN(3)%2+1]
				s.FieldsSet(ctx, f, name, values)
				model = model.set(name, values)
			case 2:
				s.FieldsDelete(ctx, f, name)
				model = model.delete(name)
			case 3:
				if got, want := s.FieldsGet(ctx, f, name), model.get(name); !reflect.DeepEqual(got, want) {
					t.Fatalf("round %d step %d: get %q = %v, want %v", round, step, name, got, want)
				}
			case 4:
				clones = append(clones, clone{h: s.FieldsClone(ctx, f), model: append(fieldsModel(nil), model...)})
			}
		}

		got := s.FieldsEntries(ctx, f)
		if len(got) != len(model) || (len(got) > 0 && !reflect.DeepEqual(got, []Entry(model))) {
			t.Fatalf("round %d: entries = %v, model = %v", round, got, model)
		}
		for _, c := range clones {
			got := s.FieldsEntries(ctx, c.h)
			if len(got) != len(c.model) || (len(got) > 0 && !reflect.DeepEqual(got, []Entry(c.model))) {
				t.Fatalf("round %d: clone %d = %v, want %v", round, c.h, got, c.model)
			}
		}
	}
}
