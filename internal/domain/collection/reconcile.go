package collection

import (
	"errors"
	"strings"
)

// Update is one proposed field write from a payload, in payload order
type Update struct {
	Name  string
	Value any
}

// Updates is an ordered list of proposed writes
type Updates []Update

// Get returns the raw value for name and whether it was present
func (u Updates) Get(name string) (any, bool) {
	for _, upd := range u {
		if upd.Name == name {
			return upd.Value, true
		}
	}
	return nil, false
}

// GetString returns the value for name rendered as trimmed text. Missing,
// null and non-scalar values yield "".
func (u Updates) GetString(name string) string {
	raw, ok := u.Get(name)
	if !ok {
		return ""
	}
	s, ok := scalarText(raw)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Field describes one reconcilable attribute of T. Get and Set are plain
// accessors so the eligible set is fixed at compile time.
type Field[T any] struct {
	Name            string
	Kind            ValueKind
	NullableOnEmpty bool
	Get             func(*T) Value
	Set             func(*T, Value)
}

// FieldSet is the closed set of fields eligible for reconciliation on T
type FieldSet[T any] struct {
	byName map[string]Field[T]
	order  []string
}

// NewFieldSet builds a set from field descriptors. Duplicate names panic
// since they can only come from a programming error.
func NewFieldSet[T any](fields ...Field[T]) FieldSet[T] {
	s := FieldSet[T]{
		byName: make(map[string]Field[T], len(fields)),
		order:  make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		if _, dup := s.byName[f.Name]; dup {
			panic("collection: duplicate field " + f.Name)
		}
		s.byName[f.Name] = f
		s.order = append(s.order, f.Name)
	}
	return s
}

// Lookup returns the descriptor for name
func (s FieldSet[T]) Lookup(name string) (Field[T], bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Contains reports whether name is eligible
func (s FieldSet[T]) Contains(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Names returns field names in declaration order
func (s FieldSet[T]) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Subset returns a set restricted to names. Unknown names panic.
func (s FieldSet[T]) Subset(names ...string) FieldSet[T] {
	fields := make([]Field[T], 0, len(names))
	for _, name := range names {
		f, ok := s.byName[name]
		if !ok {
			panic("collection: unknown field " + name)
		}
		fields = append(fields, f)
	}
	return NewFieldSet(fields...)
}

// Change records one applied write
type Change struct {
	Field string
	Old   Value
	New   Value
}

// ReconcileResult is the outcome of one reconciliation pass
type ReconcileResult struct {
	// Applied lists effective writes in payload order
	Applied []Change
	// Faults lists values that were skipped because they did not parse
	Faults []*ParseFault
}

// Changed reports whether at least one field was written
func (r ReconcileResult) Changed() bool {
	return len(r.Applied) > 0
}

// Fields returns the names of written fields
func (r ReconcileResult) Fields() []string {
	names := make([]string, len(r.Applied))
	for i, c := range r.Applied {
		names[i] = c.Field
	}
	return names
}

// Net collapses repeated writes to one change per field, running from the
// first old value to the last new value. Fields that ended where they
// started are dropped.
func (r ReconcileResult) Net() []Change {
	index := make(map[string]int, len(r.Applied))
	net := make([]Change, 0, len(r.Applied))
	for _, c := range r.Applied {
		if i, ok := index[c.Field]; ok {
			net[i].New = c.New
			continue
		}
		index[c.Field] = len(net)
		net = append(net, c)
	}
	out := net[:0]
	for _, c := range net {
		if !c.Old.Equal(c.New) {
			out = append(out, c)
		}
	}
	return out
}

// Merge appends the changes and faults of other
func (r *ReconcileResult) Merge(other ReconcileResult) {
	r.Applied = append(r.Applied, other.Applied...)
	r.Faults = append(r.Faults, other.Faults...)
}

// Reconcile applies updates to target, writing only eligible fields whose
// normalized value differs from the current one. Unknown names and null
// values are skipped. An empty string clears a nullable-on-empty field.
// Values that do not parse leave the field untouched and are reported in
// Faults.
func Reconcile[T any](target *T, updates Updates, eligible FieldSet[T]) ReconcileResult {
	var result ReconcileResult
	for _, upd := range updates {
		field, ok := eligible.Lookup(upd.Name)
		if !ok || upd.Value == nil {
			continue
		}

		next, err := normalize(field, upd.Value)
		if err != nil {
			var pf *ParseFault
			if errors.As(err, &pf) {
				pf.Field = field.Name
				result.Faults = append(result.Faults, pf)
			}
			continue
		}

		current := field.Get(target)
		if current.Equal(next) {
			continue
		}
		field.Set(target, next)
		result.Applied = append(result.Applied, Change{Field: field.Name, Old: current, New: next})
	}
	return result
}

func normalize[T any](field Field[T], raw any) (Value, error) {
	if s, isString := raw.(string); isString && s == "" {
		if field.NullableOnEmpty {
			return NullOf(field.Kind), nil
		}
		if field.Kind == DateValue {
			return Value{}, ErrDateAbsent
		}
	}
	return Coerce(field.Kind, raw)
}
