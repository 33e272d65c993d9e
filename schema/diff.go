package schema

import (
	"maps"
	"slices"
)

// Classify compares the top-level fields of original and modified.
//
// A removed field or a field whose "type" changed is breaking; otherwise an
// added field is additive; otherwise the change is none. Only the "type" of
// each field is compared: nested properties, titles and descriptions of a
// field are not inspected. Nil documents and absent properties count as zero
// fields.
//
// Classify is pure and safe for concurrent use.
func Classify(original, modified *Document) ChangeType {
	oldProps := original.properties()
	newProps := modified.properties()

	for _, name := range slices.Sorted(maps.Keys(oldProps)) {
		oldField := oldProps[name]
		newField, ok := newProps[name]
		if !ok {
			return ChangeBreaking
		}
		if !oldField.typ().Equal(newField.typ()) {
			return ChangeBreaking
		}
	}

	for name := range newProps {
		if _, ok := oldProps[name]; !ok {
			return ChangeAdditive
		}
	}

	return ChangeNone
}

// FieldChange describes a field whose type changed.
type FieldChange struct {
	Name string
	From Types
	To   Types
}

// Report lists every top-level field difference between two documents.
// All slices are sorted by field name.
type Report struct {
	Removed []string
	Retyped []FieldChange
	Added   []string
}

// Diff compares the top-level fields of original and modified using the same
// rules as Classify, but collects every difference instead of stopping at the
// first one.
func Diff(original, modified *Document) Report {
	oldProps := original.properties()
	newProps := modified.properties()

	var r Report
	for _, name := range slices.Sorted(maps.Keys(oldProps)) {
		newField, ok := newProps[name]
		if !ok {
			r.Removed = append(r.Removed, name)
			continue
		}
		if from, to := oldProps[name].typ(), newField.typ(); !from.Equal(to) {
			r.Retyped = append(r.Retyped, FieldChange{Name: name, From: from, To: to})
		}
	}
	for _, name := range slices.Sorted(maps.Keys(newProps)) {
		if _, ok := oldProps[name]; !ok {
			r.Added = append(r.Added, name)
		}
	}
	return r
}

// Change returns the classification implied by the report.
func (r Report) Change() ChangeType {
	switch {
	case len(r.Removed) > 0 || len(r.Retyped) > 0:
		return ChangeBreaking
	case len(r.Added) > 0:
		return ChangeAdditive
	default:
		return ChangeNone
	}
}

// Empty reports whether no field differences were found.
func (r Report) Empty() bool {
	return len(r.Removed) == 0 && len(r.Retyped) == 0 && len(r.Added) == 0
}
