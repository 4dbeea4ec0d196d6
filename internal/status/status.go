// Package status defines the record/project lifecycle states and the fixed
// bidirectional mapping between status values and canonical names.
//
// A status value is a packed uint32: each lifecycle category owns a small
// bit range (base value plus subcategory variants), and independent scope
// toggle bits sit above all category ranges. Category ranges and scope bits
// never overlap; bit positions are append-only and must never be reassigned.
package status

import (
	"fmt"
	"strconv"

	"opus/api/internal/bitfield"
)

// Value is a packed lifecycle status.
type Value uint32

// Primary lifecycle states. Each constant is the base value of its
// category's bit range.
const (
	New       Value = 1      // bits 0-2
	Demo      Value = 8      // bits 3-5
	Draft     Value = 64     // bits 6-8
	Review    Value = 256    // draft range variant (bit 8)
	Confirmed Value = 512    // bits 9-11
	Released  Value = 4096   // bits 12-14
	Archived  Value = 32768  // bit 15
	Trash     Value = 65536  // bit 16
)

// Scope toggle bits, orthogonal to the category ranges.
const (
	ScopeTeam    uint = 24
	ScopeLogin   uint = 25
	ScopeProject uint = 26
	ScopeRegion  uint = 27
	ScopePublic  uint = 28
)

// categoryMask covers all category bit ranges; everything above is scope
// or reserved.
const categoryMask uint32 = 1<<17 - 1

// UnknownStateError reports a status value or name that does not resolve
// to a known lifecycle state.
type UnknownStateError struct {
	Raw string
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("unknown status: %s", e.Raw)
}

var names = map[Value]string{
	New:       "new",
	Demo:      "demo",
	Draft:     "draft",
	Review:    "draft_review",
	Confirmed: "confirmed",
	Released:  "released",
	Archived:  "archived",
	Trash:     "trash",
}

var values = map[string]Value{
	"new":          New,
	"demo":         Demo,
	"draft":        Draft,
	"draft_review": Review,
	"review":       Review, // accepted alias
	"confirmed":    Confirmed,
	"released":     Released,
	"archived":     Archived,
	"trash":        Trash,
}

// Name returns the canonical name, or "" when the value is not a known state.
func (v Value) Name() string {
	return names[v.Category()]
}

// Known reports whether v resolves to a known lifecycle state.
func (v Value) Known() bool {
	_, ok := names[v.Category()]
	return ok
}

// Category strips scope bits, leaving only the lifecycle category bits.
func (v Value) Category() Value {
	return v & Value(categoryMask)
}

// HasScope reports whether the given scope toggle bit is set.
func (v Value) HasScope(bit uint) bool {
	return bitfield.Has(uint32(v), bit)
}

// WithScope returns v with the given scope toggle set or cleared. Category
// bits are untouched.
func (v Value) WithScope(bit uint, on bool) Value {
	if on {
		return Value(bitfield.Set(uint32(v), bit))
	}
	return Value(bitfield.Clear(uint32(v), bit))
}

// FromName resolves a canonical state name.
func FromName(name string) (Value, error) {
	if v, ok := values[name]; ok {
		return v, nil
	}
	return 0, &UnknownStateError{Raw: name}
}

// Parse accepts either a numeric status value or a canonical name, the two
// forms the query endpoints take.
func Parse(raw string) (Value, error) {
	if raw == "" {
		return 0, &UnknownStateError{Raw: raw}
	}
	if n, err := strconv.ParseUint(raw, 10, 32); err == nil {
		v := Value(n)
		if !v.Known() {
			return 0, &UnknownStateError{Raw: raw}
		}
		return v.Category(), nil
	}
	return FromName(raw)
}
