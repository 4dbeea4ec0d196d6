// Package sysreg decodes the packed permission-rule rows of the
// sysreg_config table. Each row is one uint32 combining project type,
// entity, from-state, capability levels, an optional to-state and a
// relation mask. Rows are decoded and validated once at load time;
// nothing downstream touches the raw integer again.
package sysreg

import (
	"fmt"
	"strings"

	"opus/api/internal/bitfield"
)

// Field positions inside a packed rule value.
const (
	projectTypeStart = 0
	projectTypeWidth = 3
	entityStart      = 3
	entityWidth      = 5
	fromStateStart   = 8
	fromStateWidth   = 3
	readStart        = 11
	readWidth        = 3
	updateStart      = 14
	updateWidth      = 3
	toStateStart     = 17
	toStateWidth     = 3
	manageStart      = 20
	manageWidth      = 3
	listBit          = 23
	shareBit         = 24
	relationStart    = 25
	relationWidth    = 5
	reservedBit      = 30
	adminBit         = 31
)

// Entity identifies the record kind a rule applies to. Code 0 matches
// every entity.
type Entity uint32

const (
	EntityAll Entity = iota
	EntityProject
	EntityUser
	EntityPage
	EntityPost
	EntityEvent
	EntityImage
	EntityLocation
)

var entityNames = map[Entity]string{
	EntityAll:      "all",
	EntityProject:  "project",
	EntityUser:     "user",
	EntityPage:     "page",
	EntityPost:     "post",
	EntityEvent:    "event",
	EntityImage:    "image",
	EntityLocation: "location",
}

func (e Entity) Name() string {
	if n, ok := entityNames[e]; ok {
		return n
	}
	return fmt.Sprintf("entity(%d)", uint32(e))
}

// EntityFromName resolves a lowercase entity name. "all" and "" both
// mean the wildcard.
func EntityFromName(name string) (Entity, bool) {
	switch strings.ToLower(name) {
	case "", "all":
		return EntityAll, true
	}
	for e, n := range entityNames {
		if n == strings.ToLower(name) {
			return e, true
		}
	}
	return 0, false
}

// State is the 3-bit lifecycle code used inside rule rows. It is a
// compact code, not the record-level status value. Code 0 matches
// every state.
type State uint32

const (
	StateAll State = iota
	StateNew
	StateDemo
	StateDraft
	StateReview
	StateReleased
	StateArchived
	StateTrash
)

var stateNames = map[State]string{
	StateAll:      "all",
	StateNew:      "new",
	StateDemo:     "demo",
	StateDraft:    "draft",
	StateReview:   "review",
	StateReleased: "released",
	StateArchived: "archived",
	StateTrash:    "trash",
}

func (s State) Name() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("state(%d)", uint32(s))
}

// StateFromName resolves a lowercase state name.
func StateFromName(name string) (State, bool) {
	for s, n := range stateNames {
		if n == strings.ToLower(name) {
			return s, true
		}
	}
	return 0, false
}

// RelationMask is the normalized relation set of a rule. The packed
// form stores anonym..creator at bits 25-29 and admin at bit 31;
// decoding folds admin into the mask so callers never reason about
// raw positions.
type RelationMask uint32

const (
	RelAnonym RelationMask = 1 << iota
	RelPartner
	RelParticipant
	RelMember
	RelCreator
	RelAdmin
)

const relAll = RelAnonym | RelPartner | RelParticipant | RelMember | RelCreator | RelAdmin

var relationNames = []struct {
	mask RelationMask
	name string
}{
	{RelAnonym, "anonym"},
	{RelPartner, "partner"},
	{RelParticipant, "participant"},
	{RelMember, "member"},
	{RelCreator, "creator"},
	{RelAdmin, "admin"},
}

// RelationFromName resolves a single relation name to its mask position.
func RelationFromName(name string) (RelationMask, bool) {
	for _, rn := range relationNames {
		if rn.name == strings.ToLower(name) {
			return rn.mask, true
		}
	}
	return 0, false
}

func (m RelationMask) String() string {
	var parts []string
	for _, rn := range relationNames {
		if m&rn.mask != 0 {
			parts = append(parts, rn.name)
		}
	}
	return strings.Join(parts, ",")
}

// Capability levels. Read, update and manage are small enums rather
// than flags; zero always means "not granted".
type ReadLevel uint32

const (
	ReadNone ReadLevel = iota
	ReadFull
	ReadPreview
	ReadMetadata
)

type UpdateLevel uint32

const (
	UpdateNone UpdateLevel = iota
	UpdateFull
	UpdateComment
	UpdateAppend
)

type ManageLevel uint32

const (
	ManageNone ManageLevel = iota
	ManageFull
	ManageStatus
	ManageConfig
	ManageDelete
	ManageArchive
)

// Capability names a queryable grant axis.
type Capability string

const (
	CapRead   Capability = "read"
	CapUpdate Capability = "update"
	CapManage Capability = "manage"
	CapList   Capability = "list"
	CapShare  Capability = "share"
)

// Rule is one decoded sysreg_config row.
type Rule struct {
	Raw         uint32
	Name        string
	Description string

	ProjectType uint32
	Entity      Entity
	FromState   State
	ToState     State
	Read        ReadLevel
	Update      UpdateLevel
	Manage      ManageLevel
	List        bool
	Share       bool
	Relations   RelationMask
}

// IsTransition reports whether the rule grants a status transition.
// Transition rules carry a concrete to-state; capability rules leave
// the field zero.
func (r Rule) IsTransition() bool { return r.ToState != StateAll }

// DecodeError reports a rule row that failed schema validation.
type DecodeError struct {
	Raw   uint32
	Name  string
	Field string
	Code  uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sysreg: rule %q (0x%08x): unknown %s code %d", e.Name, e.Raw, e.Field, e.Code)
}

// Decode validates one packed row against the fixed schema and returns
// its tagged form. Unknown enum codes and set reserved bits are
// rejected here so that lookup code can trust every Rule it sees.
func Decode(raw uint32, name, description string) (Rule, error) {
	fail := func(field string, code uint32) (Rule, error) {
		return Rule{}, &DecodeError{Raw: raw, Name: name, Field: field, Code: code}
	}

	entity := Entity(bitfield.ExtractGroup(raw, entityStart, entityWidth))
	if entity > EntityLocation {
		return fail("entity", uint32(entity))
	}
	read := ReadLevel(bitfield.ExtractGroup(raw, readStart, readWidth))
	if read > ReadMetadata {
		return fail("read level", uint32(read))
	}
	update := UpdateLevel(bitfield.ExtractGroup(raw, updateStart, updateWidth))
	if update > UpdateAppend {
		return fail("update level", uint32(update))
	}
	manage := ManageLevel(bitfield.ExtractGroup(raw, manageStart, manageWidth))
	if manage > ManageArchive {
		return fail("manage level", uint32(manage))
	}
	if bitfield.Has(raw, reservedBit) {
		return fail("reserved bit", reservedBit)
	}

	relations := RelationMask(bitfield.ExtractGroup(raw, relationStart, relationWidth))
	if bitfield.Has(raw, adminBit) {
		relations |= RelAdmin
	}

	return Rule{
		Raw:         raw,
		Name:        name,
		Description: description,
		ProjectType: bitfield.ExtractGroup(raw, projectTypeStart, projectTypeWidth),
		Entity:      entity,
		FromState:   State(bitfield.ExtractGroup(raw, fromStateStart, fromStateWidth)),
		ToState:     State(bitfield.ExtractGroup(raw, toStateStart, toStateWidth)),
		Read:        read,
		Update:      update,
		Manage:      manage,
		List:        bitfield.Has(raw, listBit),
		Share:       bitfield.Has(raw, shareBit),
		Relations:   relations,
	}, nil
}

// Encode packs a rule back into its row form, the inverse of Decode.
// Used by seeds and tests; runtime lookups never re-encode.
func (r Rule) Encode() uint32 {
	var v uint32
	v = bitfield.PackGroup(v, projectTypeStart, projectTypeWidth, r.ProjectType)
	v = bitfield.PackGroup(v, entityStart, entityWidth, uint32(r.Entity))
	v = bitfield.PackGroup(v, fromStateStart, fromStateWidth, uint32(r.FromState))
	v = bitfield.PackGroup(v, readStart, readWidth, uint32(r.Read))
	v = bitfield.PackGroup(v, updateStart, updateWidth, uint32(r.Update))
	v = bitfield.PackGroup(v, toStateStart, toStateWidth, uint32(r.ToState))
	v = bitfield.PackGroup(v, manageStart, manageWidth, uint32(r.Manage))
	if r.List {
		v = bitfield.Set(v, listBit)
	}
	if r.Share {
		v = bitfield.Set(v, shareBit)
	}
	v = bitfield.PackGroup(v, relationStart, relationWidth, uint32(r.Relations&^RelAdmin))
	if r.Relations&RelAdmin != 0 {
		v = bitfield.Set(v, adminBit)
	}
	return v
}

// Describe renders a packed value for debugging and admin tooling.
func Describe(raw uint32) string {
	r, err := Decode(raw, "", "")
	if err != nil {
		return fmt.Sprintf("invalid rule 0x%08x: %v", raw, err)
	}

	parts := []string{
		"entity=" + r.Entity.Name(),
		"from=" + r.FromState.Name(),
	}
	if r.IsTransition() {
		parts = append(parts, "to="+r.ToState.Name())
	}

	var caps []string
	if r.Read != ReadNone {
		caps = append(caps, "read")
	}
	if r.Update != UpdateNone {
		caps = append(caps, "update")
	}
	switch r.Manage {
	case ManageFull:
		caps = append(caps, "manage")
	case ManageStatus:
		caps = append(caps, "status")
	case ManageConfig:
		caps = append(caps, "config")
	case ManageDelete:
		caps = append(caps, "delete")
	case ManageArchive:
		caps = append(caps, "archive")
	}
	if r.List {
		caps = append(caps, "list")
	}
	if r.Share {
		caps = append(caps, "share")
	}
	if len(caps) > 0 {
		parts = append(parts, "caps=["+strings.Join(caps, ",")+"]")
	}
	if r.Relations != 0 {
		parts = append(parts, "rels=["+r.Relations.String()+"]")
	}
	return strings.Join(parts, " | ")
}
