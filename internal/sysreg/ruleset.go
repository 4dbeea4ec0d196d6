package sysreg

import (
	"sort"

	"opus/api/internal/status"
)

// Row is one raw sysreg_config record as the store hands it over.
type Row struct {
	Value       uint32
	Name        string
	Description string
}

// Ruleset is the decoded, immutable rule table. Build one at startup
// from the config rows and share it freely; lookups never mutate it.
type Ruleset struct {
	rules []Rule
}

// NewRuleset decodes every row. A single invalid row fails the whole
// load so a bad deploy is caught at startup rather than answered
// wrongly at request time.
func NewRuleset(rows []Row) (*Ruleset, error) {
	rules := make([]Rule, 0, len(rows))
	for _, row := range rows {
		r, err := Decode(row.Value, row.Name, row.Description)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return &Ruleset{rules: rules}, nil
}

// Rules returns the decoded rules in load order.
func (rs *Ruleset) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

func (r Rule) matchesEntity(e Entity) bool {
	return r.Entity == EntityAll || r.Entity == e
}

func (r Rule) matchesState(s State) bool {
	return r.FromState == StateAll || r.FromState == s
}

func (r Rule) matchesRelation(rel RelationMask) bool {
	return r.Relations&rel != 0
}

func (r Rule) grants(cap Capability) bool {
	switch cap {
	case CapRead:
		return r.Read != ReadNone
	case CapUpdate:
		return r.Update != UpdateNone
	case CapManage:
		return r.Manage == ManageFull
	case CapList:
		return r.List
	case CapShare:
		return r.Share
	}
	return false
}

// HasCapability reports whether any rule grants the capability to the
// relation for the entity in the given state. Absence means denial.
func (rs *Ruleset) HasCapability(e Entity, s State, rel RelationMask, cap Capability) bool {
	for _, r := range rs.rules {
		if r.IsTransition() {
			continue
		}
		if r.matchesEntity(e) && r.matchesState(s) && r.matchesRelation(rel) && r.grants(cap) {
			return true
		}
	}
	return false
}

// CanTransition reports whether any transition rule allows the relation
// to move the entity from one state to another.
func (rs *Ruleset) CanTransition(e Entity, from, to State, rel RelationMask) bool {
	if to == StateAll {
		return false
	}
	for _, r := range rs.rules {
		if !r.IsTransition() || r.ToState != to {
			continue
		}
		if r.matchesEntity(e) && r.matchesState(from) && r.matchesRelation(rel) {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the distinct target states the relation may
// move the entity to from the given state, in state-code order.
func (rs *Ruleset) AllowedTransitions(e Entity, from State, rel RelationMask) []State {
	seen := map[State]bool{}
	for _, r := range rs.rules {
		if !r.IsTransition() {
			continue
		}
		if r.matchesEntity(e) && r.matchesState(from) && r.matchesRelation(rel) {
			seen[r.ToState] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	targets := make([]State, 0, len(seen))
	for s := range seen {
		targets = append(targets, s)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	return targets
}

// CapabilitySet aggregates every grant for one entity/state/relation.
type CapabilitySet struct {
	Read        bool     `json:"read"`
	Update      bool     `json:"update"`
	Manage      bool     `json:"manage"`
	List        bool     `json:"list"`
	Share       bool     `json:"share"`
	Transitions []string `json:"transitions"`
}

// Capabilities answers the full grant set in one call, the shape the
// capabilities endpoint serves.
func (rs *Ruleset) Capabilities(e Entity, s State, rel RelationMask) CapabilitySet {
	set := CapabilitySet{
		Read:   rs.HasCapability(e, s, rel, CapRead),
		Update: rs.HasCapability(e, s, rel, CapUpdate),
		Manage: rs.HasCapability(e, s, rel, CapManage),
		List:   rs.HasCapability(e, s, rel, CapList),
		Share:  rs.HasCapability(e, s, rel, CapShare),
	}
	for _, to := range rs.AllowedTransitions(e, s, rel) {
		set.Transitions = append(set.Transitions, to.Name())
	}
	return set
}

// StateOf maps a record-level status value to its rule-table state
// code. Review records fold onto the review code even though the
// capability matrix has no review column.
func StateOf(v status.Value) (State, bool) {
	switch v.Category() {
	case status.New:
		return StateNew, true
	case status.Demo:
		return StateDemo, true
	case status.Draft:
		return StateDraft, true
	case status.Confirmed, status.Released:
		return StateReleased, true
	case status.Archived:
		return StateArchived, true
	case status.Trash:
		return StateTrash, true
	}
	if v&status.Review != 0 {
		return StateReview, true
	}
	return 0, false
}
