package capability

import (
	"strings"

	"opus/api/internal/status"
)

// Change lists what one relation gains and loses in a transition.
type Change struct {
	Relation Relation `json:"relation"`
	Icon     string   `json:"icon"`
	Label    string   `json:"label"`
	LabelDe  string   `json:"labelDe"`
	Gained   []string `json:"gainedCapabilities"`
	Lost     []string `json:"lostCapabilities"`
}

// StateInfo describes one lifecycle state for display.
type StateInfo struct {
	Value       status.Value `json:"value"`
	Name        string       `json:"name"`
	Label       string       `json:"label"`
	Layout      string       `json:"layout"`
	Description string       `json:"description"`
}

// Transition classifies a state change against the canonical order.
type Transition struct {
	IsSkip       bool
	IsBackward   bool
	LayoutChange bool
}

// TransitionSummary is the full answer of the transition-summary endpoint.
type TransitionSummary struct {
	FromState    StateInfo `json:"fromState"`
	ToState      StateInfo `json:"toState"`
	Changes      []Change  `json:"changes"`
	LayoutChange bool      `json:"layoutChange"`
	IsSkip       bool      `json:"isSkip"`
	IsBackward   bool      `json:"isBackward"`
}

// Diff compares the capability entries of two states for one relation.
// Swapping from and to swaps the gained and lost sets item for item.
func Diff(from, to status.Value, rel Relation) (Change, error) {
	fromEntry, err := Of(from, rel)
	if err != nil {
		return Change{}, err
	}
	toEntry, err := Of(to, rel)
	if err != nil {
		return Change{}, err
	}
	return diffEntries(fromEntry, toEntry, rel), nil
}

func diffEntries(from, to Entry, rel Relation) Change {
	info := roleInfo[rel]
	change := Change{
		Relation: rel,
		Icon:     info.Icon,
		Label:    info.Label,
		LabelDe:  info.LabelDe,
		Gained:   []string{},
		Lost:     []string{},
	}

	diffAxis := func(fromLevel, toLevel Level, axis string, labels [4]string) {
		if toLevel > fromLevel {
			change.Gained = append(change.Gained, axis+": "+labels[toLevel])
		} else if toLevel < fromLevel {
			change.Lost = append(change.Lost, axis+": "+labels[fromLevel]+" → "+labels[toLevel])
		}
	}
	diffAxis(from.Read, to.Read, "Lesen", readLevels)
	diffAxis(from.Update, to.Update, "Bearbeiten", updateLevels)
	diffAxis(from.Manage, to.Manage, "Verwaltung", manageLevels)

	if !from.List && to.List {
		change.Gained = append(change.Gained, "Auflistung in Übersichten")
	} else if from.List && !to.List {
		change.Lost = append(change.Lost, "Auflistung in Übersichten")
	}
	if !from.Share && to.Share {
		change.Gained = append(change.Gained, "Teilen erlaubt")
	} else if from.Share && !to.Share {
		change.Lost = append(change.Lost, "Teilen nicht mehr erlaubt")
	}
	return change
}

// SummaryLine renders a one-line German digest of a change.
func (c Change) SummaryLine() string {
	switch {
	case len(c.Gained) > 0 && len(c.Lost) == 0:
		return "Erhält: " + strings.Join(c.Gained, ", ")
	case len(c.Lost) > 0 && len(c.Gained) == 0:
		return "Verliert: " + strings.Join(c.Lost, ", ")
	case len(c.Gained) > 0:
		return "Änderungen in beide Richtungen"
	default:
		return "Keine Änderung"
	}
}

// Classify answers skip/backward/layout questions for a transition. Both
// states must be matrix states.
func Classify(from, to status.Value) (Transition, error) {
	if _, ok := matrix[from.Category()]; !ok {
		return Transition{}, &status.UnknownStateError{Raw: stateRaw(from)}
	}
	if _, ok := matrix[to.Category()]; !ok {
		return Transition{}, &status.UnknownStateError{Raw: stateRaw(to)}
	}
	fromIdx := orderIndex(from)
	toIdx := orderIndex(to)
	delta := toIdx - fromIdx
	return Transition{
		IsSkip:       delta > 1 || delta < -1,
		IsBackward:   delta < 0,
		LayoutChange: layouts[from.Category()] != layouts[to.Category()],
	}, nil
}

// State returns the display info of a matrix state.
func State(v status.Value) (StateInfo, error) {
	cat := v.Category()
	if _, ok := matrix[cat]; !ok {
		return StateInfo{}, &status.UnknownStateError{Raw: stateRaw(v)}
	}
	name := cat.Name()
	return StateInfo{
		Value:       cat,
		Name:        name,
		Label:       strings.ToUpper(name),
		Layout:      layouts[cat],
		Description: descriptions[cat],
	}, nil
}

// Summary computes the full transition summary between two states: the
// per-relation capability changes (relations without changes are dropped)
// plus the layout/skip/backward classification.
func Summary(from, to status.Value) (TransitionSummary, error) {
	fromInfo, err := State(from)
	if err != nil {
		return TransitionSummary{}, err
	}
	toInfo, err := State(to)
	if err != nil {
		return TransitionSummary{}, err
	}

	changes := make([]Change, 0, len(Relations))
	for _, rel := range Relations {
		change, err := Diff(from, to, rel)
		if err != nil {
			return TransitionSummary{}, err
		}
		if len(change.Gained) > 0 || len(change.Lost) > 0 {
			changes = append(changes, change)
		}
	}

	transition, err := Classify(from, to)
	if err != nil {
		return TransitionSummary{}, err
	}
	return TransitionSummary{
		FromState:    fromInfo,
		ToState:      toInfo,
		Changes:      changes,
		LayoutChange: transition.LayoutChange,
		IsSkip:       transition.IsSkip,
		IsBackward:   transition.IsBackward,
	}, nil
}

// States lists all matrix states in canonical order.
func States() []StateInfo {
	infos := make([]StateInfo, 0, len(stateOrder))
	for _, v := range stateOrder {
		info, _ := State(v)
		infos = append(infos, info)
	}
	return infos
}
