package tags

import (
	"fmt"
	"strings"

	"opus/api/internal/bitfield"
)

// NamingViolation reports a subcategory whose name does not carry its
// parent category's prefix. Violations are diagnostics for curators;
// they never change behavior or block saving.
type NamingViolation struct {
	TagName        string `json:"tagName"`
	CategoryName   string `json:"categoryName"`
	ExpectedPrefix string `json:"expectedPrefix"`
	Message        string `json:"message"`
}

// Editor is one editing session over a family value. The committed
// value and the in-progress value are held apart; Save moves the edit
// over only when validation passes.
type Editor struct {
	family     Family
	modelValue uint32
	editValue  uint32
	violations []NamingViolation
}

// NewEditor opens a session on the given committed value.
func NewEditor(f Family, value uint32) *Editor {
	return &Editor{family: f, modelValue: value, editValue: value}
}

func (e *Editor) Family() Family     { return e.family }
func (e *Editor) EditValue() uint32  { return e.editValue }
func (e *Editor) ModelValue() uint32 { return e.modelValue }

// IsDirty reports whether the session holds uncommitted changes.
func (e *Editor) IsDirty() bool { return e.editValue != e.modelValue }

// GroupValue extracts a group's bits as a value relative to the
// group's first bit. Unknown groups read as zero.
func (e *Editor) GroupValue(groupName string) uint32 {
	g, ok := e.family.GroupByName(groupName)
	if !ok {
		return 0
	}
	var v uint32
	for _, bit := range g.Bits {
		if bitfield.Has(e.editValue, bit) {
			v |= 1 << (bit - g.Bits[0])
		}
	}
	return v
}

// SetGroupValue replaces a group's bits with the given relative value.
// Bits outside the group are untouched.
func (e *Editor) SetGroupValue(groupName string, value uint32) {
	g, ok := e.family.GroupByName(groupName)
	if !ok {
		return
	}
	v := e.editValue
	for _, bit := range g.Bits {
		v = bitfield.Clear(v, bit)
	}
	for i, bit := range g.Bits {
		if value>>uint(i)&1 == 1 {
			v = bitfield.Set(v, bit)
		}
	}
	e.editValue = v
}

// ClearGroup drops every selection in the group.
func (e *Editor) ClearGroup(groupName string) {
	e.SetGroupValue(groupName, 0)
}

// HasActiveGroup reports whether any bit of the group is set.
func (e *Editor) HasActiveGroup(groupName string) bool {
	return e.GroupValue(groupName) != 0
}

// ActiveGroups lists the names of groups carrying a selection.
func (e *Editor) ActiveGroups() []string {
	var names []string
	for _, g := range e.family.Groups {
		if e.HasActiveGroup(g.Name) {
			names = append(names, g.Name)
		}
	}
	return names
}

// ToggleTag flips one option's bit. In single-select groups setting a
// bit replaces the previous selection.
func (e *Editor) ToggleTag(groupName string, bit uint) {
	g, ok := e.family.GroupByName(groupName)
	if !ok || !g.Contains(bit) {
		return
	}
	if _, ok := e.family.OptionByBit(bit); !ok {
		return
	}

	if bitfield.Has(e.editValue, bit) {
		e.editValue = bitfield.Clear(e.editValue, bit)
		return
	}
	if !g.Multiselect {
		e.ClearGroup(groupName)
	}
	e.editValue = bitfield.Set(e.editValue, bit)
}

// SelectCategory replaces the group's selection with one category.
func (e *Editor) SelectCategory(groupName string, bit uint) {
	g, ok := e.family.GroupByName(groupName)
	if !ok || !g.Contains(bit) {
		return
	}
	opt, ok := e.family.OptionByBit(bit)
	if !ok || opt.Logic != LogicCategory {
		return
	}
	e.ClearGroup(groupName)
	e.editValue = bitfield.Set(e.editValue, bit)
}

// SelectSubcategory replaces the group's selection with a subcategory
// and its parent category together.
func (e *Editor) SelectSubcategory(groupName string, bit uint) {
	g, ok := e.family.GroupByName(groupName)
	if !ok || !g.Contains(bit) {
		return
	}
	opt, ok := e.family.OptionByBit(bit)
	if !ok || opt.Logic != LogicSubcategory {
		return
	}
	parent, ok := e.CategoryForSubcategory(groupName, bit)
	if !ok {
		return
	}
	e.ClearGroup(groupName)
	e.editValue = bitfield.Set(e.editValue, parent.Bit)
	e.editValue = bitfield.Set(e.editValue, bit)
}

// CategoryForSubcategory resolves a subcategory's parent category.
// When the subcategory's name does not start with the parent's name, a
// NamingViolation is recorded on the session; resolution still
// succeeds.
func (e *Editor) CategoryForSubcategory(groupName string, bit uint) (Option, bool) {
	g, ok := e.family.GroupByName(groupName)
	if !ok || !g.Contains(bit) {
		return Option{}, false
	}
	opt, ok := e.family.OptionByBit(bit)
	if !ok || opt.Logic != LogicSubcategory || opt.ParentBit < 0 {
		return Option{}, false
	}
	parent, ok := e.family.OptionByBit(uint(opt.ParentBit))
	if !ok || parent.Logic != LogicCategory {
		return Option{}, false
	}

	if !strings.HasPrefix(opt.Name, parent.Name+"_") {
		e.recordViolation(opt, parent)
	}
	return parent, true
}

func (e *Editor) recordViolation(opt, parent Option) {
	for _, v := range e.violations {
		if v.TagName == opt.Name {
			return
		}
	}
	short := opt.Name
	if i := strings.LastIndex(short, "_"); i >= 0 {
		short = short[i+1:]
	}
	e.violations = append(e.violations, NamingViolation{
		TagName:        opt.Name,
		CategoryName:   parent.Name,
		ExpectedPrefix: parent.Name,
		Message:        fmt.Sprintf("Tag %s muss umbenannt werden: %s > %s", opt.Name, parent.Name, short),
	})
}

// ScanNaming resolves the parent of every active subcategory, which
// records a violation for each misnamed tag in the current selection.
func (e *Editor) ScanNaming() {
	for _, opt := range e.family.ActiveOptions(e.editValue) {
		if opt.Logic != LogicSubcategory {
			continue
		}
		for _, g := range e.family.Groups {
			if g.Contains(opt.Bit) {
				e.CategoryForSubcategory(g.Name, opt.Bit)
				break
			}
		}
	}
}

// NamingViolations returns the diagnostics collected so far.
func (e *Editor) NamingViolations() []NamingViolation {
	out := make([]NamingViolation, len(e.violations))
	copy(out, e.violations)
	return out
}

// ValidateGroup checks one group of the edit value: an empty required
// group is invalid, as is a subcategory set without its parent
// category. Empty optional groups are fine.
func (e *Editor) ValidateGroup(groupName string) bool {
	g, ok := e.family.GroupByName(groupName)
	if !ok {
		return true
	}
	if !e.HasActiveGroup(groupName) {
		return g.Optional
	}
	return !e.groupHasOrphan(g)
}

func (e *Editor) groupHasOrphan(g Group) bool {
	for _, opt := range e.family.OptionsInGroup(g) {
		if opt.Logic != LogicSubcategory || opt.ParentBit < 0 {
			continue
		}
		if bitfield.Has(e.editValue, opt.Bit) && !bitfield.Has(e.editValue, uint(opt.ParentBit)) {
			return true
		}
	}
	return false
}

// ValidationErrors lists what blocks a save. Only groups with a
// selection are checked so a partially edited value stays saveable.
func (e *Editor) ValidationErrors() []string {
	var errs []string
	for _, g := range e.family.Groups {
		if e.HasActiveGroup(g.Name) && e.groupHasOrphan(g) {
			errs = append(errs, fmt.Sprintf("%s has invalid selection", g.Label))
		}
	}
	return errs
}

// IsValid reports whether Save would commit.
func (e *Editor) IsValid() bool {
	return len(e.ValidationErrors()) == 0
}

// Save commits the edit value. With validation errors pending nothing
// changes and the committed value is returned with ok=false.
func (e *Editor) Save() (uint32, bool) {
	if !e.IsValid() {
		return e.modelValue, false
	}
	e.modelValue = e.editValue
	return e.modelValue, true
}

// Cancel reverts the session to the committed value.
func (e *Editor) Cancel() {
	e.editValue = e.modelValue
}

// Reset clears the edit value to zero. The committed value is kept
// until the next Save.
func (e *Editor) Reset() {
	e.editValue = 0
}
