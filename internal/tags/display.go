package tags

import (
	"strings"

	"opus/api/internal/bitfield"
)

// CompactText renders a family value as a single line: per active
// group its icon and the selected category labels, groups joined by
// a bullet separator. Subcategories are folded into their category in
// compact form.
func CompactText(f Family, value uint32) string {
	var parts []string
	for _, g := range f.Groups {
		var labels []string
		for _, opt := range f.OptionsInGroup(g) {
			if !bitfield.Has(value, opt.Bit) || opt.Logic == LogicSubcategory {
				continue
			}
			labels = append(labels, opt.Label)
		}
		if len(labels) == 0 {
			continue
		}
		line := strings.Join(labels, ", ")
		if g.Icon != "" {
			line = g.Icon + " " + line
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " • ")
}

// ZoomedText renders the block form: per active group a header line
// with icon and group label, then one bullet per selected option with
// subcategories indented, blank line between groups.
func ZoomedText(f Family, value uint32) string {
	var blocks []string
	for _, g := range f.Groups {
		var lines []string
		for _, opt := range f.OptionsInGroup(g) {
			if !bitfield.Has(value, opt.Bit) {
				continue
			}
			if opt.Logic == LogicSubcategory {
				lines = append(lines, "  • "+opt.Label)
			} else {
				lines = append(lines, "• "+opt.Label)
			}
		}
		if len(lines) == 0 {
			continue
		}
		icon := g.Icon
		if icon == "" {
			icon = "📌"
		}
		blocks = append(blocks, icon+" "+g.Label+"\n"+strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// ActiveGroupCount reports how many groups carry a selection.
func ActiveGroupCount(f Family, value uint32) int {
	n := 0
	for _, g := range f.Groups {
		for _, bit := range g.Bits {
			if bitfield.Has(value, bit) {
				n++
				break
			}
		}
	}
	return n
}
