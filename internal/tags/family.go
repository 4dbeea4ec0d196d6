// Package tags models bit-packed tag families: named groups of bit
// positions inside one uint32 value, with category/subcategory
// structure and display formatting. The family layout is fixed seed
// data; record tag values are plain integers stored alongside the
// record.
package tags

import "opus/api/internal/bitfield"

// Logic classifies an option within its group.
type Logic string

const (
	LogicCategory    Logic = "category"
	LogicSubcategory Logic = "subcategory"
	LogicToggle      Logic = "toggle"
)

// Option is one selectable tag, bound to a single bit position.
// Subcategories point at their parent category via ParentBit.
type Option struct {
	Bit       uint
	Name      string
	Label     string
	Logic     Logic
	ParentBit int // -1 when the option has no parent
}

// Group is a contiguous bit range inside a family value. Non-optional
// groups are expected to carry a selection on finished records;
// multiselect groups allow several independent bits at once.
type Group struct {
	Name        string
	Label       string
	Icon        string
	Bits        []uint
	Optional    bool
	Multiselect bool
}

// Contains reports whether the bit position belongs to this group.
func (g Group) Contains(bit uint) bool {
	for _, b := range g.Bits {
		if b == bit {
			return true
		}
	}
	return false
}

// Family is one complete tag namespace: its groups and every option.
type Family struct {
	Name    string
	Label   string
	Groups  []Group
	Options []Option
}

// GroupByName finds a group in the family.
func (f Family) GroupByName(name string) (Group, bool) {
	for _, g := range f.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// OptionByBit finds the option bound to a bit position.
func (f Family) OptionByBit(bit uint) (Option, bool) {
	for _, o := range f.Options {
		if o.Bit == bit {
			return o, true
		}
	}
	return Option{}, false
}

// OptionsInGroup lists the options whose bits fall inside the group,
// in bit order.
func (f Family) OptionsInGroup(g Group) []Option {
	var opts []Option
	for _, o := range f.Options {
		if g.Contains(o.Bit) {
			opts = append(opts, o)
		}
	}
	return opts
}

// ActiveOptions lists the options whose bits are set in value.
func (f Family) ActiveOptions(value uint32) []Option {
	var opts []Option
	for _, o := range f.Options {
		if bitfield.Has(value, o.Bit) {
			opts = append(opts, o)
		}
	}
	return opts
}

func bitRange(lo, hi uint) []uint {
	bits := make([]uint, 0, hi-lo+1)
	for b := lo; b <= hi; b++ {
		bits = append(bits, b)
	}
	return bits
}

func cat(bit uint, name, label string) Option {
	return Option{Bit: bit, Name: name, Label: label, Logic: LogicCategory, ParentBit: -1}
}

func sub(bit uint, name, label string, parent uint) Option {
	return Option{Bit: bit, Name: name, Label: label, Logic: LogicSubcategory, ParentBit: int(parent)}
}

func toggle(bit uint, name, label string) Option {
	return Option{Bit: bit, Name: name, Label: label, Logic: LogicToggle, ParentBit: -1}
}

// Dtags is the didactic-model family: four groups of category/
// subcategory pairs filling the whole 32-bit value.
//
// The improvisationstheater option violates the subcategory naming
// convention (its name lacks the freies_spiel_ prefix). The seed keeps
// the historical name; the editor surfaces the violation as a
// diagnostic instead of renaming stored data.
var Dtags = Family{
	Name:  "dtags",
	Label: "Didaktisches Modell",
	Groups: []Group{
		{Name: "spielform", Label: "Spielform", Icon: "🎭", Bits: bitRange(0, 7)},
		{Name: "animiertes_theaterspiel", Label: "Animiertes Theaterspiel", Icon: "🎪", Bits: bitRange(8, 15)},
		{Name: "szenische_themenarbeit", Label: "Szenische Themenarbeit", Icon: "📖", Bits: bitRange(16, 25)},
		{Name: "paedagogische_regie", Label: "Pädagogische Regie", Icon: "🎓", Bits: bitRange(26, 31), Optional: true},
	},
	Options: []Option{
		cat(0, "freies_spiel", "Freies Spiel"),
		sub(1, "improvisationstheater", "Improvisationstheater", 0),
		cat(2, "rollenspiel", "Rollenspiel"),
		sub(3, "rollenspiel_szenisches_spiel", "Szenisches Spiel", 2),
		cat(4, "theater_machen", "Theater machen"),
		sub(5, "theater_machen_stueck_entwickeln", "Stück entwickeln", 4),
		cat(6, "performatives_spiel", "Performatives Spiel"),
		sub(7, "performatives_spiel_tanztheater", "Tanztheater", 6),

		cat(8, "puppen_objekte", "Puppen & Objekte"),
		sub(9, "puppen_objekte_figurentheater", "Figurentheater", 8),
		cat(10, "schattentheater", "Schattentheater"),
		sub(11, "schattentheater_licht_schatten", "Licht & Schatten", 10),
		cat(12, "maskentheater", "Maskentheater"),
		sub(13, "maskentheater_charaktermasken", "Charaktermasken", 12),
		cat(14, "materialtheater", "Materialtheater"),
		sub(15, "materialtheater_objekttheater", "Objekttheater", 14),

		cat(16, "biografisches_theater", "Biografisches Theater"),
		sub(17, "biografisches_theater_lebensgeschichten", "Lebensgeschichten", 16),
		cat(18, "dokumentartheater", "Dokumentartheater"),
		sub(19, "dokumentartheater_recherche_basiert", "Recherche-basiert", 18),
		cat(20, "forum_theater", "Forum Theater"),
		sub(21, "forum_theater_der_unterdr", "Theater der Unterdrückten", 20),
		cat(22, "politisches_theater", "Politisches Theater"),
		sub(23, "politisches_theater_gesellschaftskritik", "Gesellschaftskritik", 22),
		cat(24, "inklusives_theater", "Inklusives Theater"),
		sub(25, "inklusives_theater_diversity", "Diversity Theater", 24),

		cat(26, "theatervermittlung", "Theatervermittlung"),
		sub(27, "theatervermittlung_publikumsgespraech", "Publikumsgespräch", 26),
		cat(28, "inszenierung", "Inszenierung"),
		sub(29, "inszenierung_regie_fuehrung", "Regieführung", 28),
		cat(30, "dramaturgie", "Dramaturgie"),
		sub(31, "dramaturgie_stueckanalyse", "Stückanalyse", 30),
	},
}

// Ttags is the flat topic family: one multiselect toggle group.
var Ttags = Family{
	Name:  "ttags",
	Label: "Themen",
	Groups: []Group{
		{Name: "topics", Label: "Themen", Icon: "🏷️", Bits: bitRange(0, 7), Optional: true, Multiselect: true},
	},
	Options: []Option{
		toggle(0, "democracy", "Demokratie"),
		toggle(1, "environment", "Umwelt"),
		toggle(2, "education", "Bildung"),
		toggle(3, "human_rights", "Menschenrechte"),
		toggle(4, "health", "Gesundheit"),
		toggle(5, "technology", "Technologie"),
		toggle(6, "arts_culture", "Kunst & Kultur"),
		toggle(7, "economy", "Wirtschaft"),
	},
}

// Rtags is the flat resource-kind family.
var Rtags = Family{
	Name:  "rtags",
	Label: "Ressourcen",
	Groups: []Group{
		{Name: "resource", Label: "Ressource", Icon: "📚", Bits: bitRange(0, 3), Optional: true},
	},
	Options: []Option{
		toggle(0, "guide", "Leitfaden"),
		toggle(1, "toolkit", "Werkzeugkasten"),
		toggle(2, "report", "Bericht"),
		toggle(3, "case_study", "Fallstudie"),
	},
}

// Ctags is the classification family used on images and media.
var Ctags = Family{
	Name:  "ctags",
	Label: "Klassifikation",
	Groups: []Group{
		{Name: "age_group", Label: "Altersgruppe", Icon: "👥", Bits: bitRange(0, 3), Optional: true, Multiselect: true},
		{Name: "subject_type", Label: "Motivtyp", Icon: "🖼️", Bits: bitRange(4, 7), Optional: true},
		{Name: "access_level", Label: "Zugriff", Icon: "🔒", Bits: bitRange(8, 9), Optional: true},
		{Name: "quality", Label: "Qualität", Icon: "⭐", Bits: bitRange(10, 11), Optional: true, Multiselect: true},
	},
	Options: []Option{
		toggle(0, "children", "Kinder"),
		toggle(1, "youth", "Jugendliche"),
		toggle(2, "adults", "Erwachsene"),
		toggle(3, "seniors", "Senioren"),
		toggle(4, "photo", "Foto"),
		toggle(5, "illustration", "Illustration"),
		toggle(6, "infographic", "Infografik"),
		toggle(7, "diagram", "Diagramm"),
		toggle(8, "public", "Öffentlich"),
		toggle(9, "restricted", "Eingeschränkt"),
		toggle(10, "featured", "Hervorgehoben"),
		toggle(11, "needs_review", "Prüfung nötig"),
	},
}

var families = []Family{Dtags, Ttags, Rtags, Ctags}

// Families lists every registered family.
func Families() []Family {
	out := make([]Family, len(families))
	copy(out, families)
	return out
}

// FamilyByName resolves a family by its name.
func FamilyByName(name string) (Family, bool) {
	for _, f := range families {
		if f.Name == name {
			return f, true
		}
	}
	return Family{}, false
}
