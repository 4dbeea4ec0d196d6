// Package capability holds the per-state, per-relation capability matrix
// for projects and answers what changes between two lifecycle states.
//
// The matrix is fixed configuration, not user data. Bit positions and axis
// orderings are append-only; reassigning a shipped level is a breaking
// change.
package capability

import (
	"strconv"

	"opus/api/internal/status"
)

// Relation is a role a user holds toward a project.
type Relation string

const (
	ProjectOwner   Relation = "p_owner"
	ProjectCreator Relation = "p_creator"
	Member         Relation = "member"
	Participant    Relation = "participant"
	Partner        Relation = "partner"
	Anonym         Relation = "anonym"
)

// Level is a step on one of the ordered capability axes. The zero value is
// LevelNone on every axis.
type Level int

const (
	LevelNone Level = iota
	Level1          // read: summary, update: comment, manage: status
	Level2          // read: content, update: content, manage: members
	Level3          // read: config, update: config, manage: full
)

// Entry is the capability set of one (state, relation) cell.
type Entry struct {
	Read   Level
	Update Level
	Manage Level
	List   bool
	Share  bool
}

// German level descriptions, rendered into gained/lost lines.
var readLevels = [4]string{"Kein Zugriff", "Nur Überschrift & Teaser", "Vollständige Inhalte", "Inhalte + Einstellungen"}
var updateLevels = [4]string{"Keine Bearbeitung", "Nur Kommentare", "Inhalte bearbeiten", "Einstellungen ändern"}
var manageLevels = [4]string{"Keine Verwaltung", "Status ändern", "Team verwalten", "Vollständige Kontrolle"}

// RoleInfo carries the display metadata of a relation.
type RoleInfo struct {
	Icon    string
	Label   string
	LabelDe string
}

var roleInfo = map[Relation]RoleInfo{
	ProjectOwner:   {Icon: "👑", Label: "Owner", LabelDe: "Eigentümer"},
	ProjectCreator: {Icon: "✨", Label: "Creator", LabelDe: "Ersteller"},
	Member:         {Icon: "👤", Label: "Member", LabelDe: "Mitglied"},
	Participant:    {Icon: "👁", Label: "Participant", LabelDe: "Teilnehmer"},
	Partner:        {Icon: "🤝", Label: "Partner", LabelDe: "Partner"},
	Anonym:         {Icon: "🌐", Label: "Public", LabelDe: "Öffentlich"},
}

// Info returns the display metadata of a relation.
func Info(rel Relation) RoleInfo {
	return roleInfo[rel]
}

// Relations lists the relations in presentation order. Anonym is excluded
// from transition summaries but present in the matrix.
var Relations = []Relation{ProjectOwner, ProjectCreator, Member, Participant, Partner}

type row = map[Relation]Entry

var none = Entry{}

var matrix = map[status.Value]row{
	status.New: {
		ProjectOwner:   {Read: Level3, Update: Level3, Manage: Level3, List: true, Share: true},
		ProjectCreator: {Read: Level3, Update: Level3, Manage: Level2, List: true, Share: true},
		Member:         none,
		Participant:    none,
		Partner:        none,
		Anonym:         none,
	},
	status.Demo: {
		ProjectOwner:   {Read: Level3, Update: Level3, Manage: Level3, List: true, Share: true},
		ProjectCreator: {Read: Level2, List: true},
		Member:         {Read: Level2, List: true},
		Participant:    none,
		Partner:        none,
		Anonym:         none,
	},
	status.Draft: {
		ProjectOwner:   {Read: Level3, Update: Level3, Manage: Level3, List: true, Share: true},
		ProjectCreator: {Read: Level3, Update: Level3, Manage: Level2, List: true, Share: true},
		Member:         {Read: Level2, Update: Level2, List: true, Share: true},
		Participant:    {Read: Level1, List: true},
		Partner:        none,
		Anonym:         none,
	},
	status.Confirmed: {
		ProjectOwner:   {Read: Level3, Update: Level3, Manage: Level3, List: true, Share: true},
		ProjectCreator: {Read: Level2, Update: Level2, Manage: Level1, List: true, Share: true},
		Member:         {Read: Level2, Update: Level2, List: true, Share: true},
		Participant:    {Read: Level2, List: true},
		Partner:        {Read: Level2, List: true},
		Anonym:         none,
	},
	status.Released: {
		ProjectOwner:   {Read: Level3, Update: Level3, Manage: Level3, List: true, Share: true},
		ProjectCreator: {Read: Level2, List: true},
		Member:         {Read: Level2, Update: Level2, List: true, Share: true},
		Participant:    {Read: Level2, List: true},
		Partner:        {Read: Level2, List: true},
		Anonym:         {Read: Level2, List: true},
	},
	status.Archived: {
		ProjectOwner:   {Read: Level3, Update: Level3, Manage: Level3, List: true},
		ProjectCreator: {Read: Level2, List: true},
		Member:         {Read: Level2, List: true},
		Participant:    {Read: Level2, List: true},
		Partner:        {Read: Level2, List: true},
		Anonym:         {Read: Level2, List: true},
	},
	status.Trash: {
		ProjectOwner:   {Read: Level3, Manage: Level3, List: true},
		ProjectCreator: none,
		Member:         none,
		Participant:    none,
		Partner:        none,
		Anonym:         none,
	},
}

// Canonical total order for skip/backward classification. Trash sits after
// archived; record-level review (256) is not a project matrix state.
var stateOrder = []status.Value{
	status.New, status.Demo, status.Draft, status.Confirmed,
	status.Released, status.Archived, status.Trash,
}

var layouts = map[status.Value]string{
	status.New:       "stepper",
	status.Demo:      "stepper",
	status.Draft:     "dashboard",
	status.Confirmed: "dashboard",
	status.Released:  "dashboard",
	status.Archived:  "dashboard",
	status.Trash:     "dashboard",
}

var descriptions = map[status.Value]string{
	status.New:       "Projekt ist neu und nur für Owner/Creator sichtbar",
	status.Demo:      "Demo-Phase: Team kann lesen, aber nicht bearbeiten",
	status.Draft:     "Entwurf: Team kann aktiv mitarbeiten",
	status.Confirmed: "Bestätigt: Partner haben Leserechte",
	status.Released:  "Veröffentlicht: Öffentlich sichtbar",
	status.Archived:  "Archiviert: Nur noch lesbar",
	status.Trash:     "Papierkorb: Kann wiederhergestellt werden",
}

// Of looks up the capability entry for a state and relation. The state must
// be one of the project matrix states.
func Of(state status.Value, rel Relation) (Entry, error) {
	row, ok := matrix[state.Category()]
	if !ok {
		return Entry{}, &status.UnknownStateError{Raw: stateRaw(state)}
	}
	return row[rel], nil
}

func stateRaw(state status.Value) string {
	if name := state.Name(); name != "" {
		return name
	}
	return strconv.FormatUint(uint64(state), 10)
}

func orderIndex(state status.Value) int {
	for i, s := range stateOrder {
		if s == state.Category() {
			return i
		}
	}
	return -1
}
