// Package perm is the permission oracle for records inside a project.
//
// Every function here is total: it returns a boolean or an enum and never
// an error. A missing or malformed context denies — there is no
// default-allow branch anywhere in this package.
package perm

import (
	"opus/api/internal/status"
)

// ConfigRole is a membership code from the project_members table. It is a
// closed enumeration compared by exact equality, never a combinable mask:
// any unlisted value means no relation.
type ConfigRole int

const (
	RolePartner     ConfigRole = 2
	RoleParticipant ConfigRole = 4
	RoleMember      ConfigRole = 8 // members carry the editor designation
)

// Valid reports whether the code is one of the recognized membership codes.
func (r ConfigRole) Valid() bool {
	switch r {
	case RolePartner, RoleParticipant, RoleMember:
		return true
	default:
		return false
	}
}

// RecordInfo is the record half of a permission context.
type RecordInfo struct {
	ID        int64
	OwnerID   int64
	Status    status.Value
	ProjectID int64
}

// ProjectInfo is the project half of a permission context.
type ProjectInfo struct {
	ID       int64
	OwnerID  int64
	Status   status.Value
	TeamSize int // owner plus members; zero means unknown
}

// MembershipInfo is the acting user's membership row, when one exists.
type MembershipInfo struct {
	ConfigRole ConfigRole
}

// Context carries everything the oracle needs for one decision. Handlers
// build it from the session and database rows; nothing here is ambient.
type Context struct {
	ActingUserID int64
	Record       *RecordInfo
	Project      ProjectInfo
	Membership   *MembershipInfo
}

// ContentDepth is the effective read-detail ceiling.
type ContentDepth string

const (
	DepthNone    ContentDepth = "none"
	DepthSummary ContentDepth = "summary"
	DepthCore    ContentDepth = "core"
	DepthFull    ContentDepth = "full"
)

func (ctx Context) isRecordOwner() bool {
	return ctx.Record != nil && ctx.ActingUserID != 0 && ctx.Record.OwnerID == ctx.ActingUserID
}

func (ctx Context) isProjectOwner() bool {
	return ctx.ActingUserID != 0 && ctx.Project.OwnerID == ctx.ActingUserID
}

func (ctx Context) role() ConfigRole {
	if ctx.Membership == nil || !ctx.Membership.ConfigRole.Valid() {
		return 0
	}
	return ctx.Membership.ConfigRole
}

// HasAnyProjectRole reports whether the user is the project owner or holds
// any recognized membership.
func HasAnyProjectRole(ctx Context) bool {
	return ctx.isProjectOwner() || ctx.role() != 0
}

// CanRead evaluates the read rules in fixed priority order, first match
// wins:
//
//  1. anyone reads a released record in a released (or later) project
//  2. the record's creator always reads
//  3. the project owner always reads
//  4. a member reads once the project is draft or later
//  5. a participant reads once the project is review or later
//  6. a partner reads once the project is confirmed or later
//  7. deny
func CanRead(ctx Context) bool {
	if ctx.isRecordOwner() {
		return true
	}
	if ctx.Record != nil &&
		ctx.Record.Status.Category() >= status.Released &&
		ctx.Project.Status.Category() >= status.Released {
		return true
	}
	if ctx.isProjectOwner() {
		return true
	}
	project := ctx.Project.Status.Category()
	switch ctx.role() {
	case RoleMember:
		return project >= status.Draft
	case RoleParticipant:
		return project >= status.Review
	case RolePartner:
		return project >= status.Confirmed
	}
	return false
}

// GetContentDepth derives the read depth from the matched rule, floored by
// the project-state ceiling. Owners bypass the ceiling.
func GetContentDepth(ctx Context) ContentDepth {
	if ctx.isProjectOwner() || ctx.isRecordOwner() {
		return DepthFull
	}
	if !CanRead(ctx) {
		return DepthNone
	}
	return projectDepth(ctx.Project.Status)
}

func projectDepth(v status.Value) ContentDepth {
	switch project := v.Category(); {
	case project < status.Demo:
		return DepthNone
	case project < status.Draft:
		return DepthSummary
	case project < status.Review:
		return DepthCore
	default:
		return DepthFull
	}
}

// CanEdit applies the write rules: own record, project owner, or a member
// (editor designation) while both project and record are draft or later.
func CanEdit(ctx Context) bool {
	if ctx.isRecordOwner() {
		return true
	}
	if ctx.isProjectOwner() {
		return true
	}
	if ctx.Record == nil {
		return false
	}
	return ctx.role() == RoleMember &&
		ctx.Project.Status.Category() >= status.Draft &&
		ctx.Record.Status.Category() >= status.Draft
}

// CanCreate reports whether the user may create a record in the project:
// the project owner always, otherwise any recognized membership once the
// project is draft or later.
func CanCreate(ctx Context) bool {
	if ctx.isProjectOwner() {
		return true
	}
	return ctx.role() != 0 && ctx.Project.Status.Category() >= status.Draft
}
