package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"opus/api/internal/cache"
	"opus/api/internal/capability"
	"opus/api/internal/config"
	"opus/api/internal/perm"
	"opus/api/internal/status"
	"opus/api/internal/store"
	"opus/api/internal/sysreg"
	"opus/api/internal/tags"
)

// Session identifies the acting user. UserID zero is an anonymous
// visitor, which is a legal caller for every read endpoint.
type Session struct {
	UserID int64
}

func (s Session) Anonymous() bool { return s.UserID == 0 }

type dataStore interface {
	Ping(context.Context) error
	GetUserByID(context.Context, int64) (store.User, error)
	GetProject(context.Context, int64) (store.Project, error)
	GetPost(context.Context, int64) (store.Post, error)
	GetMembership(context.Context, int64, int64) (store.Membership, error)
	UpdatePostStatus(context.Context, int64, uint32, uint32) (bool, error)
	GetTagValue(context.Context, int64, string) (uint32, error)
	SetTagValue(context.Context, int64, string, uint32) error
	LoadConfigRules(context.Context) ([]store.SysregEntry, error)
}

type Service struct {
	cfg   config.Config
	store dataStore
	cache *cache.Cache
	rules *sysreg.Ruleset
}

// New wires the service. The cache is optional; without one every
// lookup is computed fresh.
func New(cfg config.Config, st dataStore, c *cache.Cache) *Service {
	return &Service{cfg: cfg, store: st, cache: c}
}

// Bootstrap loads the packed rule table from the registry and decodes
// it once. A single malformed row aborts startup; a partially decoded
// rule table would answer permission questions wrong.
func (s *Service) Bootstrap(ctx context.Context) error {
	entries, err := s.store.LoadConfigRules(ctx)
	if err != nil {
		return fmt.Errorf("load config rules: %w", err)
	}
	rows := make([]sysreg.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, sysreg.Row{Value: e.Value, Name: e.Name, Description: e.Description})
	}
	rules, err := sysreg.NewRuleset(rows)
	if err != nil {
		return fmt.Errorf("decode config rules: %w", err)
	}
	s.rules = rules
	return nil
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// TransitionSummary explains what a status change means for every
// project role. Answers depend only on the static matrix, so they are
// cached hard.
func (s *Service) TransitionSummary(ctx context.Context, fromRaw, toRaw string) (capability.TransitionSummary, error) {
	from, err := status.Parse(fromRaw)
	if err != nil {
		return capability.TransitionSummary{}, err
	}
	to, err := status.Parse(toRaw)
	if err != nil {
		return capability.TransitionSummary{}, err
	}

	var summary capability.TransitionSummary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, &summary, "summary", from.Name(), to.Name()); err == nil && hit {
			return summary, nil
		}
	}

	summary, err = capability.Summary(from, to)
	if err != nil {
		return capability.TransitionSummary{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, summary, "summary", from.Name(), to.Name())
	}
	return summary, nil
}

// Capabilities answers "what may this relation do with this entity in
// this state" from the decoded rule table.
func (s *Service) Capabilities(ctx context.Context, entityName, statusRaw, relationName string) (sysreg.CapabilitySet, error) {
	if s.rules == nil {
		return sysreg.CapabilitySet{}, domainError(http.StatusServiceUnavailable, "RULES_UNAVAILABLE", "Rule table not loaded", nil)
	}

	entity, ok := sysreg.EntityFromName(entityName)
	if !ok {
		return sysreg.CapabilitySet{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown entity "+entityName, nil)
	}
	value, err := status.Parse(statusRaw)
	if err != nil {
		return sysreg.CapabilitySet{}, err
	}
	state, ok := sysreg.StateOf(value)
	if !ok {
		return sysreg.CapabilitySet{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "status "+value.Name()+" has no lifecycle state", nil)
	}
	relation, ok := sysreg.RelationFromName(relationName)
	if !ok {
		return sysreg.CapabilitySet{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown relation "+relationName, nil)
	}

	var set sysreg.CapabilitySet
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, &set, "cap", entity.Name(), state.Name(), relationName); err == nil && hit {
			return set, nil
		}
	}

	set = s.rules.Capabilities(entity, state, relation)
	if s.cache != nil {
		_ = s.cache.Set(ctx, set, "cap", entity.Name(), state.Name(), relationName)
	}
	return set, nil
}

type roleEntry struct {
	Relation capability.Relation `json:"relation"`
	capability.RoleInfo
}

// StatusTable returns the full status registry: every lifecycle state
// with its layout, plus the project roles the matrix knows.
func (s *Service) StatusTable() map[string]any {
	roles := make([]roleEntry, 0, len(capability.Relations))
	for _, rel := range capability.Relations {
		roles = append(roles, roleEntry{Relation: rel, RoleInfo: capability.Info(rel)})
	}
	return map[string]any{
		"states": capability.States(),
		"roles":  roles,
	}
}

// DescribeRule renders one packed rule value for debugging.
func (s *Service) DescribeRule(raw uint32) map[string]any {
	return map[string]any{
		"value": raw,
		"text":  sysreg.Describe(raw),
	}
}

// permContext assembles the oracle context for one post. A missing
// membership row is a legitimate outcome, not an error.
func (s *Service) permContext(ctx context.Context, session Session, postID int64) (perm.Context, store.Post, error) {
	post, err := s.store.GetPost(ctx, postID)
	if err != nil {
		return perm.Context{}, store.Post{}, err
	}
	project, err := s.store.GetProject(ctx, post.ProjectID)
	if err != nil {
		return perm.Context{}, store.Post{}, fmt.Errorf("load project %d: %w", post.ProjectID, err)
	}

	pctx := perm.Context{
		ActingUserID: session.UserID,
		Record: &perm.RecordInfo{
			ID:        post.ID,
			OwnerID:   post.OwnerID,
			Status:    status.Value(post.Status),
			ProjectID: post.ProjectID,
		},
		Project: perm.ProjectInfo{
			ID:       project.ID,
			OwnerID:  project.OwnerID,
			Status:   status.Value(project.Status),
			TeamSize: project.TeamSize,
		},
	}
	if !session.Anonymous() {
		membership, err := s.store.GetMembership(ctx, project.ID, session.UserID)
		switch {
		case err == nil:
			pctx.Membership = &perm.MembershipInfo{ConfigRole: perm.ConfigRole(membership.ConfigRole)}
		case errors.Is(err, sql.ErrNoRows):
		default:
			return perm.Context{}, store.Post{}, fmt.Errorf("load membership: %w", err)
		}
	}
	return pctx, post, nil
}

// GetPost returns a post shaped by the caller's content depth. Callers
// below summary depth get a 404 so unreadable posts are
// indistinguishable from absent ones.
func (s *Service) GetPost(ctx context.Context, session Session, postID int64) (map[string]any, error) {
	pctx, post, err := s.permContext(ctx, session, postID)
	if err != nil {
		return nil, err
	}

	depth := perm.GetContentDepth(pctx)
	if depth == perm.DepthNone {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}

	payload := map[string]any{
		"id":          post.ID,
		"projectId":   post.ProjectID,
		"title":       post.Title,
		"summary":     post.Summary,
		"status":      status.Value(post.Status).Name(),
		"permissions": perm.Resolve(pctx),
	}
	switch owner, err := s.store.GetUserByID(ctx, post.OwnerID); {
	case err == nil:
		payload["ownerName"] = owner.DisplayName
	case errors.Is(err, sql.ErrNoRows):
		// Orphaned owner row; the post still renders.
	default:
		return nil, fmt.Errorf("load owner %d: %w", post.OwnerID, err)
	}
	if depth == perm.DepthSummary {
		return payload, nil
	}

	payload["body"] = post.Body
	payload["tags"] = map[string]any{
		"dtags": tags.CompactText(tags.Dtags, post.Dtags),
		"ttags": tags.CompactText(tags.Ttags, post.Ttags),
	}
	if depth == perm.DepthCore {
		return payload, nil
	}

	payload["statusValue"] = post.Status
	payload["tagValues"] = map[string]uint32{
		"dtags": post.Dtags,
		"ttags": post.Ttags,
	}
	payload["createdAt"] = post.CreatedAt
	payload["updatedAt"] = post.UpdatedAt
	return payload, nil
}

// TransitionPost moves a post along the lifecycle. The update is a
// compare-and-swap on the status the caller saw; a concurrent editor
// surfaces as a 409 rather than a silent overwrite.
func (s *Service) TransitionPost(ctx context.Context, session Session, postID int64, toRaw string) (map[string]any, error) {
	to, err := status.Parse(toRaw)
	if err != nil {
		return nil, err
	}

	pctx, post, err := s.permContext(ctx, session, postID)
	if err != nil {
		return nil, err
	}
	if perm.GetContentDepth(pctx) == perm.DepthNone {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
	if !perm.CanTransition(pctx, to) {
		return nil, domainError(http.StatusForbidden, "FORBIDDEN", "Transition not permitted", map[string]any{
			"from": status.Value(post.Status).Name(),
			"to":   to.Name(),
		})
	}

	ok, err := s.store.UpdatePostStatus(ctx, post.ID, post.Status, uint32(to))
	if err != nil {
		return nil, fmt.Errorf("update post status: %w", err)
	}
	if !ok {
		return nil, domainError(http.StatusConflict, "STATUS_CONFLICT", "Post status changed concurrently", nil)
	}

	pctx.Record.Status = to
	return map[string]any{
		"id":                   post.ID,
		"status":               to.Name(),
		"statusValue":          uint32(to),
		"availableTransitions": perm.AvailableTransitions(pctx),
	}, nil
}

// GetPostTags returns one tag family of a post: the stored value, the
// rendered texts, and any registry naming violations.
func (s *Service) GetPostTags(ctx context.Context, session Session, postID int64, familyName string) (map[string]any, error) {
	family, ok := tags.FamilyByName(familyName)
	if !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown tag family "+familyName, nil)
	}

	pctx, _, err := s.permContext(ctx, session, postID)
	if err != nil {
		return nil, err
	}
	depth := perm.GetContentDepth(pctx)
	if depth == perm.DepthNone {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
	if depth == perm.DepthSummary {
		return nil, domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
	}

	value, err := s.store.GetTagValue(ctx, postID, familyName)
	if err != nil {
		return nil, err
	}

	editor := tags.NewEditor(family, value)
	editor.ScanNaming()
	active := make([]string, 0)
	for _, opt := range family.ActiveOptions(value) {
		active = append(active, opt.Name)
	}
	return map[string]any{
		"family":           family.Name,
		"label":            family.Label,
		"value":            value,
		"active":           active,
		"compactText":      tags.CompactText(family, value),
		"zoomedText":       tags.ZoomedText(family, value),
		"namingViolations": editor.NamingViolations(),
	}, nil
}

// TagPatch is one edit session against a post's tag family: group
// values to set, expressed relative to each group's lowest bit, and
// groups to clear.
type TagPatch struct {
	Groups map[string]uint32 `json:"groups"`
	Clear  []string          `json:"clear"`
}

// UpdatePostTags applies a tag patch through the editor, so every save
// passes the same category-pair validation the interactive editor
// enforces. Invalid selections come back as a 422 with per-group
// errors; the stored value is untouched.
func (s *Service) UpdatePostTags(ctx context.Context, session Session, postID int64, familyName string, patch TagPatch) (map[string]any, error) {
	family, ok := tags.FamilyByName(familyName)
	if !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown tag family "+familyName, nil)
	}
	for name := range patch.Groups {
		if _, ok := family.GroupByName(name); !ok {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown group "+name, nil)
		}
	}
	for _, name := range patch.Clear {
		if _, ok := family.GroupByName(name); !ok {
			return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown group "+name, nil)
		}
	}

	pctx, _, err := s.permContext(ctx, session, postID)
	if err != nil {
		return nil, err
	}
	if perm.GetContentDepth(pctx) == perm.DepthNone {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
	if !perm.CanEdit(pctx) {
		return nil, domainError(http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
	}

	current, err := s.store.GetTagValue(ctx, postID, familyName)
	if err != nil {
		return nil, err
	}

	editor := tags.NewEditor(family, current)
	for _, name := range patch.Clear {
		editor.ClearGroup(name)
	}
	for name, value := range patch.Groups {
		editor.SetGroupValue(name, value)
	}

	editor.ScanNaming()
	saved, ok := editor.Save()
	if !ok {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Tag selection is invalid", map[string]any{
			"errors": editor.ValidationErrors(),
		})
	}
	if err := s.store.SetTagValue(ctx, postID, familyName, saved); err != nil {
		return nil, err
	}

	return map[string]any{
		"family":           family.Name,
		"value":            saved,
		"compactText":      tags.CompactText(family, saved),
		"namingViolations": editor.NamingViolations(),
	}, nil
}
