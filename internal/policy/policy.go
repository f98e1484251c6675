// Package policy decides, per request and per object, whether an actor may
// perform an action. Decisions are pure functions of the actor, the action
// and the resource owner; no ambient request state is consulted.
package policy

import (
	"github.com/google/uuid"

	"lifehub/internal/model"
	"lifehub/pkg/apperror"
)

// Actor is the authenticated or anonymous entity issuing a request.
type Actor struct {
	ID   uuid.UUID
	Role model.Role

	authenticated bool
}

func NewActor(id uuid.UUID, role model.Role) Actor {
	return Actor{ID: id, Role: role, authenticated: true}
}

func Anonymous() Actor {
	return Actor{Role: model.RoleUser}
}

func (a Actor) Authenticated() bool {
	return a.authenticated
}

func (a Actor) IsAdmin() bool {
	return a.authenticated && a.Role == model.RoleAdmin
}

// CanCreate gates mutating creation; any authenticated actor may create.
func CanCreate(actor Actor) error {
	if !actor.Authenticated() {
		return apperror.ErrUnauthorized
	}
	return nil
}

// CanModify gates update/partial-update/destroy on an owned resource.
// Admins may modify anything; otherwise the actor must be the owner.
// Anonymous actors get an authentication error, not an ownership one.
func CanModify(actor Actor, ownerID uuid.UUID) error {
	if !actor.Authenticated() {
		return apperror.ErrUnauthorized
	}
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if actor.ID == ownerID {
		return nil
	}
	return apperror.ErrForbidden
}

// RequireAdmin gates mutation of reference data (tags, ingredients), which
// has no owner.
func RequireAdmin(actor Actor) error {
	if !actor.Authenticated() {
		return apperror.ErrUnauthorized
	}
	if actor.Role != model.RoleAdmin {
		return apperror.ErrForbidden
	}
	return nil
}

// LinkScope names the visibility filter a repository must apply when listing
// links. The policy mandates the filter; the repository applies it.
type LinkScope int

const (
	// ScopeAll exposes every link.
	ScopeAll LinkScope = iota
	// ScopePublicOrOwn exposes public links plus the actor's own.
	ScopePublicOrOwn
	// ScopePublicOnly exposes public links only.
	ScopePublicOnly
)

func LinkListScope(actor Actor) LinkScope {
	switch {
	case actor.IsAdmin():
		return ScopeAll
	case actor.Authenticated():
		return ScopePublicOrOwn
	default:
		return ScopePublicOnly
	}
}

// CanViewLink reports whether the link is visible to the actor at all.
// A false result must surface as not-found, never as forbidden, so private
// links do not leak their existence.
func CanViewLink(actor Actor, link *model.Link) bool {
	if link.IsPublic {
		return true
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.Authenticated() && actor.ID == link.OwnerID
}
