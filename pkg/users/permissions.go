package users

import (
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

type action int

const (
	actionList action = iota
	actionRetrieve
	actionDelete
	actionChangeEmail
	actionChangePassword
	actionPromote
	actionDemote
)

// authorize decides whether actor may perform a on target. target is nil for
// actions that don't address a single user.
func authorize(a action, actor, target *models.User) error {
	if actor == nil {
		return errcodes.Unauthorized("")
	}

	allowed := false
	switch a {
	case actionList, actionRetrieve:
		allowed = true
	case actionDelete:
		// Staff can remove readers, but only a superuser can remove a superuser.
		allowed = target != nil && actor.IsOwnerOrStaff(target.ID) &&
			(!target.IsSuperuser || actor.IsSuperuser)
	case actionChangeEmail, actionChangePassword:
		allowed = target != nil && actor.ID == target.ID
	case actionPromote, actionDemote:
		allowed = actor.IsSuperuser
	}

	if !allowed {
		return errcodes.PermissionDenied()
	}
	return nil
}

// ManagementActor stands in for the operator when commands are run from the
// management CLI, which is trusted with superuser rights.
func ManagementActor() *models.User {
	return &models.User{Username: "manage", IsActive: true, IsStaff: true, IsSuperuser: true}
}
