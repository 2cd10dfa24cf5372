package reviews

import (
	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

type action int

const (
	actionList action = iota
	actionRetrieve
	actionCreate
	actionUpdate
	actionDelete
)

// authorize decides whether actor may perform a on review. Reads are open to
// anonymous callers; review is nil for actions without a single target.
func authorize(a action, actor *models.User, review *models.Review) error {
	switch a {
	case actionList, actionRetrieve:
		return nil
	}

	if actor == nil {
		return errcodes.Unauthorized("")
	}

	allowed := false
	switch a {
	case actionCreate:
		allowed = true
	case actionUpdate, actionDelete:
		allowed = review != nil && actor.IsOwnerOrStaff(review.AuthorID)
	}

	if !allowed {
		return errcodes.PermissionDenied()
	}
	return nil
}
