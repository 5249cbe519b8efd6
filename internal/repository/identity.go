package repository

import (
	"context"

	"github.com/iliyamo/event-session-booking/internal/model"
)

// IdentityResolver turns the (role, id) pair decoded from a bearer token
// into a full Identity by looking up the row in the matching partition.
// The token says which partition it authenticates against, so exactly one
// table is ever consulted.
type IdentityResolver struct {
	Users        *UserRepo
	Facilitators *FacilitatorRepo
}

func NewIdentityResolver(u *UserRepo, f *FacilitatorRepo) *IdentityResolver {
	return &IdentityResolver{Users: u, Facilitators: f}
}

// Resolve returns the identity behind the token claims. sql.ErrNoRows
// propagates when the id no longer exists; middleware answers 401.
func (r *IdentityResolver) Resolve(ctx context.Context, role model.Role, id uint64) (model.Identity, error) {
	if role == model.RoleFacilitator {
		f, err := r.Facilitators.GetByID(ctx, id)
		if err != nil {
			return model.Identity{}, err
		}
		return model.Identity{Role: model.RoleFacilitator, ID: f.ID, Name: f.Name, Email: f.Email}, nil
	}
	u, err := r.Users.GetByID(ctx, id)
	if err != nil {
		return model.Identity{}, err
	}
	name := u.Username
	if u.Name != "" {
		name = u.Name
	}
	return model.Identity{Role: model.RoleUser, ID: u.ID, Name: name, Email: u.Email}, nil
}
