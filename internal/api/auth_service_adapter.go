package api

import (
	"context"
	"errors"

	"github.com/soaringjerry/MindBalance/internal/services"
)

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func toServiceUser(u *User) *services.User {
	if u == nil {
		return nil
	}
	return &services.User{ID: u.ID, Name: u.Name, Email: u.Email, PassHash: u.PassHash, Profession: u.Profession, CreatedAt: u.CreatedAt}
}

func (a *authStoreAdapter) FindUserByEmail(ctx context.Context, email string) (*services.User, error) {
	u, err := a.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toServiceUser(u), nil
}

func (a *authStoreAdapter) GetUser(ctx context.Context, id string) (*services.User, error) {
	u, err := a.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	return toServiceUser(u), nil
}

func (a *authStoreAdapter) AddUser(ctx context.Context, u *services.User) error {
	if u == nil {
		return services.NewInvalidError("user required")
	}
	err := a.store.AddUser(ctx, &User{ID: u.ID, Name: u.Name, Email: u.Email, PassHash: u.PassHash, Profession: u.Profession, CreatedAt: u.CreatedAt})
	if errors.Is(err, ErrDuplicate) {
		return services.NewConflictError("user already exists")
	}
	return err
}

func (a *authStoreAdapter) UpdateProfile(ctx context.Context, id, name, profession string) (bool, error) {
	return a.store.UpdateProfile(ctx, id, name, profession)
}

var _ services.AuthStore = (*authStoreAdapter)(nil)
