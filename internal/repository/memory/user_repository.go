package memory

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
)

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *repository.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	stamp(&user.CreatedAt, &user.UpdatedAt)
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) FindByID(_ context.Context, id bson.ObjectID) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) FindByIDs(_ context.Context, ids []bson.ObjectID) ([]*repository.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []*repository.User{}
	for id := range idSet(ids) {
		if u, ok := r.s.users[id]; ok {
			cp := *u
			users = append(users, &cp)
		}
	}
	return users, nil
}

func (r *userRepo) Update(_ context.Context, user *repository.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[user.ID]
	if !ok {
		return nil
	}
	for id, u := range r.s.users {
		if id != user.ID && u.Email == user.Email {
			return repository.ErrDuplicateKey
		}
	}
	stamp(&existing.CreatedAt, &user.UpdatedAt)
	user.CreatedAt = existing.CreatedAt
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *userRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}
