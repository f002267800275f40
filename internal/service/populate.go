package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
)

// UserSummary is the populated form of a user reference.
type UserSummary struct {
	ID   bson.ObjectID
	Name string
}

// CustomerSummary is the populated form of a customer reference.
type CustomerSummary struct {
	ID    bson.ObjectID
	Name  string
	Email string
}

// RelatedSummary is the populated form of a task's related record.
type RelatedSummary struct {
	Model string
	ID    bson.ObjectID
	Name  string // customer name or lead title
	Email string // customers only
	Stage string // leads only
}

func userSummaries(ctx context.Context, repo repository.UserRepository, ids []bson.ObjectID) (map[bson.ObjectID]*UserSummary, error) {
	users, err := repo.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	out := make(map[bson.ObjectID]*UserSummary, len(users))
	for _, u := range users {
		out[u.ID] = &UserSummary{ID: u.ID, Name: u.Name}
	}
	return out, nil
}

func customerSummaries(ctx context.Context, repo repository.CustomerRepository, owner bson.ObjectID, ids []bson.ObjectID) (map[bson.ObjectID]*CustomerSummary, error) {
	customers, err := repo.FindOwnedByIDs(ctx, owner, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}
	out := make(map[bson.ObjectID]*CustomerSummary, len(customers))
	for _, c := range customers {
		out[c.ID] = &CustomerSummary{ID: c.ID, Name: c.Name, Email: c.Email}
	}
	return out, nil
}

func uniqueIDs(ids []bson.ObjectID) []bson.ObjectID {
	seen := make(map[bson.ObjectID]bool, len(ids))
	out := make([]bson.ObjectID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
