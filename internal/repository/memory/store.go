// Package memory is an in-process implementation of the repository
// interfaces. It backs service and handler tests and local runs without a
// database.
package memory

import (
	"bytes"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
)

type Store struct {
	mu        sync.RWMutex
	users     map[bson.ObjectID]*repository.User
	customers map[bson.ObjectID]*repository.Customer
	leads     map[bson.ObjectID]*repository.Lead
	tasks     map[bson.ObjectID]*repository.Task
}

func NewStore() *Store {
	return &Store{
		users:     make(map[bson.ObjectID]*repository.User),
		customers: make(map[bson.ObjectID]*repository.Customer),
		leads:     make(map[bson.ObjectID]*repository.Lead),
		tasks:     make(map[bson.ObjectID]*repository.Task),
	}
}

// Repositories wires every repository to the same store.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		UserRepo:     &userRepo{s},
		CustomerRepo: &customerRepo{s},
		LeadRepo:     &leadRepo{s},
		TaskRepo:     &taskRepo{s},
	}
}

func stamp(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func matches(q string, fields ...string) bool {
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func idLess(a, b bson.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

func idSet(ids []bson.ObjectID) map[bson.ObjectID]bool {
	set := make(map[bson.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func limit[T any](items []T, n int64) []T {
	if n > 0 && int64(len(items)) > n {
		return items[:n]
	}
	return items
}
