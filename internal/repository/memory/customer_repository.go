package memory

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
)

type customerRepo struct{ s *Store }

func cloneCustomer(c *repository.Customer) *repository.Customer {
	cp := *c
	cp.Interactions = append([]repository.Interaction{}, c.Interactions...)
	return &cp
}

func (r *customerRepo) emailTaken(email string, except bson.ObjectID) bool {
	for id, c := range r.s.customers {
		if id != except && c.Email == email {
			return true
		}
	}
	return false
}

func (r *customerRepo) Create(_ context.Context, customer *repository.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(customer.Email, bson.NilObjectID) {
		return repository.ErrDuplicateKey
	}
	if customer.ID.IsZero() {
		customer.ID = bson.NewObjectID()
	}
	if customer.Interactions == nil {
		customer.Interactions = []repository.Interaction{}
	}
	stamp(&customer.CreatedAt, &customer.UpdatedAt)
	r.s.customers[customer.ID] = cloneCustomer(customer)
	return nil
}

func (r *customerRepo) owned(id, owner bson.ObjectID) (*repository.Customer, bool) {
	c, ok := r.s.customers[id]
	if !ok || c.CreatedBy != owner {
		return nil, false
	}
	return c, true
}

func (r *customerRepo) FindOwned(_ context.Context, id, owner bson.ObjectID) (*repository.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.owned(id, owner)
	if !ok {
		return nil, nil
	}
	return cloneCustomer(c), nil
}

func (r *customerRepo) FindOwnedByIDs(_ context.Context, owner bson.ObjectID, ids []bson.ObjectID) ([]*repository.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	customers := []*repository.Customer{}
	for id := range idSet(ids) {
		if c, ok := r.owned(id, owner); ok {
			customers = append(customers, cloneCustomer(c))
		}
	}
	return customers, nil
}

func (r *customerRepo) List(_ context.Context, filter repository.CustomerFilter) ([]*repository.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	customers := []*repository.Customer{}
	for _, c := range r.s.customers {
		if c.CreatedBy != filter.Owner {
			continue
		}
		if filter.Search != "" && !matches(filter.Search, c.Name, c.Email, c.Company) {
			continue
		}
		customers = append(customers, cloneCustomer(c))
	}
	sort.Slice(customers, func(i, j int) bool {
		a, b := customers[i], customers[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return idLess(b.ID, a.ID)
	})
	return limit(customers, filter.Limit), nil
}

func (r *customerRepo) Update(_ context.Context, id, owner bson.ObjectID, update repository.CustomerUpdate) (*repository.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.owned(id, owner)
	if !ok {
		return nil, nil
	}
	if update.Email != nil && r.emailTaken(*update.Email, id) {
		return nil, repository.ErrDuplicateKey
	}
	if update.Name != nil {
		c.Name = *update.Name
	}
	if update.Email != nil {
		c.Email = *update.Email
	}
	if update.Phone != nil {
		c.Phone = *update.Phone
	}
	if update.Company != nil {
		c.Company = *update.Company
	}
	c.UpdatedAt = time.Now().UTC()
	return cloneCustomer(c), nil
}

func (r *customerRepo) AddInteraction(_ context.Context, id, owner bson.ObjectID, interaction repository.Interaction) (*repository.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.owned(id, owner)
	if !ok {
		return nil, nil
	}
	if interaction.ID.IsZero() {
		interaction.ID = bson.NewObjectID()
	}
	c.Interactions = append(c.Interactions, interaction)
	c.UpdatedAt = time.Now().UTC()
	return cloneCustomer(c), nil
}

func (r *customerRepo) Delete(_ context.Context, id, owner bson.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.owned(id, owner); !ok {
		return false, nil
	}
	delete(r.s.customers, id)
	return true, nil
}

func (r *customerRepo) Count(_ context.Context, owner bson.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, c := range r.s.customers {
		if c.CreatedBy == owner {
			n++
		}
	}
	return n, nil
}
