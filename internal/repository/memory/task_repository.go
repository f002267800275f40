package memory

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

type taskRepo struct{ s *Store }

func (r *taskRepo) Create(_ context.Context, task *repository.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if task.ID.IsZero() {
		task.ID = bson.NewObjectID()
	}
	stamp(&task.CreatedAt, &task.UpdatedAt)
	cp := *task
	r.s.tasks[task.ID] = &cp
	return nil
}

func (r *taskRepo) owned(id, owner bson.ObjectID) (*repository.Task, bool) {
	t, ok := r.s.tasks[id]
	if !ok || t.AssignedTo != owner {
		return nil, false
	}
	return t, true
}

func (r *taskRepo) FindOwned(_ context.Context, id, owner bson.ObjectID) (*repository.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.owned(id, owner)
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *taskRepo) List(_ context.Context, filter repository.TaskFilter) ([]*repository.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := r.filter(filter)
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch filter.SortBy {
		case repository.TaskSortPriority, repository.TaskSortStatus:
			values, ra, rb := types.TaskPriorities, a.Priority, b.Priority
			if filter.SortBy == repository.TaskSortStatus {
				values, ra, rb = types.TaskStatuses, a.Status, b.Status
			}
			ia, ib := types.Rank(values, ra), types.Rank(values, rb)
			if ia != ib {
				return (ia < ib) != filter.Desc
			}
			return a.CreatedAt.After(b.CreatedAt)
		case repository.TaskSortCreatedAt:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt) != filter.Desc
			}
		default:
			if !a.DueDate.Equal(b.DueDate) {
				return a.DueDate.Before(b.DueDate) != filter.Desc
			}
		}
		return idLess(a.ID, b.ID) != filter.Desc
	})
	return limit(tasks, filter.Limit), nil
}

func (r *taskRepo) Update(_ context.Context, id, owner bson.ObjectID, update repository.TaskUpdate) (*repository.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.owned(id, owner)
	if !ok {
		return nil, nil
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.DueDate != nil {
		t.DueDate = *update.DueDate
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	if update.Related != nil {
		t.Related = *update.Related
	}
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	return &cp, nil
}

func (r *taskRepo) Delete(_ context.Context, id, owner bson.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.owned(id, owner); !ok {
		return false, nil
	}
	delete(r.s.tasks, id)
	return true, nil
}

func (r *taskRepo) Count(_ context.Context, filter repository.TaskFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.filter(filter))), nil
}

func (r *taskRepo) FindOverdue(_ context.Context, before time.Time) ([]*repository.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := []*repository.Task{}
	for _, t := range r.s.tasks {
		if t.DueDate.Before(before) && t.Status != types.StatusCompleted {
			cp := *t
			tasks = append(tasks, &cp)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.AssignedTo != b.AssignedTo {
			return idLess(a.AssignedTo, b.AssignedTo)
		}
		return a.DueDate.Before(b.DueDate)
	})
	return tasks, nil
}

// filter must be called with the lock held.
func (r *taskRepo) filter(f repository.TaskFilter) []*repository.Task {
	tasks := []*repository.Task{}
	for _, t := range r.s.tasks {
		switch {
		case t.AssignedTo != f.Owner:
			continue
		case f.Status != "" && t.Status != f.Status:
			continue
		case f.Incomplete && t.Status == types.StatusCompleted:
			continue
		case f.Priority != "" && t.Priority != f.Priority:
			continue
		case f.RelatedModel != "" && t.Related.Model != f.RelatedModel:
			continue
		case f.DueFrom != nil && t.DueDate.Before(*f.DueFrom):
			continue
		case f.DueBefore != nil && !t.DueDate.Before(*f.DueBefore):
			continue
		}
		cp := *t
		tasks = append(tasks, &cp)
	}
	return tasks
}
