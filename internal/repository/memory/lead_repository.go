package memory

import (
	"context"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

type leadRepo struct{ s *Store }

func (r *leadRepo) Create(_ context.Context, lead *repository.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if lead.ID.IsZero() {
		lead.ID = bson.NewObjectID()
	}
	stamp(&lead.CreatedAt, &lead.UpdatedAt)
	cp := *lead
	r.s.leads[lead.ID] = &cp
	return nil
}

func (r *leadRepo) owned(id, owner bson.ObjectID) (*repository.Lead, bool) {
	l, ok := r.s.leads[id]
	if !ok || l.AssignedTo != owner {
		return nil, false
	}
	return l, true
}

func (r *leadRepo) FindOwned(_ context.Context, id, owner bson.ObjectID) (*repository.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	l, ok := r.owned(id, owner)
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *leadRepo) FindOwnedByIDs(_ context.Context, owner bson.ObjectID, ids []bson.ObjectID) ([]*repository.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	leads := []*repository.Lead{}
	for id := range idSet(ids) {
		if l, ok := r.owned(id, owner); ok {
			cp := *l
			leads = append(leads, &cp)
		}
	}
	return leads, nil
}

func (r *leadRepo) List(_ context.Context, filter repository.LeadFilter) ([]*repository.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	leads := []*repository.Lead{}
	for _, l := range r.s.leads {
		switch {
		case l.AssignedTo != filter.Owner:
			continue
		case filter.Stage != "" && l.Stage != filter.Stage:
			continue
		case filter.Source != "" && l.Source != filter.Source:
			continue
		case filter.Customer != nil && l.Customer != *filter.Customer:
			continue
		case filter.Search != "" && !matches(filter.Search, l.Title, l.Notes):
			continue
		}
		cp := *l
		leads = append(leads, &cp)
	}

	sort.Slice(leads, func(i, j int) bool {
		a, b := leads[i], leads[j]
		switch filter.SortBy {
		case repository.LeadSortStage:
			ra, rb := types.Rank(types.LeadStages, a.Stage), types.Rank(types.LeadStages, b.Stage)
			if ra != rb {
				return (ra < rb) != filter.Desc
			}
			return a.CreatedAt.After(b.CreatedAt)
		case repository.LeadSortValue:
			if a.Value != b.Value {
				return (a.Value < b.Value) != filter.Desc
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt) != filter.Desc
			}
		}
		return idLess(a.ID, b.ID) != filter.Desc
	})
	return limit(leads, filter.Limit), nil
}

func (r *leadRepo) Update(_ context.Context, id, owner bson.ObjectID, update repository.LeadUpdate) (*repository.Lead, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.owned(id, owner)
	if !ok {
		return nil, nil
	}
	if update.Customer != nil {
		l.Customer = *update.Customer
	}
	if update.Title != nil {
		l.Title = *update.Title
	}
	if update.Source != nil {
		l.Source = *update.Source
	}
	if update.Stage != nil {
		l.Stage = *update.Stage
	}
	if update.Value != nil {
		l.Value = *update.Value
	}
	if update.Notes != nil {
		l.Notes = *update.Notes
	}
	l.UpdatedAt = time.Now().UTC()
	cp := *l
	return &cp, nil
}

func (r *leadRepo) Delete(_ context.Context, id, owner bson.ObjectID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.owned(id, owner); !ok {
		return false, nil
	}
	delete(r.s.leads, id)
	return true, nil
}

func (r *leadRepo) Count(_ context.Context, owner bson.ObjectID) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, l := range r.s.leads {
		if l.AssignedTo == owner {
			n++
		}
	}
	return n, nil
}

func (r *leadRepo) SummarizeByStage(_ context.Context, owner bson.ObjectID) ([]repository.StageSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byStage := map[string]*repository.StageSummary{}
	for _, l := range r.s.leads {
		if l.AssignedTo != owner {
			continue
		}
		sum, ok := byStage[l.Stage]
		if !ok {
			sum = &repository.StageSummary{Stage: l.Stage}
			byStage[l.Stage] = sum
		}
		sum.Count++
		sum.Value += l.Value
	}

	summaries := make([]repository.StageSummary, 0, len(byStage))
	for _, sum := range byStage {
		summaries = append(summaries, *sum)
	}
	repository.SortStageSummaries(summaries)
	return summaries, nil
}

func (r *leadRepo) DailyPerformance(_ context.Context, owner bson.ObjectID, since time.Time, loc *time.Location) ([]repository.DailyPerformance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if loc == nil {
		loc = time.Local
	}
	byDay := map[string]*repository.DailyPerformance{}
	for _, l := range r.s.leads {
		if l.AssignedTo != owner || l.CreatedAt.Before(since) {
			continue
		}
		day := l.CreatedAt.In(loc).Format("2006-01-02")
		perf, ok := byDay[day]
		if !ok {
			perf = &repository.DailyPerformance{Date: day}
			byDay[day] = perf
		}
		perf.Count++
		perf.Value += l.Value
	}

	days := make([]repository.DailyPerformance, 0, len(byDay))
	for _, perf := range byDay {
		days = append(days, *perf)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days, nil
}
