package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
)

// ============================================
// Dashboard Service
// ============================================

const (
	recentLimit       = 5
	performanceWindow = 30 // days
	statsCachePrefix  = "dashboard:"
)

type DashboardCounts struct {
	Customers     int64 `json:"customers"`
	Leads         int64 `json:"leads"`
	Tasks         int64 `json:"tasks"`
	TasksDueToday int64 `json:"tasksDueToday"`
}

type RecentActivities struct {
	Tasks []*TaskView `json:"tasks"`
	Leads []*LeadView `json:"leads"`
}

type DashboardStats struct {
	Counts           DashboardCounts           `json:"counts"`
	LeadsByStage     []repository.StageSummary `json:"leadsByStage"`
	RecentActivities RecentActivities          `json:"recentActivities"`
}

type DashboardService interface {
	Stats(ctx context.Context, userID string) (*DashboardStats, error)
	LeadPerformance(ctx context.Context, userID string) ([]repository.DailyPerformance, error)
	Invalidate(ctx context.Context, userID string)
	InvalidateAll(ctx context.Context) error
}

type dashboardService struct {
	repos *repository.Repositories
	cache StatsCache
	loc   *time.Location
	now   func() time.Time
}

func NewDashboardService(repos *repository.Repositories, cache StatsCache, loc *time.Location, now func() time.Time) DashboardService {
	return &dashboardService{repos: repos, cache: cache, loc: loc, now: now}
}

func (s *dashboardService) Stats(ctx context.Context, userID string) (*DashboardStats, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}

	key := statsCachePrefix + userID
	if s.cache != nil {
		cached := &DashboardStats{}
		hit, err := s.cache.Get(ctx, key, cached)
		if err != nil {
			logger.App().WithError(err).WithField("user_id", userID).Warn("dashboard cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	stats := &DashboardStats{}
	if stats.Counts.Customers, err = s.repos.CustomerRepo.Count(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if stats.Counts.Leads, err = s.repos.LeadRepo.Count(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if stats.Counts.Tasks, err = s.repos.TaskRepo.Count(ctx, repository.TaskFilter{Owner: owner}); err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	today := startOfDay(s.now(), s.loc)
	tomorrow := today.AddDate(0, 0, 1)
	stats.Counts.TasksDueToday, err = s.repos.TaskRepo.Count(ctx, repository.TaskFilter{
		Owner:      owner,
		DueFrom:    &today,
		DueBefore:  &tomorrow,
		Incomplete: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks due today: %w", err)
	}

	if stats.LeadsByStage, err = s.repos.LeadRepo.SummarizeByStage(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to summarize leads: %w", err)
	}
	for i := range stats.LeadsByStage {
		stats.LeadsByStage[i].Value = roundMoney(stats.LeadsByStage[i].Value)
	}

	tasks, err := s.repos.TaskRepo.List(ctx, repository.TaskFilter{
		Owner:  owner,
		SortBy: repository.TaskSortCreatedAt,
		Desc:   true,
		Limit:  recentLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent tasks: %w", err)
	}
	if stats.RecentActivities.Tasks, err = populateTasks(ctx, s.repos, owner, tasks); err != nil {
		return nil, err
	}

	leads, err := s.repos.LeadRepo.List(ctx, repository.LeadFilter{
		Owner:  owner,
		SortBy: repository.LeadSortDate,
		Desc:   true,
		Limit:  recentLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent leads: %w", err)
	}
	if stats.RecentActivities.Leads, err = populateLeads(ctx, s.repos.CustomerRepo, s.repos.UserRepo, owner, leads); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats); err != nil {
			logger.App().WithError(err).WithField("user_id", userID).Warn("dashboard cache write failed")
		}
	}
	return stats, nil
}

func (s *dashboardService) LeadPerformance(ctx context.Context, userID string) ([]repository.DailyPerformance, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	since := s.now().AddDate(0, 0, -performanceWindow)
	days, err := s.repos.LeadRepo.DailyPerformance(ctx, owner, since, s.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate lead performance: %w", err)
	}
	for i := range days {
		days[i].Value = roundMoney(days[i].Value)
	}
	return days, nil
}

// Invalidate drops the user's cached stats. Failures are logged only.
func (s *dashboardService) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, statsCachePrefix+userID); err != nil {
		logger.App().WithError(err).WithField("user_id", userID).Warn("dashboard cache invalidation failed")
	}
}

func (s *dashboardService) InvalidateAll(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, statsCachePrefix+"*")
}

func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
