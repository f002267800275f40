package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Marga-Ghale/ora-crm-backend/internal/logger"
	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/service"
)

const jobTimeout = 2 * time.Minute

// OverdueNotifier delivers the overdue digest to a user's live connections.
type OverdueNotifier interface {
	SendOverdueDigest(userID string, taskIDs []string)
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron      *cron.Cron
	dashboard service.DashboardService
	taskRepo  repository.TaskRepository
	notifier  OverdueNotifier
	loc       *time.Location
	now       func() time.Time
}

// NewScheduler creates a scheduler whose specs are evaluated in loc.
func NewScheduler(dashboard service.DashboardService, taskRepo repository.TaskRepository, notifier OverdueNotifier, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		dashboard: dashboard,
		taskRepo:  taskRepo,
		notifier:  notifier,
		loc:       loc,
		now:       time.Now,
	}
}

// Start registers the jobs and starts the scheduler
func (s *Scheduler) Start() error {
	// Midnight - "due today" counts roll over
	if _, err := s.cron.AddFunc("0 0 * * *", func() {
		logger.App().Info("[Cron] Resetting cached dashboard stats...")
		s.run(s.ResetDashboards)
	}); err != nil {
		return err
	}

	// Every hour - overdue digest
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		logger.App().Debug("[Cron] Running overdue task check...")
		s.run(s.NotifyOverdue)
	}); err != nil {
		return err
	}

	s.cron.Start()
	logger.App().Info("[Cron] Scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.App().Info("[Cron] Scheduler stopped")
}

func (s *Scheduler) run(job func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := job(ctx); err != nil {
		logger.App().WithError(err).Error("[Cron] Job failed")
	}
}

// ResetDashboards drops every cached dashboard payload.
func (s *Scheduler) ResetDashboards(ctx context.Context) error {
	return s.dashboard.InvalidateAll(ctx)
}

// NotifyOverdue pushes one digest per owner with incomplete tasks due before
// the start of today.
func (s *Scheduler) NotifyOverdue(ctx context.Context) error {
	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)

	tasks, err := s.taskRepo.FindOverdue(ctx, today)
	if err != nil {
		return err
	}

	byOwner := map[string][]string{}
	var owners []string
	for _, t := range tasks {
		owner := t.AssignedTo.Hex()
		if _, seen := byOwner[owner]; !seen {
			owners = append(owners, owner)
		}
		byOwner[owner] = append(byOwner[owner], t.ID.Hex())
	}

	for _, owner := range owners {
		s.notifier.SendOverdueDigest(owner, byOwner[owner])
	}
	logger.App().WithField("owners", len(owners)).Infof("[Cron] Overdue check found %d tasks", len(tasks))
	return nil
}
