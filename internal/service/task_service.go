package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/repository"
	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

// ============================================
// Task Service
// ============================================

// Related reference kinds accepted in request bodies.
const (
	RelatedCustomer = "customer"
	RelatedLead     = "lead"
	RelatedNone     = "none"
)

// Due date buckets accepted by the task list filter.
const (
	DueToday    = "today"
	DueThisWeek = "this-week"
	DueOverdue  = "overdue"
	DueUpcoming = "upcoming"
)

type RelatedInput struct {
	Type string `json:"type" validate:"required,oneof=customer lead none"`
	ID   string `json:"id"`
}

type TaskInput struct {
	Title       string        `json:"title" validate:"required"`
	Description string        `json:"description"`
	DueDate     string        `json:"dueDate" validate:"required"`
	Status      string        `json:"status" validate:"omitempty,taskstatus"`
	Priority    string        `json:"priority" validate:"omitempty,taskpriority"`
	RelatedTo   *RelatedInput `json:"relatedTo"`
}

type TaskPatch struct {
	Title       *string       `json:"title" validate:"omitnil,min=1"`
	Description *string       `json:"description"`
	DueDate     *string       `json:"dueDate" validate:"omitnil,min=1"`
	Status      *string       `json:"status" validate:"omitnil,taskstatus"`
	Priority    *string       `json:"priority" validate:"omitnil,taskpriority"`
	RelatedTo   *RelatedInput `json:"relatedTo"`
}

type TaskQuery struct {
	Status       string `json:"status" form:"status" validate:"omitempty,taskstatus"`
	Priority     string `json:"priority" form:"priority" validate:"omitempty,taskpriority"`
	RelatedModel string `json:"relatedToModel" form:"relatedToModel" validate:"omitempty,oneof=Customer Lead"`
	DueDate      string `json:"dueDate" form:"dueDate" validate:"omitempty,oneof=today this-week overdue upcoming"`
	SortBy       string `json:"sortBy" form:"sortBy" validate:"omitempty,oneof=dueDate priority status createdAt"`
	Order        string `json:"order" form:"order" validate:"omitempty,oneof=asc desc"`
}

type TaskView struct {
	Task       *repository.Task
	AssignedTo *UserSummary
	Related    *RelatedSummary
}

type TaskService interface {
	Create(ctx context.Context, userID string, in TaskInput) (*TaskView, error)
	List(ctx context.Context, userID string, q TaskQuery) ([]*TaskView, error)
	Get(ctx context.Context, userID, id string) (*TaskView, error)
	Update(ctx context.Context, userID, id string, in TaskPatch) (*TaskView, error)
	Delete(ctx context.Context, userID, id string) error
}

type taskService struct {
	repos *repository.Repositories
	hooks *writeHooks
	loc   *time.Location
	now   func() time.Time
}

func NewTaskService(repos *repository.Repositories, hooks *writeHooks, loc *time.Location, now func() time.Time) TaskService {
	return &taskService{repos: repos, hooks: hooks, loc: loc, now: now}
}

func (s *taskService) Create(ctx context.Context, userID string, in TaskInput) (*TaskView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	due, err := parseDueDate(in.DueDate, s.loc)
	if err != nil {
		return nil, err
	}

	task := &repository.Task{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		DueDate:     due,
		Status:      in.Status,
		Priority:    in.Priority,
		AssignedTo:  owner,
	}
	if task.Status == "" {
		task.Status = types.StatusNotStarted
	}
	if task.Priority == "" {
		task.Priority = types.PriorityMedium
	}
	if in.RelatedTo != nil {
		if task.Related, err = s.resolveRelated(ctx, owner, *in.RelatedTo); err != nil {
			return nil, err
		}
	}

	if err := s.repos.TaskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.hooks.changed(ctx, owner, socket.MessageTaskCreated, eventPayload(task.ID))
	return s.one(ctx, owner, task)
}

func (s *taskService) List(ctx context.Context, userID string, q TaskQuery) ([]*TaskView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	if err := validateInput(q); err != nil {
		return nil, err
	}

	filter := repository.TaskFilter{
		Owner:        owner,
		Status:       q.Status,
		Priority:     q.Priority,
		RelatedModel: q.RelatedModel,
		SortBy:       q.SortBy,
	}
	if filter.SortBy == "" {
		filter.SortBy = repository.TaskSortDueDate
	}
	switch q.Order {
	case "asc":
	case "desc":
		filter.Desc = true
	default:
		filter.Desc = filter.SortBy == repository.TaskSortCreatedAt
	}
	s.applyDueBucket(&filter, q.DueDate)

	tasks, err := s.repos.TaskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return populateTasks(ctx, s.repos, owner, tasks)
}

func (s *taskService) Get(ctx context.Context, userID, id string) (*TaskView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return nil, err
	}
	task, err := s.repos.TaskRepo.FindOwned(ctx, oid, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	if task == nil {
		return nil, ErrNotFound
	}
	return s.one(ctx, owner, task)
}

func (s *taskService) Update(ctx context.Context, userID, id string, in TaskPatch) (*TaskView, error) {
	owner, err := parseOwner(userID)
	if err != nil {
		return nil, err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		in.Title = &title
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	update := repository.TaskUpdate{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
	}
	if in.DueDate != nil {
		due, err := parseDueDate(*in.DueDate, s.loc)
		if err != nil {
			return nil, err
		}
		update.DueDate = &due
	}
	if in.RelatedTo != nil {
		related, err := s.resolveRelated(ctx, owner, *in.RelatedTo)
		if err != nil {
			return nil, err
		}
		update.Related = &related
	}

	task, err := s.repos.TaskRepo.Update(ctx, oid, owner, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if task == nil {
		return nil, ErrNotFound
	}

	s.hooks.changed(ctx, owner, socket.MessageTaskUpdated, eventPayload(task.ID))
	return s.one(ctx, owner, task)
}

func (s *taskService) Delete(ctx context.Context, userID, id string) error {
	owner, err := parseOwner(userID)
	if err != nil {
		return err
	}
	oid, err := parseResourceID(id)
	if err != nil {
		return err
	}
	deleted, err := s.repos.TaskRepo.Delete(ctx, oid, owner)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.hooks.changed(ctx, owner, socket.MessageTaskDeleted, eventPayload(oid))
	return nil
}

// applyDueBucket narrows the filter to a due date window relative to the
// start of today in the server time zone.
func (s *taskService) applyDueBucket(filter *repository.TaskFilter, bucket string) {
	today := startOfDay(s.now(), s.loc)
	tomorrow := today.AddDate(0, 0, 1)
	switch bucket {
	case DueToday:
		filter.DueFrom, filter.DueBefore = &today, &tomorrow
	case DueThisWeek:
		weekEnd := today.AddDate(0, 0, 7)
		filter.DueFrom, filter.DueBefore = &today, &weekEnd
	case DueOverdue:
		filter.DueBefore = &today
		filter.Incomplete = true
	case DueUpcoming:
		filter.DueFrom = &tomorrow
	}
}

func (s *taskService) resolveRelated(ctx context.Context, owner bson.ObjectID, in RelatedInput) (repository.RelatedRef, error) {
	if in.Type == RelatedNone {
		return repository.RelatedRef{}, nil
	}
	id, err := bson.ObjectIDFromHex(in.ID)
	if err != nil {
		return repository.RelatedRef{}, invalidField("relatedTo", "must reference a valid id")
	}

	switch in.Type {
	case RelatedCustomer:
		c, err := s.repos.CustomerRepo.FindOwned(ctx, id, owner)
		if err != nil {
			return repository.RelatedRef{}, fmt.Errorf("failed to find customer: %w", err)
		}
		if c == nil {
			return repository.RelatedRef{}, invalidField("relatedTo", "customer does not exist")
		}
		return repository.RelatedRef{Model: types.ModelCustomer, ID: id}, nil
	default:
		l, err := s.repos.LeadRepo.FindOwned(ctx, id, owner)
		if err != nil {
			return repository.RelatedRef{}, fmt.Errorf("failed to find lead: %w", err)
		}
		if l == nil {
			return repository.RelatedRef{}, invalidField("relatedTo", "lead does not exist")
		}
		return repository.RelatedRef{Model: types.ModelLead, ID: id}, nil
	}
}

func (s *taskService) one(ctx context.Context, owner bson.ObjectID, task *repository.Task) (*TaskView, error) {
	views, err := populateTasks(ctx, s.repos, owner, []*repository.Task{task})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// parseDueDate accepts RFC 3339 timestamps or plain dates, which are read as
// midnight in loc.
func parseDueDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, invalidField("dueDate", "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}

func populateTasks(ctx context.Context, repos *repository.Repositories, owner bson.ObjectID, tasks []*repository.Task) ([]*TaskView, error) {
	var userIDs, customerIDs, leadIDs []bson.ObjectID
	for _, t := range tasks {
		userIDs = append(userIDs, t.AssignedTo)
		switch t.Related.Model {
		case types.ModelCustomer:
			customerIDs = append(customerIDs, t.Related.ID)
		case types.ModelLead:
			leadIDs = append(leadIDs, t.Related.ID)
		}
	}

	users, err := userSummaries(ctx, repos.UserRepo, userIDs)
	if err != nil {
		return nil, err
	}
	customers, err := customerSummaries(ctx, repos.CustomerRepo, owner, customerIDs)
	if err != nil {
		return nil, err
	}
	leads, err := repos.LeadRepo.FindOwnedByIDs(ctx, owner, uniqueIDs(leadIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}
	leadByID := make(map[bson.ObjectID]*repository.Lead, len(leads))
	for _, l := range leads {
		leadByID[l.ID] = l
	}

	views := make([]*TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := &TaskView{Task: t, AssignedTo: users[t.AssignedTo]}
		switch t.Related.Model {
		case types.ModelCustomer:
			if c, ok := customers[t.Related.ID]; ok {
				view.Related = &RelatedSummary{Model: types.ModelCustomer, ID: c.ID, Name: c.Name, Email: c.Email}
			}
		case types.ModelLead:
			if l, ok := leadByID[t.Related.ID]; ok {
				view.Related = &RelatedSummary{Model: types.ModelLead, ID: l.ID, Name: l.Title, Stage: l.Stage}
			}
		}
		views = append(views, view)
	}
	return views, nil
}
