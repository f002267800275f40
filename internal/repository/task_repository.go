package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

// RelatedRef is the optional polymorphic link from a task to a customer or a
// lead. The zero value means no relation.
type RelatedRef struct {
	Model string        `json:"model,omitempty"`
	ID    bson.ObjectID `json:"id,omitempty"`
}

func (r RelatedRef) IsNone() bool {
	return r.Model == ""
}

type Task struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	DueDate     time.Time     `bson:"dueDate" json:"dueDate"`
	Status      string        `bson:"status" json:"status"`
	Priority    string        `bson:"priority" json:"priority"`
	AssignedTo  bson.ObjectID `bson:"assignedTo" json:"assignedTo"`
	Related     RelatedRef    `bson:"-" json:"related"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// taskDocument is the stored shape: the related reference is flattened into
// relatedTo/relatedToModel, both present or both absent.
type taskDocument struct {
	Task           `bson:",inline"`
	RelatedTo      *bson.ObjectID `bson:"relatedTo,omitempty"`
	RelatedToModel string         `bson:"relatedToModel,omitempty"`
}

func newTaskDocument(task *Task) *taskDocument {
	doc := &taskDocument{Task: *task}
	if !task.Related.IsNone() {
		id := task.Related.ID
		doc.RelatedTo = &id
		doc.RelatedToModel = task.Related.Model
	}
	return doc
}

func (d *taskDocument) toTask() *Task {
	task := d.Task
	if d.RelatedTo != nil && d.RelatedToModel != "" {
		task.Related = RelatedRef{Model: d.RelatedToModel, ID: *d.RelatedTo}
	}
	return &task
}

// Task sort keys
const (
	TaskSortDueDate   = "dueDate"
	TaskSortPriority  = "priority"
	TaskSortStatus    = "status"
	TaskSortCreatedAt = "createdAt"
)

type TaskFilter struct {
	Owner        bson.ObjectID
	Status       string
	Priority     string
	RelatedModel string
	DueFrom      *time.Time // inclusive
	DueBefore    *time.Time // exclusive
	Incomplete   bool
	SortBy       string
	Desc         bool
	Limit        int64
}

type TaskUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Status      *string
	Priority    *string
	Related     *RelatedRef // a non-nil zero value clears the relation
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindOwned(ctx context.Context, id, owner bson.ObjectID) (*Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*Task, error)
	Update(ctx context.Context, id, owner bson.ObjectID, update TaskUpdate) (*Task, error)
	Delete(ctx context.Context, id, owner bson.ObjectID) (bool, error)
	Count(ctx context.Context, filter TaskFilter) (int64, error)
	FindOverdue(ctx context.Context, before time.Time) ([]*Task, error)
}

type mongoTaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) TaskRepository {
	return &mongoTaskRepository{coll: db.Collection(TasksCollection)}
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *Task) error {
	if task.ID.IsZero() {
		task.ID = bson.NewObjectID()
	}
	stamp(&task.CreatedAt, &task.UpdatedAt)
	_, err := r.coll.InsertOne(ctx, newTaskDocument(task))
	return wrapWriteError(err)
}

func (r *mongoTaskRepository) FindOwned(ctx context.Context, id, owner bson.ObjectID) (*Task, error) {
	doc := &taskDocument{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "assignedTo": owner}).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toTask(), nil
}

func (r *mongoTaskRepository) List(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	query := taskQuery(filter)

	var (
		cur *mongo.Cursor
		err error
	)
	switch filter.SortBy {
	case TaskSortPriority:
		cur, err = r.coll.Aggregate(ctx, rankedPipeline(query, "priority", types.TaskPriorities, filter.Desc, filter.Limit))
	case TaskSortStatus:
		cur, err = r.coll.Aggregate(ctx, rankedPipeline(query, "status", types.TaskStatuses, filter.Desc, filter.Limit))
	default:
		field := TaskSortDueDate
		if filter.SortBy == TaskSortCreatedAt {
			field = TaskSortCreatedAt
		}
		opts := options.Find().SetSort(bson.D{
			{Key: field, Value: direction(filter.Desc)},
			{Key: "_id", Value: direction(filter.Desc)},
		})
		if filter.Limit > 0 {
			opts.SetLimit(filter.Limit)
		}
		cur, err = r.coll.Find(ctx, query, opts)
	}
	if err != nil {
		return nil, err
	}
	return decodeTasks(ctx, cur)
}

func (r *mongoTaskRepository) Update(ctx context.Context, id, owner bson.ObjectID, update TaskUpdate) (*Task, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.DueDate != nil {
		set["dueDate"] = *update.DueDate
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Priority != nil {
		set["priority"] = *update.Priority
	}

	change := bson.M{"$set": set}
	if update.Related != nil {
		if update.Related.IsNone() {
			change["$unset"] = bson.M{"relatedTo": "", "relatedToModel": ""}
		} else {
			set["relatedTo"] = update.Related.ID
			set["relatedToModel"] = update.Related.Model
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	doc := &taskDocument{}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "assignedTo": owner}, change, opts).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWriteError(err)
	}
	return doc.toTask(), nil
}

func (r *mongoTaskRepository) Delete(ctx context.Context, id, owner bson.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "assignedTo": owner})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoTaskRepository) Count(ctx context.Context, filter TaskFilter) (int64, error) {
	return r.coll.CountDocuments(ctx, taskQuery(filter))
}

// FindOverdue returns incomplete tasks of every owner due before the given
// instant, grouped by owner.
func (r *mongoTaskRepository) FindOverdue(ctx context.Context, before time.Time) ([]*Task, error) {
	query := bson.M{
		"dueDate": bson.M{"$lt": before},
		"status":  bson.M{"$ne": types.StatusCompleted},
	}
	opts := options.Find().SetSort(bson.D{{Key: "assignedTo", Value: 1}, {Key: "dueDate", Value: 1}})
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return decodeTasks(ctx, cur)
}

func taskQuery(filter TaskFilter) bson.M {
	query := bson.M{"assignedTo": filter.Owner}

	status := bson.M{}
	if filter.Status != "" {
		status["$eq"] = filter.Status
	}
	if filter.Incomplete {
		status["$ne"] = types.StatusCompleted
	}
	if len(status) > 0 {
		query["status"] = status
	}

	if filter.Priority != "" {
		query["priority"] = filter.Priority
	}
	if filter.RelatedModel != "" {
		query["relatedToModel"] = filter.RelatedModel
	}

	due := bson.M{}
	if filter.DueFrom != nil {
		due["$gte"] = *filter.DueFrom
	}
	if filter.DueBefore != nil {
		due["$lt"] = *filter.DueBefore
	}
	if len(due) > 0 {
		query["dueDate"] = due
	}
	return query
}

func decodeTasks(ctx context.Context, cur *mongo.Cursor) ([]*Task, error) {
	docs, err := decodeAll[taskDocument](ctx, cur)
	if err != nil {
		return nil, err
	}
	tasks := make([]*Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, doc.toTask())
	}
	return tasks, nil
}
