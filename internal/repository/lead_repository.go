package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

type Lead struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Customer   bson.ObjectID `bson:"customer" json:"customer"`
	Title      string        `bson:"title" json:"title"`
	Source     string        `bson:"source" json:"source"`
	Stage      string        `bson:"stage" json:"stage"`
	Value      float64       `bson:"value" json:"value"`
	Notes      string        `bson:"notes,omitempty" json:"notes,omitempty"`
	AssignedTo bson.ObjectID `bson:"assignedTo" json:"assignedTo"`
	CreatedAt  time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Lead sort keys
const (
	LeadSortDate  = "date"
	LeadSortValue = "value"
	LeadSortStage = "stage"
)

type LeadFilter struct {
	Owner    bson.ObjectID
	Stage    string
	Source   string
	Customer *bson.ObjectID
	Search   string
	SortBy   string
	Desc     bool
	Limit    int64
}

type LeadUpdate struct {
	Customer *bson.ObjectID
	Title    *string
	Source   *string
	Stage    *string
	Value    *float64
	Notes    *string
}

type StageSummary struct {
	Stage string  `bson:"_id" json:"stage"`
	Count int64   `bson:"count" json:"count"`
	Value float64 `bson:"value" json:"value"`
}

type DailyPerformance struct {
	Date  string  `bson:"_id" json:"date"`
	Count int64   `bson:"count" json:"count"`
	Value float64 `bson:"value" json:"value"`
}

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	FindOwned(ctx context.Context, id, owner bson.ObjectID) (*Lead, error)
	FindOwnedByIDs(ctx context.Context, owner bson.ObjectID, ids []bson.ObjectID) ([]*Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]*Lead, error)
	Update(ctx context.Context, id, owner bson.ObjectID, update LeadUpdate) (*Lead, error)
	Delete(ctx context.Context, id, owner bson.ObjectID) (bool, error)
	Count(ctx context.Context, owner bson.ObjectID) (int64, error)
	SummarizeByStage(ctx context.Context, owner bson.ObjectID) ([]StageSummary, error)
	DailyPerformance(ctx context.Context, owner bson.ObjectID, since time.Time, loc *time.Location) ([]DailyPerformance, error)
}

type mongoLeadRepository struct {
	coll *mongo.Collection
}

func NewLeadRepository(db *mongo.Database) LeadRepository {
	return &mongoLeadRepository{coll: db.Collection(LeadsCollection)}
}

func (r *mongoLeadRepository) Create(ctx context.Context, lead *Lead) error {
	if lead.ID.IsZero() {
		lead.ID = bson.NewObjectID()
	}
	stamp(&lead.CreatedAt, &lead.UpdatedAt)
	_, err := r.coll.InsertOne(ctx, lead)
	return wrapWriteError(err)
}

func (r *mongoLeadRepository) FindOwned(ctx context.Context, id, owner bson.ObjectID) (*Lead, error) {
	lead := &Lead{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "assignedTo": owner}).Decode(lead)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lead, nil
}

func (r *mongoLeadRepository) FindOwnedByIDs(ctx context.Context, owner bson.ObjectID, ids []bson.ObjectID) ([]*Lead, error) {
	if len(ids) == 0 {
		return []*Lead{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "assignedTo": owner})
	if err != nil {
		return nil, err
	}
	return decodeAll[Lead](ctx, cur)
}

func (r *mongoLeadRepository) List(ctx context.Context, filter LeadFilter) ([]*Lead, error) {
	query := bson.M{"assignedTo": filter.Owner}
	if filter.Stage != "" {
		query["stage"] = filter.Stage
	}
	if filter.Source != "" {
		query["source"] = filter.Source
	}
	if filter.Customer != nil {
		query["customer"] = *filter.Customer
	}
	if filter.Search != "" {
		query["$or"] = searchAny(filter.Search, "title", "notes")
	}

	var (
		cur *mongo.Cursor
		err error
	)
	switch filter.SortBy {
	case LeadSortStage:
		cur, err = r.coll.Aggregate(ctx, rankedPipeline(query, "stage", types.LeadStages, filter.Desc, filter.Limit))
	default:
		field := "createdAt"
		if filter.SortBy == LeadSortValue {
			field = "value"
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
	return decodeAll[Lead](ctx, cur)
}

func (r *mongoLeadRepository) Update(ctx context.Context, id, owner bson.ObjectID, update LeadUpdate) (*Lead, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Customer != nil {
		set["customer"] = *update.Customer
	}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Source != nil {
		set["source"] = *update.Source
	}
	if update.Stage != nil {
		set["stage"] = *update.Stage
	}
	if update.Value != nil {
		set["value"] = *update.Value
	}
	if update.Notes != nil {
		set["notes"] = *update.Notes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	lead := &Lead{}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "assignedTo": owner}, bson.M{"$set": set}, opts).Decode(lead)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWriteError(err)
	}
	return lead, nil
}

func (r *mongoLeadRepository) Delete(ctx context.Context, id, owner bson.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "assignedTo": owner})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoLeadRepository) Count(ctx context.Context, owner bson.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"assignedTo": owner})
}

// SummarizeByStage returns per-stage totals in pipeline order. Stages with no
// leads are omitted.
func (r *mongoLeadRepository) SummarizeByStage(ctx context.Context, owner bson.ObjectID) ([]StageSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"assignedTo": owner}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$stage",
			"count": bson.M{"$sum": 1},
			"value": bson.M{"$sum": "$value"},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	summaries := []StageSummary{}
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, err
	}
	SortStageSummaries(summaries)
	return summaries, nil
}

// DailyPerformance buckets leads created since the given instant by calendar
// day in loc, oldest first.
func (r *mongoLeadRepository) DailyPerformance(ctx context.Context, owner bson.ObjectID, since time.Time, loc *time.Location) ([]DailyPerformance, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"assignedTo": owner,
			"createdAt":  bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{
				"format":   "%Y-%m-%d",
				"date":     "$createdAt",
				"timezone": mongoTimezone(loc, since),
			}},
			"count": bson.M{"$sum": 1},
			"value": bson.M{"$sum": "$value"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	days := []DailyPerformance{}
	if err := cur.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

// SortStageSummaries orders summaries by lead pipeline progression.
func SortStageSummaries(summaries []StageSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return types.Rank(types.LeadStages, summaries[i].Stage) < types.Rank(types.LeadStages, summaries[j].Stage)
	})
}
