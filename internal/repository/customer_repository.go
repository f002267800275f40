package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Interaction struct {
	ID    bson.ObjectID `bson:"_id" json:"_id"`
	Type  string        `bson:"type" json:"type"`
	Date  time.Time     `bson:"date" json:"date"`
	Notes string        `bson:"notes,omitempty" json:"notes,omitempty"`
}

type Customer struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	Phone        string        `bson:"phone,omitempty" json:"phone,omitempty"`
	Company      string        `bson:"company,omitempty" json:"company,omitempty"`
	Interactions []Interaction `bson:"interactions" json:"interactions"`
	CreatedBy    bson.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type CustomerFilter struct {
	Owner  bson.ObjectID
	Search string
	Limit  int64
}

// CustomerUpdate carries only the fields present in a partial update.
type CustomerUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Company *string
}

type CustomerRepository interface {
	Create(ctx context.Context, customer *Customer) error
	FindOwned(ctx context.Context, id, owner bson.ObjectID) (*Customer, error)
	FindOwnedByIDs(ctx context.Context, owner bson.ObjectID, ids []bson.ObjectID) ([]*Customer, error)
	List(ctx context.Context, filter CustomerFilter) ([]*Customer, error)
	Update(ctx context.Context, id, owner bson.ObjectID, update CustomerUpdate) (*Customer, error)
	AddInteraction(ctx context.Context, id, owner bson.ObjectID, interaction Interaction) (*Customer, error)
	Delete(ctx context.Context, id, owner bson.ObjectID) (bool, error)
	Count(ctx context.Context, owner bson.ObjectID) (int64, error)
}

type mongoCustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) CustomerRepository {
	return &mongoCustomerRepository{coll: db.Collection(CustomersCollection)}
}

func (r *mongoCustomerRepository) Create(ctx context.Context, customer *Customer) error {
	if customer.ID.IsZero() {
		customer.ID = bson.NewObjectID()
	}
	if customer.Interactions == nil {
		customer.Interactions = []Interaction{}
	}
	stamp(&customer.CreatedAt, &customer.UpdatedAt)
	_, err := r.coll.InsertOne(ctx, customer)
	return wrapWriteError(err)
}

func (r *mongoCustomerRepository) FindOwned(ctx context.Context, id, owner bson.ObjectID) (*Customer, error) {
	c := &Customer{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "createdBy": owner}).Decode(c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *mongoCustomerRepository) FindOwnedByIDs(ctx context.Context, owner bson.ObjectID, ids []bson.ObjectID) ([]*Customer, error) {
	if len(ids) == 0 {
		return []*Customer{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "createdBy": owner})
	if err != nil {
		return nil, err
	}
	return decodeAll[Customer](ctx, cur)
}

func (r *mongoCustomerRepository) List(ctx context.Context, filter CustomerFilter) ([]*Customer, error) {
	query := bson.M{"createdBy": filter.Owner}
	if filter.Search != "" {
		query["$or"] = searchAny(filter.Search, "name", "email", "company")
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[Customer](ctx, cur)
}

func (r *mongoCustomerRepository) Update(ctx context.Context, id, owner bson.ObjectID, update CustomerUpdate) (*Customer, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.Company != nil {
		set["company"] = *update.Company
	}
	return r.findAndUpdate(ctx, id, owner, bson.M{"$set": set})
}

func (r *mongoCustomerRepository) AddInteraction(ctx context.Context, id, owner bson.ObjectID, interaction Interaction) (*Customer, error) {
	if interaction.ID.IsZero() {
		interaction.ID = bson.NewObjectID()
	}
	return r.findAndUpdate(ctx, id, owner, bson.M{
		"$push": bson.M{"interactions": interaction},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *mongoCustomerRepository) Delete(ctx context.Context, id, owner bson.ObjectID) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "createdBy": owner})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoCustomerRepository) Count(ctx context.Context, owner bson.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"createdBy": owner})
}

func (r *mongoCustomerRepository) findAndUpdate(ctx context.Context, id, owner bson.ObjectID, update bson.M) (*Customer, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	c := &Customer{}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "createdBy": owner}, update, opts).Decode(c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapWriteError(err)
	}
	return c, nil
}
