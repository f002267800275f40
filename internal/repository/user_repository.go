package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type User struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email     string        `bson:"email" json:"email"`
	Password  string        `bson:"password" json:"-"`
	Name      string        `bson:"name" json:"name"`
	Role      string        `bson:"role" json:"role"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Count(ctx context.Context) (int64, error)
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *User) error {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	stamp(&user.CreatedAt, &user.UpdatedAt)
	_, err := r.coll.InsertOne(ctx, user)
	return wrapWriteError(err)
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByEmail expects an already normalized (lower-cased) address.
func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]*User, error) {
	if len(ids) == 0 {
		return []*User{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return decodeAll[User](ctx, cur)
}

func (r *mongoUserRepository) Update(ctx context.Context, user *User) error {
	user.UpdatedAt = time.Now().UTC()
	_, err := r.coll.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"email":     user.Email,
		"name":      user.Name,
		"password":  user.Password,
		"role":      user.Role,
		"updatedAt": user.UpdatedAt,
	}})
	return wrapWriteError(err)
}

func (r *mongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	user := &User{}
	err := r.coll.FindOne(ctx, filter).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
