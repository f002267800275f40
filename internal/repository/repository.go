// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Collection names
const (
	UsersCollection     = "users"
	CustomersCollection = "customers"
	LeadsCollection     = "leads"
	TasksCollection     = "tasks"
)

// ErrDuplicateKey is returned when an insert or update violates a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

func wrapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateKey
	}
	return err
}

// stamp sets both timestamps to now, keeping a preset creation time.
func stamp(createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}

func direction(desc bool) int {
	if desc {
		return -1
	}
	return 1
}

// searchRegex matches q anywhere in a field, case-insensitively.
func searchRegex(q string) bson.Regex {
	return bson.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
}

func searchAny(q string, fields ...string) bson.A {
	or := bson.A{}
	for _, f := range fields {
		or = append(or, bson.M{f: searchRegex(q)})
	}
	return or
}

// rankedPipeline sorts documents by the position of field in order, then by
// newest first.
func rankedPipeline(filter bson.M, field string, order []string, desc bool, limit int64) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{
			"_rank": bson.M{"$indexOfArray": bson.A{order, "$" + field}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_rank", Value: direction(desc)},
			{Key: "createdAt", Value: -1},
		}}},
		{{Key: "$project", Value: bson.M{"_rank": 0}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return pipeline
}

// mongoTimezone converts loc into a value accepted by the aggregation
// date operators. The process-local zone is sent by its IANA name when one can
// be found so Mongo applies DST per document; otherwise it falls back to the
// offset at the given instant.
func mongoTimezone(loc *time.Location, at time.Time) string {
	if loc != nil && loc != time.Local {
		return loc.String()
	}
	if name := localZoneName(); name != "" {
		return name
	}
	_, offset := at.In(time.Local).Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d:%02d", sign, offset/3600, (offset%3600)/60)
}

// localZoneName resolves time.Local the way the runtime does: TZ first, then
// the /etc/localtime link.
func localZoneName() string {
	if tz, ok := os.LookupEnv("TZ"); ok {
		tz = strings.TrimPrefix(tz, ":")
		if tz == "" {
			return "UTC"
		}
		if _, err := time.LoadLocation(tz); err == nil && !strings.HasPrefix(tz, "/") {
			return tz
		}
		return ""
	}
	target, err := os.Readlink("/etc/localtime")
	if err != nil {
		return ""
	}
	_, name, ok := strings.Cut(target, "zoneinfo/")
	if !ok {
		return ""
	}
	if _, err := time.LoadLocation(name); err != nil {
		return ""
	}
	return name
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]*T, error) {
	defer cur.Close(ctx)
	items := []*T{}
	for cur.Next(ctx) {
		item := new(T)
		if err := cur.Decode(item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, cur.Err()
}
