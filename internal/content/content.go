// Package content serves the storefront's editorial records: blogs, home
// sliders, testimonials and newsletter subscriptions.
package content

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
	"eveningmall/internal/models"
)

type Service struct {
	db           *mongo.Database
	blogs        *mongo.Collection
	sliders      *mongo.Collection
	testimonials *mongo.Collection
	newsletters  *mongo.Collection
	now          func() time.Time
}

func NewService(db *mongo.Database) *Service {
	return &Service{
		db:           db,
		blogs:        db.Collection(database.Blogs),
		sliders:      db.Collection(database.Sliders),
		testimonials: db.Collection(database.Testimonials),
		newsletters:  db.Collection(database.Newsletters),
		now:          time.Now,
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, apperr.InvalidInput("invalid id")
	}
	return oid, nil
}

// flipStatus is the pipeline stage that toggles sts between draft and
// published.
func flipStatus() bson.M {
	return bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$sts", models.Published}}, models.Draft, models.Published}}
}

// toggle flips sts on an active record and decodes the result into out.
// extra is merged into the same $set stage.
func (s *Service) toggle(ctx context.Context, coll *mongo.Collection, oid primitive.ObjectID, actor, notFound string, extra bson.M, out interface{}) error {
	set := bson.M{"sts": flipStatus(), "updatedBy": actor, "updatedOn": s.now().UTC()}
	for k, v := range extra {
		set[k] = v
	}
	err := coll.FindOneAndUpdate(ctx,
		models.WithActive(bson.M{"_id": oid}),
		mongo.Pipeline{{{Key: "$set", Value: set}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(out)
	return apperr.FromMongo(err, notFound)
}

func (s *Service) softDelete(ctx context.Context, coll *mongo.Collection, id, actor, notFound string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, models.WithActive(bson.M{"_id": oid}), bson.M{"$set": models.DeleteStamp(actor, s.now())})
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(notFound)
	}
	return nil
}

func (s *Service) update(ctx context.Context, coll *mongo.Collection, oid primitive.ObjectID, actor, notFound string, set bson.M, out interface{}) error {
	for k, v := range models.UpdateStamp(actor, s.now()) {
		set[k] = v
	}
	err := coll.FindOneAndUpdate(ctx,
		models.WithActive(bson.M{"_id": oid}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(out)
	return apperr.FromMongo(err, notFound)
}

func findAll(ctx context.Context, coll *mongo.Collection, filter bson.M, opts *options.FindOptions, out interface{}) error {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return apperr.Internal("find "+coll.Name(), err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return apperr.Internal("decode "+coll.Name(), err)
	}
	return nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}})
}

func setIfPresent(set bson.M, field string, value *string) {
	if value != nil {
		set[field] = strings.TrimSpace(*value)
	}
}

func trimmed(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
