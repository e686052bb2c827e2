// Package sequence allocates the numeric surrogate keys (PID, USID, ...) from
// durable per-entity counters.
package sequence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
)

type Entity string

const (
	Product        Entity = "PID"
	RegisteredUser Entity = "USID"
	Category       Entity = "catId"
	SubCategory    Entity = "subCatId"
	Brand          Entity = "brndId"
	Cart           Entity = "CID"
	Order          Entity = "orderId"
	Review         Entity = "RID"
)

// Seeds is the first value issued per entity.
var Seeds = map[Entity]int64{
	Product:        1,
	Brand:          1,
	Category:       1,
	SubCategory:    1,
	Review:         1,
	RegisteredUser: 1111,
	Cart:           1111,
	Order:          1111,
}

// Allocator issues strictly increasing ids. Each call is a single
// findOneAndUpdate; a failed insert after allocation leaves a gap.
type Allocator struct {
	counters *mongo.Collection
	seeds    map[Entity]int64
}

func New(db *mongo.Database) *Allocator {
	return &Allocator{counters: db.Collection(database.Counters), seeds: Seeds}
}

type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// nextPipeline sets seq to seed on first use and increments it afterwards.
func nextPipeline(seed int64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "seq", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$seq", seed - 1}}},
				int64(1),
			}}}},
		}}},
	}
}

func (a *Allocator) Next(ctx context.Context, entity Entity) (int64, error) {
	seed, ok := a.seeds[entity]
	if !ok {
		return 0, apperr.InvalidInput(fmt.Sprintf("unknown sequence %q", entity))
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var c counter
	err := a.counters.FindOneAndUpdate(ctx, bson.M{"_id": string(entity)}, nextPipeline(seed), opts).Decode(&c)
	if err != nil {
		return 0, apperr.Internal("allocate "+string(entity), err)
	}
	return c.Seq, nil
}
