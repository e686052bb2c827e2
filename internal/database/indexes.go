package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/logger"
)

// CaseInsensitive is the collation used for taxonomy names. Queries that must
// hit the name indexes use the same collation.
var CaseInsensitive = &options.Collation{Locale: "en", Strength: 2}

func unique(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name).SetUnique(true),
	}
}

// activeUniqueName enforces one active record per (scope, name), compared
// case-insensitively.
func activeUniqueName(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{
		Keys: keys,
		Options: options.Index().
			SetName(name).
			SetUnique(true).
			SetCollation(CaseInsensitive).
			SetPartialFilterExpression(bson.M{"dlt_sts": 0}),
	}
}

func plain(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func ensure(db *mongo.Database, collection string, models ...mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log := logger.Get("database").WithField("collection", collection)
	log.Debugf("creating %d indexes", len(models))
	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		log.WithError(err).Error("index creation failed")
		return err
	}
	log.WithField("indexes", names).Info("indexes ensured")
	return nil
}

func EnsureCatalogIndexes(db *mongo.Database) error {
	if err := ensure(db, Products,
		unique("PID_unique", bson.D{{Key: "PID", Value: 1}}),
		plain("prdType_dlt_sts", bson.D{{Key: "prdType", Value: 1}, {Key: "dlt_sts", Value: 1}}),
		plain("createdOn_desc", bson.D{{Key: "createdOn", Value: -1}}),
		plain("avgRtng_desc", bson.D{{Key: "avgRtng", Value: -1}}),
	); err != nil {
		return err
	}
	if err := ensure(db, Brands,
		unique("brndId_unique", bson.D{{Key: "brndId", Value: 1}}),
		activeUniqueName("name_active_unique", bson.D{{Key: "name", Value: 1}}),
	); err != nil {
		return err
	}
	if err := ensure(db, Categories,
		unique("catId_unique", bson.D{{Key: "catId", Value: 1}}),
		activeUniqueName("name_active_unique", bson.D{{Key: "name", Value: 1}}),
	); err != nil {
		return err
	}
	if err := ensure(db, SubCategories,
		unique("subCatId_unique", bson.D{{Key: "subCatId", Value: 1}}),
		activeUniqueName("catId_name_active_unique", bson.D{{Key: "catId", Value: 1}, {Key: "name", Value: 1}}),
	); err != nil {
		return err
	}
	return ensure(db, Reviews,
		unique("RID_unique", bson.D{{Key: "RID", Value: 1}}),
		plain("PID_dlt_sts", bson.D{{Key: "PID", Value: 1}, {Key: "dlt_sts", Value: 1}}),
	)
}

func EnsureUserIndexes(db *mongo.Database) error {
	if err := ensure(db, Registered,
		unique("USID_unique", bson.D{{Key: "USID", Value: 1}}),
		unique("email_unique", bson.D{{Key: "email", Value: 1}}),
	); err != nil {
		return err
	}
	if err := ensure(db, Logins,
		unique("email_unique", bson.D{{Key: "email", Value: 1}}),
		unique("usid_unique", bson.D{{Key: "usid", Value: 1}}),
	); err != nil {
		return err
	}
	if err := ensure(db, Carts,
		unique("userId_unique", bson.D{{Key: "userId", Value: 1}}),
		unique("CID_unique", bson.D{{Key: "CID", Value: 1}}),
	); err != nil {
		return err
	}
	return ensure(db, Wishlists,
		unique("userId_unique", bson.D{{Key: "userId", Value: 1}}),
	)
}

func EnsureOrderIndexes(db *mongo.Database) error {
	return ensure(db, Orders,
		unique("orderId_unique", bson.D{{Key: "orderId", Value: 1}}),
		plain("userId_createdOn", bson.D{{Key: "userId", Value: 1}, {Key: "createdOn", Value: -1}}),
	)
}

func EnsureContentIndexes(db *mongo.Database) error {
	if err := ensure(db, Newsletters,
		unique("email_unique", bson.D{{Key: "email", Value: 1}}),
	); err != nil {
		return err
	}
	if err := ensure(db, Sliders,
		plain("sts_dlt_sts", bson.D{{Key: "sts", Value: 1}, {Key: "dlt_sts", Value: 1}}),
	); err != nil {
		return err
	}
	// Slot guards are upserted inside transactions; the collection has to exist first.
	return ensure(db, SlotGuards,
		plain("updatedOn", bson.D{{Key: "updatedOn", Value: 1}}),
	)
}

// EnsureIndexes runs every Ensure*Indexes. Failures are logged and the first
// one is returned.
func EnsureIndexes(db *mongo.Database) error {
	var first error
	for _, fn := range []func(*mongo.Database) error{
		EnsureCatalogIndexes,
		EnsureUserIndexes,
		EnsureOrderIndexes,
		EnsureContentIndexes,
	} {
		if err := fn(db); err != nil && first == nil {
			first = err
		}
	}
	return first
}
