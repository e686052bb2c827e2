// Package slots enforces "at most N active members" rules such as the
// prdType and published-slider caps.
package slots

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
)

// Rule describes one capped slot.
type Rule struct {
	// Key names the guard document, e.g. "prdType:featured".
	Key string
	// Members is the filter selecting current members, already restricted to
	// active records and excluding the record being written.
	Members bson.M
	Limit   int64
	Message string
}

// Claim must run inside a transaction (ctx is the session context). It bumps
// the guard document first so that two transactions claiming the same slot
// conflict on write, then counts members.
func Claim(ctx context.Context, db *mongo.Database, members *mongo.Collection, rule Rule) error {
	guard := db.Collection(database.SlotGuards)
	_, err := guard.UpdateOne(ctx,
		bson.M{"_id": rule.Key},
		bson.M{
			"$inc": bson.M{"version": 1},
			"$set": bson.M{"updatedOn": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("bump slot guard %s: %w", rule.Key, err)
	}

	count, err := members.CountDocuments(ctx, rule.Members)
	if err != nil {
		return fmt.Errorf("count slot members %s: %w", rule.Key, err)
	}
	return Check(count, rule)
}

// Check reports Conflict when count already fills the slot.
func Check(count int64, rule Rule) error {
	if count >= rule.Limit {
		msg := rule.Message
		if msg == "" {
			msg = fmt.Sprintf("%s is full (max %d)", rule.Key, rule.Limit)
		}
		return apperr.Conflict(msg)
	}
	return nil
}
