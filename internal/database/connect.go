package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"eveningmall/internal/logger"
)

// Collection names.
const (
	Products      = "products"
	Brands        = "brands"
	Categories    = "categories"
	SubCategories = "subcategories"
	Reviews       = "reviews"
	Carts         = "carts"
	Wishlists     = "wishlists"
	Registered    = "registeredusers"
	Logins        = "loginusers"
	Orders        = "orders"
	Counters      = "counters"
	SlotGuards    = "slot_guards"
	Blogs         = "blogs"
	Sliders       = "sliders"
	Testimonials  = "testimonials"
	Newsletters   = "newsletters"
)

// Connect opens a pooled client and verifies the primary is reachable.
func Connect(uri string) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	logger.Get("database").Info("mongo connected")
	return client, nil
}

func Disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		logger.Get("database").WithError(err).Warn("mongo disconnect failed")
	}
}
