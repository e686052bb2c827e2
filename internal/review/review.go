// Package review stores product reviews and keeps each product's avgRtng and
// reviewCount in step with its active reviews.
package review

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
	"eveningmall/internal/logger"
	"eveningmall/internal/models"
	"eveningmall/internal/sequence"
)

const (
	MinRating     = 1.0
	MaxRating     = 5.0
	anonymousName = "Unknown"
)

type Allocator interface {
	Next(ctx context.Context, entity sequence.Entity) (int64, error)
}

type Submission struct {
	PID    int64
	Rating float64
	Text   string
	// Name is the reviewer's display name at submission time.
	Name string
	IP   string
}

type Result struct {
	NewAverage float64 `json:"avgRating"`
	NewCount   int64   `json:"reviewCount"`
}

type Breakdown struct {
	Total            int64           `json:"total"`
	Counts           map[int]int64   `json:"breakdown"`
	PercentBreakdown map[int]float64 `json:"percentBreakdown"`
}

type Service struct {
	db       *mongo.Database
	reviews  *mongo.Collection
	products *mongo.Collection
	ids      Allocator
	now      func() time.Time
}

func NewService(db *mongo.Database, ids Allocator) *Service {
	return &Service{
		db:       db,
		reviews:  db.Collection(database.Reviews),
		products: db.Collection(database.Products),
		ids:      ids,
		now:      time.Now,
	}
}

func (sub Submission) validate() error {
	if sub.PID <= 0 {
		return apperr.InvalidInput("PID is required")
	}
	if sub.Rating < MinRating || sub.Rating > MaxRating {
		return apperr.InvalidInput("rating must be between 1 and 5")
	}
	if strings.TrimSpace(sub.Text) == "" {
		return apperr.InvalidInput("review is required")
	}
	return nil
}

// Record stores the review and recomputes the product's aggregate from every
// active review in the same transaction.
func (s *Service) Record(ctx context.Context, sub Submission) (Result, error) {
	if err := sub.validate(); err != nil {
		return Result{}, err
	}
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		name = anonymousName
	}

	rid, err := s.ids.Next(ctx, sequence.Review)
	if err != nil {
		return Result{}, err
	}

	now := s.now()
	doc := models.Review{
		RID:       rid,
		PID:       sub.PID,
		Name:      name,
		Rating:    sub.Rating,
		Review:    strings.TrimSpace(sub.Text),
		CreatedIP: sub.IP,
		Audit:     models.NewAudit(name, now),
	}

	var result Result
	err = database.WithTransaction(ctx, s.db, func(sc mongo.SessionContext) error {
		n, err := s.products.CountDocuments(sc, models.WithActive(bson.M{"PID": sub.PID}))
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound("Product not found")
		}

		if _, err := s.reviews.InsertOne(sc, doc); err != nil {
			return err
		}

		avg, count, err := s.aggregate(sc, sub.PID)
		if err != nil {
			return err
		}

		set := models.UpdateStamp(name, now)
		set["avgRtng"] = avg
		set["reviewCount"] = count
		if _, err := s.products.UpdateOne(sc, models.WithActive(bson.M{"PID": sub.PID}), bson.M{"$set": set}); err != nil {
			return err
		}
		result = Result{NewAverage: avg, NewCount: count}
		return nil
	})
	if err != nil {
		return Result{}, apperr.FromMongo(err, "Product not found")
	}

	logger.Get("review").WithFields(map[string]interface{}{
		"PID": sub.PID, "RID": rid, "avgRtng": result.NewAverage,
	}).Info("review recorded")
	return result, nil
}

// aggregate returns the rounded mean and the count of the product's active
// reviews.
func (s *Service) aggregate(ctx context.Context, pid int64) (float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: models.WithActive(bson.M{"PID": pid})}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$rating"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := s.reviews.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		return 0, 0, nil
	}
	return RoundTo(rows[0].Avg, 2), rows[0].Count, nil
}

func RoundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Histogram buckets ratings by floor(rating) clamped to 1..5, so the buckets
// always sum to len(ratings).
func Histogram(ratings []float64) map[int]int64 {
	out := map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range ratings {
		star := int(math.Floor(r))
		star = max(1, min(5, star))
		out[star]++
	}
	return out
}

// Percentages converts counts to percent of total with one decimal. All
// values are 0 when total is 0.
func Percentages(hist map[int]int64, total int64) map[int]float64 {
	out := map[int]float64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	if total <= 0 {
		return out
	}
	for star := 1; star <= 5; star++ {
		pct := decimal.NewFromInt(hist[star]).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(total))
		out[star] = pct.Round(1).InexactFloat64()
	}
	return out
}

func (s *Service) Breakdown(ctx context.Context, pid int64) (Breakdown, error) {
	if pid <= 0 {
		return Breakdown{}, apperr.InvalidInput("Product ID is required")
	}
	opts := options.Find().SetProjection(bson.M{"rating": 1})
	cursor, err := s.reviews.Find(ctx, models.WithActive(bson.M{"PID": pid}), opts)
	if err != nil {
		return Breakdown{}, apperr.Internal("find reviews", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Rating float64 `bson:"rating"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return Breakdown{}, apperr.Internal("decode reviews", err)
	}

	ratings := make([]float64, 0, len(rows))
	for _, r := range rows {
		ratings = append(ratings, r.Rating)
	}
	hist := Histogram(ratings)
	total := int64(len(ratings))
	return Breakdown{Total: total, Counts: hist, PercentBreakdown: Percentages(hist, total)}, nil
}

// ListByProduct returns active reviews, newest first.
func (s *Service) ListByProduct(ctx context.Context, pid int64) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}})
	cursor, err := s.reviews.Find(ctx, models.WithActive(bson.M{"PID": pid}), opts)
	if err != nil {
		return nil, apperr.Internal("find reviews", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, apperr.Internal("decode reviews", err)
	}
	return reviews, nil
}
