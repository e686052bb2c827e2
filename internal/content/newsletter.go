package content

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
)

// Subscribe (re)activates the address. Subscribing twice is a Conflict.
func (s *Service) Subscribe(ctx context.Context, email string) (models.NewsletterSubscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return models.NewsletterSubscriber{}, apperr.InvalidInput("Email is required.")
	}
	now := s.now().UTC()

	var before models.NewsletterSubscriber
	err := s.newsletters.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{
			"$set":         bson.M{"sts": models.Subscribed, "updatedAt": now},
			"$setOnInsert": bson.M{"createdAt": now},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before),
	).Decode(&before)

	switch {
	case err == nil && before.Sts == models.Subscribed:
		return models.NewsletterSubscriber{}, apperr.Conflict("Already subscribed.")
	case err == nil:
		before.Sts = models.Subscribed
		before.UpdatedAt = now
		return before, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		// upserted
		var created models.NewsletterSubscriber
		if err := s.newsletters.FindOne(ctx, bson.M{"email": email}).Decode(&created); err != nil {
			return models.NewsletterSubscriber{}, apperr.FromMongo(err, "")
		}
		return created, nil
	default:
		return models.NewsletterSubscriber{}, apperr.FromMongo(err, "")
	}
}

// Unsubscribe deactivates the subscription with the given id.
func (s *Service) Unsubscribe(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := s.newsletters.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"sts": models.Unsubscribed, "updatedAt": s.now().UTC()}},
	)
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Invalid unsubscribe link.")
	}
	return nil
}
