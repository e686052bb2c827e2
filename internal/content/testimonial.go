package content

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
)

const (
	msgTestimonialMissing = "Testimonial not found"

	MinTestimonialRating = 0.5
	MaxTestimonialRating = 5
)

type TestimonialInput struct {
	Name       string
	Profession string
	Image      string
	Message    string
	Rating     float64
	IP         string
}

// SubmitTestimonial stores a draft testimonial awaiting moderation.
func (s *Service) SubmitTestimonial(ctx context.Context, actor string, in TestimonialInput) (models.Testimonial, error) {
	name := strings.TrimSpace(in.Name)
	message := strings.TrimSpace(in.Message)
	if name == "" || message == "" {
		return models.Testimonial{}, apperr.InvalidInput("All required fields must be provided")
	}
	if in.Rating < MinTestimonialRating || in.Rating > MaxTestimonialRating {
		return models.Testimonial{}, apperr.InvalidInput("rating must be between 0.5 and 5")
	}
	t := models.Testimonial{
		ID:         primitive.NewObjectID(),
		Name:       name,
		Profession: strings.TrimSpace(in.Profession),
		Image:      strings.TrimSpace(in.Image),
		Message:    message,
		Rating:     in.Rating,
		Sts:        models.Draft,
		IP:         in.IP,
		Audit:      models.NewAudit(actor, s.now()),
	}
	if _, err := s.testimonials.InsertOne(ctx, t); err != nil {
		return models.Testimonial{}, apperr.FromMongo(err, "")
	}
	return t, nil
}

// ToggleTestimonial flips draft and published, stamping publishedOn when it
// becomes published.
func (s *Service) ToggleTestimonial(ctx context.Context, actor, id string) (models.Testimonial, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Testimonial{}, err
	}
	extra := bson.M{"publishedOn": bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$sts", models.Published}}, "$publishedOn", s.now().UTC(),
	}}}
	var t models.Testimonial
	if err := s.toggle(ctx, s.testimonials, oid, actor, msgTestimonialMissing, extra, &t); err != nil {
		return models.Testimonial{}, err
	}
	return t, nil
}

func (s *Service) DeleteTestimonial(ctx context.Context, actor, id string) error {
	return s.softDelete(ctx, s.testimonials, id, actor, msgTestimonialMissing)
}

func (s *Service) PublishedTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	out := []models.Testimonial{}
	opts := newestFirst().SetProjection(bson.M{"ip": 0})
	if err := findAll(ctx, s.testimonials, models.WithActive(bson.M{"sts": models.Published}), opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) AllTestimonials(ctx context.Context) ([]models.Testimonial, error) {
	out := []models.Testimonial{}
	if err := findAll(ctx, s.testimonials, models.ActiveFilter(), newestFirst(), &out); err != nil {
		return nil, err
	}
	return out, nil
}
