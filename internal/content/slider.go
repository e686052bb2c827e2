package content

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
	"eveningmall/internal/models"
	"eveningmall/internal/slots"
)

const msgSliderMissing = "Slider not found"

type SliderInput struct {
	Image      *string
	BrandImg   *string
	Subtitle   *string
	Title      *string
	Alignment  *string
	Price      *string
	ButtonText *string
	ButtonLink *string
}

func (in SliderInput) set() bson.M {
	set := bson.M{}
	setIfPresent(set, "image", in.Image)
	setIfPresent(set, "brandImg", in.BrandImg)
	setIfPresent(set, "subtitle", in.Subtitle)
	setIfPresent(set, "title", in.Title)
	setIfPresent(set, "alignment", in.Alignment)
	setIfPresent(set, "price", in.Price)
	setIfPresent(set, "buttonText", in.ButtonText)
	setIfPresent(set, "buttonLink", in.ButtonLink)
	return set
}

func publishedSliderRule(exclude primitive.ObjectID) slots.Rule {
	return slots.Rule{
		Key:     "slider:published",
		Members: models.WithActive(bson.M{"sts": models.Published, "_id": bson.M{"$ne": exclude}}),
		Limit:   models.SliderPublishCapacity,
		Message: fmt.Sprintf("Only %d sliders can be published at a time. Please unpublish another slider.", models.SliderPublishCapacity),
	}
}

// CreateSlider stores a draft slider.
func (s *Service) CreateSlider(ctx context.Context, actor string, in SliderInput) (models.Slider, error) {
	if in.Image == nil || strings.TrimSpace(*in.Image) == "" {
		return models.Slider{}, apperr.InvalidInput("Main image is required")
	}
	slider := models.Slider{
		ID:         primitive.NewObjectID(),
		Image:      trimmed(in.Image),
		BrandImg:   trimmed(in.BrandImg),
		Subtitle:   trimmed(in.Subtitle),
		Title:      trimmed(in.Title),
		Alignment:  trimmed(in.Alignment),
		Price:      trimmed(in.Price),
		ButtonText: trimmed(in.ButtonText),
		ButtonLink: trimmed(in.ButtonLink),
		Sts:        models.Draft,
		Audit:      models.NewAudit(actor, s.now()),
	}
	if _, err := s.sliders.InsertOne(ctx, slider); err != nil {
		return models.Slider{}, apperr.FromMongo(err, "")
	}
	return slider, nil
}

func (s *Service) UpdateSlider(ctx context.Context, actor, id string, in SliderInput) (models.Slider, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Slider{}, err
	}
	set := in.set()
	if img, ok := set["image"]; ok && img == "" {
		return models.Slider{}, apperr.InvalidInput("Main image cannot be empty")
	}
	var slider models.Slider
	if err := s.update(ctx, s.sliders, oid, actor, msgSliderMissing, set, &slider); err != nil {
		return models.Slider{}, err
	}
	return slider, nil
}

// ToggleSlider flips draft and published. Publishing claims one of the
// published slots in the same transaction as the flip.
func (s *Service) ToggleSlider(ctx context.Context, actor, id string) (models.Slider, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Slider{}, err
	}
	var slider models.Slider
	err = database.WithTransaction(ctx, s.db, func(sc mongo.SessionContext) error {
		var current models.Slider
		if err := s.sliders.FindOne(sc, models.WithActive(bson.M{"_id": oid})).Decode(&current); err != nil {
			return apperr.FromMongo(err, msgSliderMissing)
		}
		if current.Sts != models.Published {
			if err := slots.Claim(sc, s.db, s.sliders, publishedSliderRule(oid)); err != nil {
				return err
			}
		}
		return s.toggle(sc, s.sliders, oid, actor, msgSliderMissing, nil, &slider)
	})
	if err != nil {
		return models.Slider{}, apperr.FromMongo(err, "")
	}
	return slider, nil
}

func (s *Service) DeleteSlider(ctx context.Context, actor, id string) error {
	return s.softDelete(ctx, s.sliders, id, actor, msgSliderMissing)
}

func (s *Service) PublishedSliders(ctx context.Context) ([]models.Slider, error) {
	sliders := []models.Slider{}
	opts := newestFirst().SetLimit(models.SliderPublishCapacity)
	if err := findAll(ctx, s.sliders, models.WithActive(bson.M{"sts": models.Published}), opts, &sliders); err != nil {
		return nil, err
	}
	return sliders, nil
}

func (s *Service) AllSliders(ctx context.Context) ([]models.Slider, error) {
	sliders := []models.Slider{}
	if err := findAll(ctx, s.sliders, models.ActiveFilter(), newestFirst(), &sliders); err != nil {
		return nil, err
	}
	return sliders, nil
}
