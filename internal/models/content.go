package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Publication flags shared by blogs, sliders and testimonials.
const (
	Draft     = 0
	Published = 1
)

type Blog struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Heading     string             `bson:"heading" json:"heading"`
	Description string             `bson:"description" json:"description"`
	Tags        StringList         `bson:"tags" json:"tags"`
	Categories  StringList         `bson:"categories" json:"categories"`
	Image       string             `bson:"image" json:"image"`
	Sts         int                `bson:"sts" json:"sts"`
	PublishDate *time.Time         `bson:"publishDate,omitempty" json:"publishDate,omitempty"`
	CreatedIP   string             `bson:"createdIP,omitempty" json:"-"`
	Audit       `bson:",inline"`
}

// SliderPublishCapacity is how many sliders may be published at once.
const SliderPublishCapacity = 4

type Slider struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Image      string             `bson:"image" json:"image"`
	BrandImg   string             `bson:"brandImg,omitempty" json:"brandImg,omitempty"`
	Subtitle   string             `bson:"subtitle,omitempty" json:"subtitle,omitempty"`
	Title      string             `bson:"title,omitempty" json:"title,omitempty"`
	Alignment  string             `bson:"alignment,omitempty" json:"alignment,omitempty"`
	Price      string             `bson:"price,omitempty" json:"price,omitempty"`
	ButtonText string             `bson:"buttonText,omitempty" json:"buttonText,omitempty"`
	ButtonLink string             `bson:"buttonLink,omitempty" json:"buttonLink,omitempty"`
	Sts        int                `bson:"sts" json:"sts"`
	Audit      `bson:",inline"`
}

type Testimonial struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Profession  string             `bson:"profession,omitempty" json:"profession,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Message     string             `bson:"message" json:"message"`
	Rating      float64            `bson:"rating" json:"rating"`
	Sts         int                `bson:"sts" json:"sts"`
	IP          string             `bson:"ip,omitempty" json:"-"`
	PublishedOn *time.Time         `bson:"publishedOn,omitempty" json:"publishedOn,omitempty"`
	Audit       `bson:",inline"`
}

const (
	Unsubscribed = 0
	Subscribed   = 1
)

type NewsletterSubscriber struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Sts       int                `bson:"sts" json:"sts"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
