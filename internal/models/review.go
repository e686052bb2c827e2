package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RID       int64              `bson:"RID" json:"RID"`
	PID       int64              `bson:"PID" json:"PID"`
	Name      string             `bson:"name" json:"name"`
	Rating    float64            `bson:"rating" json:"rating"`
	Review    string             `bson:"review" json:"review"`
	CreatedIP string             `bson:"createdIP,omitempty" json:"-"`
	Audit     `bson:",inline"`
}
