package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Brand struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BrndID int64              `bson:"brndId" json:"brndId"`
	Name   string             `bson:"name" json:"name"`
	Audit  `bson:",inline"`
}

type Category struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CatID int64              `bson:"catId" json:"catId"`
	Name  string             `bson:"name" json:"name"`
	Audit `bson:",inline"`
}

// SubCategory names are unique within their parent category.
type SubCategory struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SubCatID int64              `bson:"subCatId" json:"subCatId"`
	CatID    int64              `bson:"catId" json:"catId"`
	Name     string             `bson:"name" json:"name"`
	Audit    `bson:",inline"`
}
