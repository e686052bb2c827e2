package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// DeleteStatus is the soft-delete flag stored as dlt_sts.
type DeleteStatus int

const (
	Active  DeleteStatus = 0
	Deleted DeleteStatus = 1
)

// Audit is embedded inline in every persisted entity.
type Audit struct {
	CreatedBy string       `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedOn time.Time    `bson:"createdOn" json:"createdOn"`
	UpdatedBy string       `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedOn *time.Time   `bson:"updatedOn,omitempty" json:"updatedOn,omitempty"`
	DeletedBy string       `bson:"deletedBy,omitempty" json:"-"`
	DeletedOn *time.Time   `bson:"deletedOn,omitempty" json:"-"`
	DltSts    DeleteStatus `bson:"dlt_sts" json:"-"`
}

func NewAudit(actor string, now time.Time) Audit {
	return Audit{CreatedBy: actor, CreatedOn: now.UTC(), DltSts: Active}
}

func (a Audit) IsDeleted() bool {
	return a.DltSts == Deleted
}

// ActiveFilter matches records that are not soft-deleted. Legacy documents
// without the flag count as active.
func ActiveFilter() bson.M {
	return bson.M{"dlt_sts": bson.M{"$ne": Deleted}}
}

// WithActive merges the active constraint into filter and returns it.
func WithActive(filter bson.M) bson.M {
	out := bson.M{"dlt_sts": bson.M{"$ne": Deleted}}
	for k, v := range filter {
		out[k] = v
	}
	return out
}

func UpdateStamp(actor string, now time.Time) bson.M {
	return bson.M{"updatedBy": actor, "updatedOn": now.UTC()}
}

func DeleteStamp(actor string, now time.Time) bson.M {
	return bson.M{"dlt_sts": Deleted, "deletedBy": actor, "deletedOn": now.UTC()}
}
