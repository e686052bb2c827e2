package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is one of the six fixed address slots on a profile.
type Address struct {
	FirstName string `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Company   string `bson:"company,omitempty" json:"company,omitempty"`
	Street1   string `bson:"street1,omitempty" json:"street1,omitempty"`
	Street2   string `bson:"street2,omitempty" json:"street2,omitempty"`
	City      string `bson:"city,omitempty" json:"city,omitempty"`
	State     string `bson:"state,omitempty" json:"state,omitempty"`
	Zip       string `bson:"zip,omitempty" json:"zip,omitempty"`
	Country   string `bson:"country,omitempty" json:"country,omitempty"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email     string `bson:"email,omitempty" json:"email,omitempty"`
}

// AddressSlots lists the stored address field names.
var AddressSlots = []string{
	"billingAddress1", "billingAddress2", "billingAddress3",
	"shippingAddress1", "shippingAddress2", "shippingAddress3",
}

func IsAddressSlot(slot string) bool {
	for _, s := range AddressSlots {
		if s == slot {
			return true
		}
	}
	return false
}

const (
	UserUnverified = 0
	UserVerified   = 1
)

// RegisteredUser is the public profile. USID is the key carts, wishlists and
// orders refer to.
type RegisteredUser struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	USID             int64              `bson:"USID" json:"USID"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"-"`
	Mobile           string             `bson:"mobile" json:"mobile"`
	BillingAddress1  *Address           `bson:"billingAddress1,omitempty" json:"billingAddress1,omitempty"`
	BillingAddress2  *Address           `bson:"billingAddress2,omitempty" json:"billingAddress2,omitempty"`
	BillingAddress3  *Address           `bson:"billingAddress3,omitempty" json:"billingAddress3,omitempty"`
	ShippingAddress1 *Address           `bson:"shippingAddress1,omitempty" json:"shippingAddress1,omitempty"`
	ShippingAddress2 *Address           `bson:"shippingAddress2,omitempty" json:"shippingAddress2,omitempty"`
	ShippingAddress3 *Address           `bson:"shippingAddress3,omitempty" json:"shippingAddress3,omitempty"`
	CreatedIP        string             `bson:"createdIP,omitempty" json:"-"`
	UpdatedIP        string             `bson:"updatedIP,omitempty" json:"-"`
	LoginTime        *time.Time         `bson:"loginTime,omitempty" json:"loginTime,omitempty"`
	Logout           *time.Time         `bson:"logout,omitempty" json:"-"`
	Sts              int                `bson:"sts" json:"sts"`
	Audit            `bson:",inline"`
}

// Address returns the address stored in slot, or nil.
func (u RegisteredUser) Address(slot string) *Address {
	switch slot {
	case "billingAddress1":
		return u.BillingAddress1
	case "billingAddress2":
		return u.BillingAddress2
	case "billingAddress3":
		return u.BillingAddress3
	case "shippingAddress1":
		return u.ShippingAddress1
	case "shippingAddress2":
		return u.ShippingAddress2
	case "shippingAddress3":
		return u.ShippingAddress3
	}
	return nil
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// LoginUser holds credentials. Email is sealed and only used for credential
// lookup; the profile is reached through USID.
type LoginUser struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	USID            int64              `bson:"usid" json:"usid"`
	Email           string             `bson:"email" json:"-"`
	PasswordHash    string             `bson:"password" json:"-"`
	Role            string             `bson:"role" json:"role"`
	IP              string             `bson:"ip,omitempty" json:"-"`
	LoginTime       *time.Time         `bson:"loginTime,omitempty" json:"loginTime,omitempty"`
	DailyLoginCount int64              `bson:"dailyLoginCount" json:"dailyLoginCount"`
	Logout          *time.Time         `bson:"logout,omitempty" json:"-"`
	Sts             int                `bson:"sts" json:"sts"`
	Audit           `bson:",inline"`
}
