package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAuditIsInlinedIntoEntities(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	brand := Brand{BrndID: 3, Name: "Nike", Audit: NewAudit("admin", now)}

	raw, err := bson.Marshal(brand)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "admin", doc["createdBy"])
	assert.EqualValues(t, Active, doc["dlt_sts"])
	assert.NotContains(t, doc, "Audit")
	assert.NotContains(t, doc, "deletedOn")
}

func TestWithActiveKeepsCallerFilter(t *testing.T) {
	filter := WithActive(bson.M{"PID": int64(7)})

	assert.Equal(t, int64(7), filter["PID"])
	assert.Equal(t, bson.M{"$ne": Deleted}, filter["dlt_sts"])
}

func TestDeleteStampMarksDeleted(t *testing.T) {
	stamp := DeleteStamp("admin", time.Now())

	assert.Equal(t, Deleted, stamp["dlt_sts"])
	assert.Equal(t, "admin", stamp["deletedBy"])
	assert.Contains(t, stamp, "deletedOn")
}

func TestStringListDecodesLegacyCommaString(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"tags": "shoes, running ,, sale"})
	require.NoError(t, err)

	var p Product
	require.NoError(t, bson.Unmarshal(raw, &p))
	assert.Equal(t, StringList{"shoes", "running", "sale"}, p.Tags)
}

func TestStringListDecodesArray(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"tags": []string{"a", "b"}})
	require.NoError(t, err)

	var p Product
	require.NoError(t, bson.Unmarshal(raw, &p))
	assert.Equal(t, StringList{"a", "b"}, p.Tags)
}

func TestStringListNilMarshalsAsEmptyArray(t *testing.T) {
	raw, err := bson.Marshal(Product{Name: "x"})
	require.NoError(t, err)

	tags, err := bson.Raw(raw).LookupErr("tags")
	require.NoError(t, err)
	assert.Equal(t, bson.TypeArray, tags.Type)
}

func TestParseProductType(t *testing.T) {
	for input, want := range map[string]ProductType{
		"":          ProductTypeNone,
		"Featured":  ProductTypeFeatured,
		" trending": ProductTypeTrending,
	} {
		got, ok := ParseProductType(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got)
	}

	_, ok := ParseProductType("trendy")
	assert.False(t, ok)
}

func TestCartItemAndWishlistContains(t *testing.T) {
	cart := Cart{Items: []LineItem{{ProductID: 7, Quantity: 2}}}
	item, ok := cart.Item(7)
	assert.True(t, ok)
	assert.Equal(t, 2, item.Quantity)
	_, ok = cart.Item(8)
	assert.False(t, ok)

	wishlist := Wishlist{Items: []LineItem{{ProductID: 4}}}
	assert.True(t, wishlist.Contains(4))
	assert.False(t, wishlist.Contains(5))
}

func TestAddressSlots(t *testing.T) {
	assert.True(t, IsAddressSlot("shippingAddress2"))
	assert.False(t, IsAddressSlot("shippingAddress4"))

	addr := &Address{City: "Pune"}
	user := RegisteredUser{BillingAddress3: addr}
	assert.Same(t, addr, user.Address("billingAddress3"))
	assert.Nil(t, user.Address("billingAddress1"))
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderShipped.Valid())
	assert.False(t, OrderStatus("lost").Valid())
}
