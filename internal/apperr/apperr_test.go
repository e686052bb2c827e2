package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestKindOfFollowsWrapping(t *testing.T) {
	base := NotFound("Cart not found")
	wrapped := fmt.Errorf("remove item: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "Cart not found", MessageOf(wrapped))
	assert.True(t, errors.Is(wrapped, base))
}

func TestKindOfPlainErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal server error", MessageOf(err))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindInvalidInput: http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), kind.String())
	}
}

func TestFromMongo(t *testing.T) {
	assert.Nil(t, FromMongo(nil, "x"))

	err := FromMongo(mongo.ErrNoDocuments, "Product not found")
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Product not found", MessageOf(err))

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.Equal(t, KindConflict, KindOf(FromMongo(dup, "x")))

	assert.Equal(t, KindInternal, KindOf(FromMongo(errors.New("socket closed"), "x")))

	already := InvalidInput("bad")
	assert.Same(t, already, FromMongo(already, "x"))
}
