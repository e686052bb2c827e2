package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidToken = errors.New("invalid token")

// Identity is what an access token asserts about its holder. LoginID is the
// credentials record; USID is the profile key carts and orders use.
type Identity struct {
	LoginID primitive.ObjectID
	USID    int64
	Role    string
	Email   string
}

func IssueToken(secret string, ttl time.Duration, id Identity) (string, error) {
	claims := jwt.MapClaims{
		"userId": id.LoginID.Hex(),
		"usid":   id.USID,
		"role":   id.Role,
		"email":  id.Email,
		"exp":    time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, raw string) (Identity, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	hex, _ := claims["userId"].(string)
	loginID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: userId claim", ErrInvalidToken)
	}

	id := Identity{LoginID: loginID}
	id.Role, _ = claims["role"].(string)
	id.Email, _ = claims["email"].(string)
	// Numeric claims decode as float64.
	if usid, ok := claims["usid"].(float64); ok {
		id.USID = int64(usid)
	}
	return id, nil
}
