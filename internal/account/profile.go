package account

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
	"eveningmall/internal/security"
)

// Profile is a registered user with the email opened for display.
type Profile struct {
	models.RegisteredUser
	Email string `json:"email"`
}

func (s *Service) profile(ctx context.Context, usid int64) (models.RegisteredUser, error) {
	var user models.RegisteredUser
	if usid <= 0 {
		return user, apperr.NotFound(msgUserMissing)
	}
	err := s.registered.FindOne(ctx, models.WithActive(bson.M{"USID": usid})).Decode(&user)
	if err != nil {
		return user, apperr.FromMongo(err, msgUserMissing)
	}
	return user, nil
}

func (s *Service) Profile(ctx context.Context, usid int64) (Profile, error) {
	user, err := s.profile(ctx, usid)
	if err != nil {
		return Profile{}, err
	}
	email, err := s.sealer.Open(user.Email)
	if err != nil {
		return Profile{}, apperr.Internal("open email", err)
	}
	return Profile{RegisteredUser: user, Email: email}, nil
}

// UpdateProfile changes the fields that are present.
func (s *Service) UpdateProfile(ctx context.Context, usid int64, name, mobile *string) (Profile, error) {
	set := models.UpdateStamp("self", s.now())
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return Profile{}, apperr.InvalidInput("name cannot be empty")
		}
		set["name"] = n
	}
	if mobile != nil {
		set["mobile"] = strings.TrimSpace(*mobile)
	}

	res, err := s.registered.UpdateOne(ctx, models.WithActive(bson.M{"USID": usid}), bson.M{"$set": set})
	if err != nil {
		return Profile{}, apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return Profile{}, apperr.NotFound(msgUserMissing)
	}
	return s.Profile(ctx, usid)
}

func (s *Service) ChangePassword(ctx context.Context, loginID primitive.ObjectID, current, next string) error {
	var login models.LoginUser
	if err := s.logins.FindOne(ctx, bson.M{"_id": loginID}).Decode(&login); err != nil {
		return apperr.FromMongo(err, msgUserMissing)
	}
	if !security.CheckPassword(login.PasswordHash, current) {
		return apperr.Unauthorized("Current password is incorrect")
	}
	hash, err := security.HashPassword(next)
	if errors.Is(err, security.ErrWeakPassword) {
		return apperr.InvalidInput(err.Error())
	}
	if err != nil {
		return apperr.Internal("hash password", err)
	}

	set := models.UpdateStamp("self", s.now())
	set["password"] = hash
	if _, err := s.logins.UpdateOne(ctx, bson.M{"_id": loginID}, bson.M{"$set": set}); err != nil {
		return apperr.FromMongo(err, "")
	}
	return nil
}

func (s *Service) Address(ctx context.Context, usid int64, slot string) (*models.Address, error) {
	if !models.IsAddressSlot(slot) {
		return nil, apperr.InvalidInput("unknown address slot")
	}
	user, err := s.profile(ctx, usid)
	if err != nil {
		return nil, err
	}
	addr := user.Address(slot)
	if addr == nil {
		return nil, apperr.NotFound("Address not found")
	}
	return addr, nil
}

func (s *Service) SaveAddress(ctx context.Context, usid int64, slot string, addr models.Address) error {
	if !models.IsAddressSlot(slot) {
		return apperr.InvalidInput("unknown address slot")
	}
	set := models.UpdateStamp("self", s.now())
	set[slot] = addr
	res, err := s.registered.UpdateOne(ctx, models.WithActive(bson.M{"USID": usid}), bson.M{"$set": set})
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(msgUserMissing)
	}
	return nil
}

// DisplayName is the name reviews are signed with. Unknown users get a
// placeholder rather than an error.
func (s *Service) DisplayName(ctx context.Context, usid int64) (string, error) {
	user, err := s.profile(ctx, usid)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return fallbackName, nil
	}
	if err != nil {
		return "", err
	}
	return user.Name, nil
}
