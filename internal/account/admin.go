package account

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
)

// UserSummary is one row of the admin user directory.
type UserSummary struct {
	USID       int64      `json:"uid"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Mobile     string     `json:"mobile"`
	CreatedIP  string     `json:"createdIp"`
	CreatedOn  time.Time  `json:"createdAt"`
	LoginTime  *time.Time `json:"loginTime,omitempty"`
	LoginCount int64      `json:"loginCount"`
	Status     string     `json:"status"`
}

func statusLabel(sts int) string {
	if sts == models.UserVerified {
		return "Active"
	}
	return "Inactive"
}

// Users lists shopper accounts joined with their profiles, newest first.
// Emails are opened for display; an unreadable email is shown as "-".
func (s *Service) Users(ctx context.Context) ([]UserSummary, error) {
	cursor, err := s.registered.Find(ctx, models.ActiveFilter(),
		options.Find().SetSort(bson.D{{Key: "createdOn", Value: -1}}))
	if err != nil {
		return nil, apperr.Internal("find users", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.RegisteredUser
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, apperr.Internal("decode users", err)
	}

	usids := make([]int64, 0, len(profiles))
	for _, p := range profiles {
		usids = append(usids, p.USID)
	}
	logins, err := s.loginsByUSID(ctx, usids)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(profiles))
	for _, p := range profiles {
		login, ok := logins[p.USID]
		if ok && login.Role != models.RoleUser {
			continue
		}
		email, err := s.sealer.Open(p.Email)
		if err != nil {
			email = "-"
		}
		row := UserSummary{
			USID:      p.USID,
			Name:      p.Name,
			Email:     email,
			Mobile:    p.Mobile,
			CreatedIP: p.CreatedIP,
			CreatedOn: p.CreatedOn,
			LoginTime: p.LoginTime,
			Status:    statusLabel(p.Sts),
		}
		if ok {
			row.LoginCount = login.DailyLoginCount
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *Service) loginsByUSID(ctx context.Context, usids []int64) (map[int64]models.LoginUser, error) {
	out := make(map[int64]models.LoginUser, len(usids))
	if len(usids) == 0 {
		return out, nil
	}
	cursor, err := s.logins.Find(ctx, bson.M{"usid": bson.M{"$in": usids}})
	if err != nil {
		return nil, apperr.Internal("find logins", err)
	}
	defer cursor.Close(ctx)

	var logins []models.LoginUser
	if err := cursor.All(ctx, &logins); err != nil {
		return nil, apperr.Internal("decode logins", err)
	}
	for _, l := range logins {
		out[l.USID] = l
	}
	return out, nil
}

// ToggleUserStatus flips a profile between verified and unverified and
// returns the new label.
func (s *Service) ToggleUserStatus(ctx context.Context, actor string, usid int64) (string, error) {
	flip := bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$sts", models.UserVerified}}, models.UserUnverified, models.UserVerified,
	}}
	var user models.RegisteredUser
	err := s.registered.FindOneAndUpdate(ctx,
		models.WithActive(bson.M{"USID": usid}),
		mongo.Pipeline{{{Key: "$set", Value: bson.M{
			"sts":       flip,
			"updatedBy": actor,
			"updatedOn": s.now().UTC(),
		}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return "", apperr.FromMongo(err, "Registered user not found")
	}
	return statusLabel(user.Sts), nil
}
