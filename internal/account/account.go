// Package account manages the two records behind every shopper: the
// credentials record (LoginUser) and the profile (RegisteredUser). They are
// linked by the usid stored on the credentials record.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
	"eveningmall/internal/logger"
	"eveningmall/internal/models"
	"eveningmall/internal/security"
	"eveningmall/internal/sequence"
)

const (
	msgBadCredentials = "Invalid email or password"
	msgInactive       = "Account is inactive. Please verify the account or contact support."
	msgUserMissing    = "User not found"
	fallbackName      = "Unknown"
)

type Allocator interface {
	Next(ctx context.Context, entity sequence.Entity) (int64, error)
}

// Sealer seals emails for storage and lookup.
type Sealer interface {
	Seal(email string) (string, error)
	Open(sealed string) (string, error)
}

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type Service struct {
	db         *mongo.Database
	registered *mongo.Collection
	logins     *mongo.Collection
	sealer     Sealer
	ids        Allocator
	tokens     TokenConfig
	backendURL string
	now        func() time.Time
}

func NewService(db *mongo.Database, sealer Sealer, ids Allocator, tokens TokenConfig, backendURL string) *Service {
	return &Service{
		db:         db,
		registered: db.Collection(database.Registered),
		logins:     db.Collection(database.Logins),
		sealer:     sealer,
		ids:        ids,
		tokens:     tokens,
		backendURL: strings.TrimRight(backendURL, "/"),
		now:        time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Mobile   string
	Password string
	// Optional first address, stored as billingAddress1 and shippingAddress1.
	Country string
	Place   string
	Address string
	Pincode string
	IP      string
}

func (in RegisterInput) firstAddress() *models.Address {
	if strings.TrimSpace(in.Address) == "" && in.Place == "" && in.Pincode == "" && in.Country == "" {
		return nil
	}
	parts := strings.Fields(strings.TrimSpace(in.Name))
	addr := &models.Address{
		City:    strings.TrimSpace(in.Place),
		Zip:     strings.TrimSpace(in.Pincode),
		Country: strings.TrimSpace(in.Country),
		Phone:   strings.TrimSpace(in.Mobile),
		Email:   security.NormalizeEmail(in.Email),
	}
	if len(parts) > 0 {
		addr.FirstName = parts[0]
		addr.LastName = strings.Join(parts[1:], " ")
	}
	lines := strings.Split(in.Address, ",")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	addr.Street1 = lines[0]
	if len(lines) > 1 {
		addr.Street2 = strings.Join(lines[1:], ", ")
	}
	return addr
}

// Register creates the profile and the credentials record in one
// transaction. The account starts unverified.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.RegisteredUser, error) {
	name := strings.TrimSpace(in.Name)
	email := security.NormalizeEmail(in.Email)
	if name == "" || email == "" {
		return models.RegisteredUser{}, apperr.InvalidInput("name and email are required")
	}
	if !strings.Contains(email, "@") {
		return models.RegisteredUser{}, apperr.InvalidInput("email is invalid")
	}
	hash, err := security.HashPassword(in.Password)
	if errors.Is(err, security.ErrWeakPassword) {
		return models.RegisteredUser{}, apperr.InvalidInput(err.Error())
	}
	if err != nil {
		return models.RegisteredUser{}, apperr.Internal("hash password", err)
	}
	sealed, err := s.sealer.Seal(email)
	if err != nil {
		return models.RegisteredUser{}, apperr.Internal("seal email", err)
	}

	usid, err := s.ids.Next(ctx, sequence.RegisteredUser)
	if err != nil {
		return models.RegisteredUser{}, err
	}

	now := s.now()
	addr := in.firstAddress()
	user := models.RegisteredUser{
		ID:               primitive.NewObjectID(),
		USID:             usid,
		Name:             name,
		Email:            sealed,
		Mobile:           strings.TrimSpace(in.Mobile),
		BillingAddress1:  addr,
		ShippingAddress1: addr,
		CreatedIP:        in.IP,
		Sts:              models.UserUnverified,
		Audit:            models.NewAudit(name, now),
	}
	login := models.LoginUser{
		USID:         usid,
		Email:        sealed,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IP:           in.IP,
		Audit:        models.NewAudit(name, now),
	}

	err = database.WithTransaction(ctx, s.db, func(sc mongo.SessionContext) error {
		if _, err := s.registered.InsertOne(sc, user); err != nil {
			return err
		}
		_, err := s.logins.InsertOne(sc, login)
		return err
	})
	if mongo.IsDuplicateKeyError(err) {
		return models.RegisteredUser{}, apperr.Conflict("User already registered")
	}
	if err != nil {
		return models.RegisteredUser{}, apperr.FromMongo(err, "")
	}

	// Mail delivery is handled outside this service; the link is logged for it.
	logger.Get("account").WithFields(map[string]interface{}{
		"USID": usid,
		"link": s.VerifyLink(user.ID),
	}).Info("registered user, verification pending")
	return user, nil
}

func (s *Service) VerifyLink(id primitive.ObjectID) string {
	return fmt.Sprintf("%s/api/auth/verify/%s", s.backendURL, id.Hex())
}

// Verify marks the profile with the given document id as verified.
func (s *Service) Verify(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return apperr.InvalidInput("Invalid verification link.")
	}
	res, err := s.registered.UpdateOne(ctx,
		models.WithActive(bson.M{"_id": oid}),
		bson.M{"$set": bson.M{"sts": models.UserVerified, "updatedOn": s.now().UTC()}},
	)
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Invalid verification link.")
	}
	return nil
}

type LoginResult struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
	USID  int64  `json:"usid"`
}

// Login checks the credentials, requires a verified profile for shoppers and
// returns a signed access token.
func (s *Service) Login(ctx context.Context, email, password, ip string) (LoginResult, error) {
	email = security.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, apperr.InvalidInput("email and password are required")
	}
	sealed, err := s.sealer.Seal(email)
	if err != nil {
		return LoginResult{}, apperr.Internal("seal email", err)
	}

	var login models.LoginUser
	if err := s.logins.FindOne(ctx, models.WithActive(bson.M{"email": sealed})).Decode(&login); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return LoginResult{}, apperr.Unauthorized(msgBadCredentials)
		}
		return LoginResult{}, apperr.FromMongo(err, "")
	}
	if !security.CheckPassword(login.PasswordHash, password) {
		return LoginResult{}, apperr.Unauthorized(msgBadCredentials)
	}

	name := "User"
	profile, err := s.profile(ctx, login.USID)
	switch {
	case err == nil:
		if profile.Sts == models.UserUnverified && login.Role != models.RoleAdmin {
			return LoginResult{}, apperr.Forbidden(msgInactive)
		}
		name = profile.Name
	case apperr.KindOf(err) == apperr.KindNotFound && login.Role == models.RoleAdmin:
	default:
		return LoginResult{}, err
	}

	now := s.now().UTC()
	_, err = s.logins.UpdateOne(ctx, bson.M{"_id": login.ID}, bson.M{
		"$set": bson.M{"loginTime": now, "ip": ip, "sts": 1, "updatedOn": now, "updatedBy": name},
		"$inc": bson.M{"dailyLoginCount": 1},
	})
	if err != nil {
		return LoginResult{}, apperr.FromMongo(err, "")
	}
	if login.USID > 0 {
		if _, err := s.registered.UpdateOne(ctx, bson.M{"USID": login.USID}, bson.M{
			"$set": bson.M{"loginTime": now, "updatedIP": ip},
		}); err != nil {
			return LoginResult{}, apperr.FromMongo(err, "")
		}
	}

	token, err := security.IssueToken(s.tokens.Secret, s.tokens.TTL, security.Identity{
		LoginID: login.ID,
		USID:    login.USID,
		Role:    login.Role,
		Email:   email,
	})
	if err != nil {
		return LoginResult{}, apperr.Internal("token generation failed", err)
	}
	return LoginResult{Token: token, Role: login.Role, Name: name, USID: login.USID}, nil
}

func (s *Service) Logout(ctx context.Context, loginID primitive.ObjectID) error {
	now := s.now().UTC()
	var login models.LoginUser
	err := s.logins.FindOneAndUpdate(ctx,
		bson.M{"_id": loginID},
		bson.M{"$set": bson.M{"logout": now}},
	).Decode(&login)
	if err != nil {
		return apperr.FromMongo(err, msgUserMissing)
	}
	if login.USID > 0 {
		if _, err := s.registered.UpdateOne(ctx, bson.M{"USID": login.USID}, bson.M{"$set": bson.M{"logout": now}}); err != nil {
			return apperr.FromMongo(err, "")
		}
	}
	return nil
}
