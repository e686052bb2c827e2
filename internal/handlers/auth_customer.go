package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eveningmall/internal/account"
	"eveningmall/internal/models"
)

// Authenticator registers, verifies and signs in shoppers.
type Authenticator interface {
	Register(ctx context.Context, in account.RegisterInput) (models.RegisteredUser, error)
	Verify(ctx context.Context, id string) error
	Login(ctx context.Context, email, password, ip string) (account.LoginResult, error)
	Logout(ctx context.Context, loginID primitive.ObjectID) error
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Mobile   string `json:"mobile"`
	Country  string `json:"country"`
	Place    string `json:"place"`
	Address  string `json:"address"`
	Pincode  string `json:"pincode"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(auth Authenticator, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		user, err := auth.Register(ctx, account.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Mobile:   req.Mobile,
			Password: req.Password,
			Country:  req.Country,
			Place:    req.Place,
			Address:  req.Address,
			Pincode:  req.Pincode,
			IP:       c.ClientIP(),
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Registered successfully. Please check your email to verify your account.",
			"usid":    user.USID,
		})
	}
}

// VerifyAccount redirects to the storefront on success.
func VerifyAccount(auth Authenticator, frontendURL string, timeout time.Duration) gin.HandlerFunc {
	frontendURL = strings.TrimRight(frontendURL, "/")
	return func(c *gin.Context) {
		const route = "GET /api/auth/verify/:id"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := auth.Verify(ctx, c.Param("id")); err != nil {
			respondError(c, route, err)
			return
		}
		c.Redirect(http.StatusFound, frontendURL+"?verified=success")
	}
}

func Login(auth Authenticator, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		result, err := auth.Login(ctx, req.Email, req.Password, c.ClientIP())
		if err != nil {
			respondError(c, route, err)
			return
		}
		routeLog(c, route).WithField("USID", result.USID).Info("login succeeded")
		c.JSON(http.StatusOK, result)
	}
}

func Logout(auth Authenticator, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/logout"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		if err := auth.Logout(ctx, currentIdentity(c).LoginID); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
	}
}
