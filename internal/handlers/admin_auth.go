package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"eveningmall/internal/account"
	"eveningmall/internal/models"
)

// UserDirectory is the admin view over shopper accounts.
type UserDirectory interface {
	Users(ctx context.Context) ([]account.UserSummary, error)
	ToggleUserStatus(ctx context.Context, actor string, usid int64) (string, error)
}

// AdminLogin is Login restricted to admin credentials.
func AdminLogin(auth Authenticator, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/login"
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
		if result.Role != models.RoleAdmin {
			respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": result.Token, "name": result.Name})
	}
}

func GetAllUsers(users UserDirectory, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/users"
		defer handlePanic(c, route)

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		list, err := users.Users(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": list})
	}
}

func ToggleUserStatus(users UserDirectory, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /api/admin/users/status/:uid"
		defer handlePanic(c, route)

		usid, ok := int64Param(c, "uid")
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid user id")
			return
		}

		ctx, cancel := queryContext(c, timeout)
		defer cancel()

		status, err := users.ToggleUserStatus(ctx, actorName(c), usid)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Status updated", "status": status})
	}
}
