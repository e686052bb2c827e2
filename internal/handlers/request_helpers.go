package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"eveningmall/internal/apperr"
	"eveningmall/internal/logger"
	"eveningmall/internal/middleware"
	"eveningmall/internal/security"
)

func routeLog(c *gin.Context, route string) *logrus.Entry {
	return logger.Get("handlers").WithFields(logrus.Fields{"route": route, "requestId": c.GetString("requestId")})
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		routeLog(c, route).Errorf("panic recovered: %v", r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	routeLog(c, route).WithField("status", status).Warn(message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondError maps a service error to its status code. Internal errors are
// logged with their cause and answered with a generic message.
func respondError(c *gin.Context, route string, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if kind == apperr.KindInternal {
		routeLog(c, route).WithError(err).Error("request failed")
		c.AbortWithStatusJSON(status, gin.H{"error": apperr.MessageOf(err)})
		return
	}
	respondWithError(c, status, route, apperr.MessageOf(err))
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "email":
				details = append(details, fmt.Sprintf("%s must be a valid email", field))
			case "min", "gte", "gt":
				details = append(details, fmt.Sprintf("%s must be at least %s", field, fieldError.Param()))
			case "max", "lte", "lt":
				details = append(details, fmt.Sprintf("%s must be at most %s", field, fieldError.Param()))
			case "oneof":
				details = append(details, fmt.Sprintf("%s must be one of: %s", field, fieldError.Param()))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// queryContext bounds the request's database work.
func queryContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}

func currentIdentity(c *gin.Context) security.Identity {
	id, _ := middleware.IdentityFrom(c)
	return id
}

// actorName is the audit name written to createdBy/updatedBy.
func actorName(c *gin.Context) string {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return "anonymous"
	}
	if id.Email != "" {
		return id.Email
	}
	return id.Role
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func int64Query(c *gin.Context, name string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(c.Query(name)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
