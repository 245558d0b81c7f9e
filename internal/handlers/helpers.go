package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"neuroclinic-server/internal/middleware"
	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

// respondServiceError maps service errors onto the response envelope.
func respondServiceError(c *gin.Context, err error) {
	var validErr *services.ValidationError
	if errors.As(err, &validErr) {
		utils.BadRequest(c, "Validation failed: "+strings.Join(validErr.Fields, ", "))
		return
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, "Resource not found")

	case errors.Is(err, services.ErrForbidden):
		utils.Forbidden(c, "You do not have permission to access this resource.")

	case errors.Is(err, services.ErrInvalidCredentials):
		utils.Unauthorized(c, "Invalid email or password")

	case errors.Is(err, services.ErrInvalidToken):
		utils.Unauthorized(c, err.Error())

	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrUserInUse),
		errors.Is(err, services.ErrCaseCodeTaken),
		errors.Is(err, services.ErrSlotTaken):
		utils.Conflict(c, err.Error())

	case errors.Is(err, services.ErrCaseInactive),
		errors.Is(err, services.ErrCaseMismatch),
		errors.Is(err, services.ErrNoAvailability),
		errors.Is(err, services.ErrSlotInPast),
		errors.Is(err, services.ErrSlotUnavailable),
		errors.Is(err, services.ErrInvalidStatusTransition):
		utils.BadRequest(c, err.Error())

	default:
		_ = c.Error(err)
		utils.InternalServerError(c, "internal server error")
	}
}

// actorFrom reads the authenticated caller set by AuthMiddleware.
func actorFrom(c *gin.Context) (services.Actor, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return services.Actor{}, false
	}
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return services.Actor{}, false
	}
	return services.Actor{UserID: id, Role: role}, true
}

func parseUUID(c *gin.Context, param string) (string, bool) {
	raw := c.Param(param)
	if _, err := uuid.Parse(raw); err != nil {
		utils.BadRequest(c, "Invalid "+param+": must be a valid UUID")
		return "", false
	}
	return raw, true
}

func parseQueryInt(c *gin.Context, key string, defaultVal int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return v
		}
	}
	return defaultVal
}

// parseQueryDate reads a YYYY-MM-DD query value as midnight in loc.
func parseQueryDate(c *gin.Context, key string, loc *time.Location) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		utils.BadRequest(c, "Invalid "+key+": expected YYYY-MM-DD")
		return nil, false
	}
	return &t, true
}
