package users

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandlers provides HTTP handlers for user operations
type UserHandlers struct {
	userService UserService
	logger      *zap.Logger
}

// NewUserHandlers creates new user handlers
func NewUserHandlers(userService UserService, logger *zap.Logger) *UserHandlers {
	return &UserHandlers{
		userService: userService,
		logger:      logger,
	}
}

// RegisterRoutes registers all user routes under /users
func (h *UserHandlers) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("", h.GetAllUsers)
		users.GET("/health", h.Health)
		users.GET("/email/:email", h.GetUserByEmail)
		users.GET("/:id", h.GetUserByID)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
}

func (h *UserHandlers) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err, "Failed to create user")
		return
	}

	h.logger.Info("User created",
		zap.String("request_id", c.GetString("request_id")),
		zap.Int64("user_id", user.ID))
	c.JSON(http.StatusCreated, NewUserResponse(user))
}

func (h *UserHandlers) GetUserByID(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.FindUserByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(user))
}

func (h *UserHandlers) GetUserByEmail(c *gin.Context) {
	user, err := h.userService.FindUserByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		h.respondError(c, err, "Failed to get user")
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(user))
}

func (h *UserHandlers) GetAllUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Failed to list users")
		return
	}

	c.JSON(http.StatusOK, NewUserResponses(users))
}

func (h *UserHandlers) UpdateUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err, "Failed to update user")
		return
	}

	c.JSON(http.StatusOK, NewUserResponse(user))
}

func (h *UserHandlers) DeleteUser(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), id); err != nil {
		h.respondError(c, err, "Failed to delete user")
		return
	}

	h.logger.Info("User deleted",
		zap.String("request_id", c.GetString("request_id")),
		zap.Int64("user_id", id))
	c.Status(http.StatusNoContent)
}

func (h *UserHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "User service is running")
}

func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user ID must be an integer"})
		return 0, false
	}
	return id, true
}

// respondError maps domain errors to client errors; anything else is logged and hidden behind fallback
func (h *UserHandlers) respondError(c *gin.Context, err error, fallback string) {
	var validationErr *ValidationError
	var conflictErr *ConflictError
	var notFoundErr *NotFoundError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Message})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	default:
		h.logger.Error(fallback,
			zap.String("request_id", c.GetString("request_id")),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
