package scim

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dirbridge/dirbridge/internal/common/middleware"
	"github.com/dirbridge/dirbridge/internal/directory"
)

const maxPageSize = 100

// Service orchestrates the SCIM user endpoints over the directory store.
type Service struct {
	store  directory.Store
	logger *zap.Logger
}

// NewService creates the SCIM service.
func NewService(store directory.Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// RegisterRoutes registers all SCIM 2.0 endpoints under BasePath, guarded
// by the bearer token.
func (s *Service) RegisterRoutes(r gin.IRouter, token string) {
	grp := r.Group(BasePath)
	grp.Use(BearerAuth(token))

	users := grp.Group("/Users")
	{
		users.GET("", s.HandleListUsers)
		users.POST("", s.HandleCreateUser)
		users.GET("/:id", s.HandleGetUser)
		users.PUT("/:id", s.HandleReplaceUser)
		users.PATCH("/:id", s.HandlePatchUser)
		users.DELETE("/:id", s.HandleDeleteUser)
	}

	grp.GET("/ServiceProviderConfig", s.HandleServiceProviderConfig)
	grp.GET("/ResourceTypes", s.HandleResourceTypes)
	grp.GET("/Schemas", s.HandleSchemas)
}

// HandleListUsers handles GET /Users with filtering and pagination
// (RFC 7644 3.4.2).
func (s *Service) HandleListUsers(c *gin.Context) {
	// startIndex is 1-based; the raw value is echoed in the envelope even
	// when it is clamped for the query.
	startIndex := parseQueryInt(c, "startIndex", 1)
	offset := startIndex - 1
	if offset < 0 {
		offset = 0
	}

	count := parseQueryInt(c, "count", maxPageSize)
	if count < 0 {
		count = 0
	}
	if count > maxPageSize {
		count = maxPageSize
	}

	filter := EvaluateFilter(c.Query("filter"))
	if filter.Ignored {
		s.logger.Debug("Unsupported SCIM filter ignored", zap.String("filter", c.Query("filter")))
	}

	q := directory.Query{UserName: filter.UserName, Offset: offset, Limit: count}

	users, err := s.store.List(c.Request.Context(), q)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorInternal("Internal server error"))
		return
	}
	total, err := s.store.Count(c.Request.Context(), q)
	if err != nil {
		s.logger.Error("Failed to count users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorInternal("Internal server error"))
		return
	}

	resources := make([]*UserResource, len(users))
	for i := range users {
		resources[i] = UserToResource(&users[i])
	}

	c.JSON(http.StatusOK, NewListResponse(resources, total, startIndex))
}

// HandleGetUser handles GET /Users/:id.
func (s *Service) HandleGetUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	user, err := s.store.GetByID(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserToResource(user))
}

// HandleCreateUser handles POST /Users.
func (s *Service) HandleCreateUser(c *gin.Context) {
	var payload UserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBadRequest("Invalid request body"))
		return
	}
	if payload.UserName == "" {
		c.JSON(http.StatusBadRequest, ErrorBadRequest("userName is required"))
		return
	}

	// Fast-path duplicate check; the unique index still decides races.
	if _, err := s.store.GetByUserName(c.Request.Context(), payload.UserName); err == nil {
		middleware.ProvisioningOperationsTotal.WithLabelValues("create", "conflict").Inc()
		c.JSON(http.StatusConflict, ErrorConflict("User already exists"))
		return
	}

	user, err := s.store.Create(c.Request.Context(), PayloadFields(&payload))
	if err != nil {
		if directory.IsConflict(err) {
			middleware.ProvisioningOperationsTotal.WithLabelValues("create", "conflict").Inc()
			c.JSON(http.StatusConflict, ErrorConflict("User already exists"))
			return
		}
		s.logger.Error("Failed to create user", zap.String("user_name", payload.UserName), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorInternal("Internal server error"))
		return
	}

	middleware.ProvisioningOperationsTotal.WithLabelValues("create", "success").Inc()
	c.JSON(http.StatusCreated, UserToResource(user))
}

// HandleReplaceUser handles PUT /Users/:id (full replacement).
func (s *Service) HandleReplaceUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var payload UserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBadRequest("Invalid request body"))
		return
	}
	if payload.UserName == "" {
		c.JSON(http.StatusBadRequest, ErrorBadRequest("userName is required"))
		return
	}

	if _, err := s.store.GetByID(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}

	// Reject a userName already owned by a different record.
	if other, err := s.store.GetByUserName(c.Request.Context(), payload.UserName); err == nil && other.ID != id {
		c.JSON(http.StatusConflict, ErrorConflict("userName already exists"))
		return
	}

	user, err := s.store.Update(c.Request.Context(), id, PayloadFields(&payload))
	if err != nil {
		if directory.IsConflict(err) {
			c.JSON(http.StatusConflict, ErrorConflict("userName already exists"))
			return
		}
		s.respondStoreError(c, err)
		return
	}

	middleware.ProvisioningOperationsTotal.WithLabelValues("replace", "success").Inc()
	c.JSON(http.StatusOK, UserToResource(user))
}

// HandlePatchUser handles PATCH /Users/:id (RFC 7644 3.5.2).
func (s *Service) HandlePatchUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var patch PatchRequest
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, ErrorBadRequest("Invalid request body"))
		return
	}
	if len(patch.Operations) == 0 {
		c.JSON(http.StatusBadRequest, ErrorBadRequest("Operations array is required"))
		return
	}

	if _, err := s.store.GetByID(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}

	user, err := s.store.Update(c.Request.Context(), id, ApplyPatch(patch.Operations))
	if err != nil {
		if directory.IsConflict(err) {
			c.JSON(http.StatusConflict, ErrorConflict("userName already exists"))
			return
		}
		s.respondStoreError(c, err)
		return
	}

	middleware.ProvisioningOperationsTotal.WithLabelValues("patch", "success").Inc()
	c.JSON(http.StatusOK, UserToResource(user))
}

// HandleDeleteUser handles DELETE /Users/:id.
func (s *Service) HandleDeleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	if err := s.store.Delete(c.Request.Context(), id); err != nil {
		s.respondStoreError(c, err)
		return
	}

	middleware.ProvisioningOperationsTotal.WithLabelValues("delete", "success").Inc()
	c.Status(http.StatusNoContent)
}

// userID parses the numeric resource id, responding 400 on anything else.
func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorBadRequest("Invalid user ID"))
		return 0, false
	}
	return id, true
}

func (s *Service) respondStoreError(c *gin.Context, err error) {
	if errors.Is(err, directory.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorNotFound("User not found"))
		return
	}
	s.logger.Error("Directory store error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorInternal("Internal server error"))
}

func parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.DefaultQuery(name, strconv.Itoa(fallback))
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
