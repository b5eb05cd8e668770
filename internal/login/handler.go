package login

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/dirbridge/dirbridge/internal/common/errors"
	"github.com/dirbridge/dirbridge/internal/common/middleware"
	"github.com/dirbridge/dirbridge/internal/scim"
)

// identityResponse is what the session layer receives for an accepted login.
type identityResponse struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

// RegisterRoutes exposes the reconciler to the session layer. The OIDC
// handshake lives outside this service; after it completes, the session
// layer posts the verified profile here and receives the local identity or
// a denial.
func RegisterRoutes(r gin.IRouter, rec *Reconciler, token string) {
	grp := r.Group("/internal/v1")
	grp.Use(scim.BearerAuth(token))
	grp.POST("/login", handleLogin(rec))
}

func handleLogin(rec *Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var profile Profile
		if err := c.ShouldBindJSON(&profile); err != nil {
			middleware.LoginAttemptsTotal.WithLabelValues("malformed").Inc()
			apperrors.HandleError(c, apperrors.BadRequest("invalid profile body"))
			return
		}

		user, err := rec.Reconcile(c.Request.Context(), profile)
		if err != nil {
			middleware.LoginAttemptsTotal.WithLabelValues(outcome(err)).Inc()
			apperrors.HandleError(c, err)
			return
		}

		middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()

		resp := identityResponse{ID: user.ID, UserName: user.UserName}
		if user.Email != nil {
			resp.Email = *user.Email
		}
		if user.Name != nil {
			resp.Name = *user.Name
		}
		c.JSON(http.StatusOK, resp)
	}
}

func outcome(err error) string {
	switch {
	case apperrors.IsErrorCode(err, apperrors.ErrNotProvisioned):
		return "not_provisioned"
	case apperrors.IsErrorCode(err, apperrors.ErrAccountInactive):
		return "account_inactive"
	default:
		return "error"
	}
}
