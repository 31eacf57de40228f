// Package handler wires the HTTP surface: admin auth, scout management,
// attendance, and the public status endpoints.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Roja-08/Scout-Nallur/internal/admin"
	"github.com/Roja-08/Scout-Nallur/internal/auth"
	"github.com/Roja-08/Scout-Nallur/internal/cloudinary"
	"github.com/Roja-08/Scout-Nallur/internal/scout"
)

type Handler struct {
	scouts *scout.Service
	admins *admin.Service
	cloud  *cloudinary.Client // nil if Cloudinary not configured

	signingKey string
	issuer     string
	tokenTTL   time.Duration
}

func New(scouts *scout.Service, admins *admin.Service, cloud *cloudinary.Client, signingKey, issuer string, tokenTTL time.Duration) *Handler {
	return &Handler{
		scouts:     scouts,
		admins:     admins,
		cloud:      cloud,
		signingKey: signingKey,
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// RegisterRoutes mounts everything under /api. The public group carries no
// auth middleware; everything else requires a valid admin token.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/admin/login", h.AdminLogin)
	authGroup.POST("/user-login", h.UserLogin)
	authGroup.POST("/reset-password", h.ResetPassword)

	adminOnly := authGroup.Group("/admin",
		auth.Middleware(h.signingKey, h.issuer), auth.RequireRole(auth.RoleSuper))
	adminOnly.POST("/register", h.AdminRegister)
	adminOnly.GET("", h.ListAdmins)
	adminOnly.GET("/:id", h.GetAdmin)
	adminOnly.PUT("/:id", h.UpdateAdmin)
	adminOnly.DELETE("/:id", h.DeleteAdmin)

	public := api.Group("/users/public")
	public.GET("/leaderboard", h.Leaderboard)
	public.GET("/:id", h.PublicUser)

	users := api.Group("/users", auth.Middleware(h.signingKey, h.issuer))
	anyAdmin := auth.RequireAnyRole(auth.RoleSuper, auth.RoleSecondary)
	superOnly := auth.RequireRole(auth.RoleSuper)

	users.GET("", anyAdmin, h.ListUsers)
	users.GET("/export", anyAdmin, h.ExportUsers)
	users.GET("/:id", anyAdmin, h.GetUser)
	users.POST("", superOnly, h.RegisterUser)
	users.PUT("/:id", anyAdmin, h.UpdateUser)
	users.DELETE("/:id", superOnly, h.DeleteUser)
	users.PUT("/:id/duty", anyAdmin, h.UpsertDuty)
	users.GET("/:id/qrcode", anyAdmin, h.RegenerateQR)
	users.POST("/:id/resend-qr", anyAdmin, h.ResendQR)
	users.POST("/:id/profile-pic", anyAdmin, h.UploadProfilePic)
}

// fail translates service errors into the status taxonomy: validation and
// conflicts 400, bad credentials 401, missing documents 404, the rest 500
// with the underlying message echoed.
func fail(c *gin.Context, err error) {
	var verr scout.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
	case errors.Is(err, scout.ErrExists):
		c.JSON(http.StatusBadRequest, gin.H{"message": "A user with this email or phone number already exists"})
	case errors.Is(err, admin.ErrExists):
		c.JSON(http.StatusBadRequest, gin.H{"message": "An admin with this email already exists"})
	case errors.Is(err, admin.ErrBadRole):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, scout.ErrInvalidCredentials), errors.Is(err, admin.ErrBadPassword):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, scout.ErrNotFound), errors.Is(err, admin.ErrNotFound), errors.Is(err, admin.ErrNoMatch):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}
