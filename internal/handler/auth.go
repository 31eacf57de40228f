package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Roja-08/Scout-Nallur/internal/admin"
	"github.com/Roja-08/Scout-Nallur/internal/auth"
)

// ---------- Admin auth ----------

type adminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
	// AdminType is the legacy field name still sent by older clients.
	AdminType string `json:"adminType"`
}

func (r adminLoginRequest) role() string {
	if r.Role != "" {
		return r.Role
	}
	return r.AdminType
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	a, err := h.admins.Login(c.Request.Context(), req.Email, req.Password, req.role())
	if err != nil {
		fail(c, err)
		return
	}

	token, _, err := auth.Issue(a.ID, a.Role, a.Email, h.issuer, h.signingKey, h.tokenTTL)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"adminType":  a.Role,
		"adminId":    a.ID,
		"adminEmail": a.Email,
	})
}

type adminRegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

func (h *Handler) AdminRegister(c *gin.Context) {
	var req adminRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	a, err := h.admins.Register(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAdmins(c *gin.Context) {
	admins, err := h.admins.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if admins == nil {
		admins = []admin.Admin{}
	}
	c.JSON(http.StatusOK, admins)
}

func (h *Handler) GetAdmin(c *gin.Context) {
	a, err := h.admins.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type adminUpdateRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateAdmin edits the email only; the role tier is fixed at creation.
func (h *Handler) UpdateAdmin(c *gin.Context) {
	var req adminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	a, err := h.admins.UpdateEmail(c.Request.Context(), c.Param("id"), req.Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAdmin(c *gin.Context) {
	if err := h.admins.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin deleted successfully"})
}

// ---------- Scout status-page login ----------

type userLoginRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserLogin is the public status-page password check. No token is issued;
// the page only needs a yes/no plus basic identity.
func (h *Handler) UserLogin(c *gin.Context) {
	var req userLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	u, err := h.scouts.VerifyPassword(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
		},
	})
}

// ---------- Password reset ----------

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ResetPassword tries scouts first, then admins, and 404s when the email
// matches neither.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	ctx := c.Request.Context()

	matched, err := h.scouts.ResetPasswordByEmail(ctx, req.Email, req.NewPassword)
	if err != nil {
		fail(c, err)
		return
	}
	if !matched {
		matched, err = h.admins.ResetPasswordByEmail(ctx, req.Email, req.NewPassword)
		if err != nil {
			fail(c, err)
			return
		}
	}
	if !matched {
		c.JSON(http.StatusNotFound, gin.H{"message": "No account found with this email."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
