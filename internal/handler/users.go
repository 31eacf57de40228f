package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Roja-08/Scout-Nallur/internal/auth"
	"github.com/Roja-08/Scout-Nallur/internal/scout"
)

// ---------- Registration and roster ----------

type registerUserRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required"`
	NIC         string `json:"nic" binding:"required"`
	ProfilePic  string `json:"profilePic"`
	DateOfBirth string `json:"dateOfBirth" binding:"required"`
	School      string `json:"school" binding:"required"`
}

func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	u, err := h.scouts.Register(c.Request.Context(), scout.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		Password:      req.Password,
		NIC:           req.NIC,
		ProfilePicURL: req.ProfilePic,
		DateOfBirth:   req.DateOfBirth,
		School:        req.School,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.scouts.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if users == nil {
		users = []scout.User{}
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.scouts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ExportUsers streams the roster as CSV with formatted duty totals.
func (h *Handler) ExportUsers(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="scouts.csv"`)
	if err := h.scouts.WriteCSV(c.Request.Context(), c.Writer); err != nil {
		fail(c, err)
	}
}

type updateUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	NIC         string `json:"nic"`
	ProfilePic  string `json:"profilePic"`
	DateOfBirth string `json:"dateOfBirth"`
	School      string `json:"school"`
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	u, err := h.scouts.UpdateProfile(c.Request.Context(), c.Param("id"), scout.UpdateInput{
		Name:          req.Name,
		Email:         req.Email,
		PhoneNumber:   req.PhoneNumber,
		NIC:           req.NIC,
		ProfilePicURL: req.ProfilePic,
		DateOfBirth:   req.DateOfBirth,
		School:        req.School,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	claims, _ := auth.FromContext(c)
	if err := h.scouts.Delete(c.Request.Context(), c.Param("id"), claims.Email); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// ---------- Attendance ----------

type dutyRequest struct {
	Date          string `json:"date"`
	ComingTime    string `json:"comingTime"`
	FinishingTime string `json:"finishingTime"`
}

// UpsertDuty records a check-in or check-out for one date. One record per
// date: resubmitting a date replaces the fields sent and keeps the rest.
func (h *Handler) UpsertDuty(c *gin.Context) {
	var req dutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	u, err := h.scouts.UpsertAttendance(c.Request.Context(), c.Param("id"), req.Date, req.ComingTime, req.FinishingTime)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// ---------- QR code ----------

func (h *Handler) RegenerateQR(c *gin.Context) {
	code, err := h.scouts.RegenerateQR(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"qrCode": code})
}

// ResendQR re-emails the QR code. Unlike every other notification this one
// surfaces failure: the email is the whole point of the request.
func (h *Handler) ResendQR(c *gin.Context) {
	if err := h.scouts.ResendQR(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "QR code sent successfully"})
}

// ---------- Profile picture ----------

// UploadProfilePic accepts a multipart "profilePic" file, pushes it to
// Cloudinary and stores the hosted URL.
func (h *Handler) UploadProfilePic(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "image hosting is not configured"})
		return
	}
	file, header, err := c.Request.FormFile("profilePic")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "profilePic file is required"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "failed to read upload"})
		return
	}
	result, err := h.cloud.UploadBytes(data, header.Filename)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.scouts.SetProfilePicURL(c.Request.Context(), c.Param("id"), result.SecureURL); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profilePic": result.SecureURL})
}

// ---------- Public surface ----------

func (h *Handler) PublicUser(c *gin.Context) {
	u, err := h.scouts.Public(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	board, err := h.scouts.Leaderboard(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	if board == nil {
		board = []scout.PublicUser{}
	}
	c.JSON(http.StatusOK, board)
}
