package scout

import (
	"time"

	"github.com/Roja-08/Scout-Nallur/internal/duty"
)

// User is a registered scout. The password hash never serializes; admin
// responses carry the computed duty totals alongside the stored profile.
type User struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	PhoneNumber      string        `json:"phoneNumber"`
	PasswordHash     string        `json:"-"`
	NIC              string        `json:"nic"`
	ProfilePicURL    string        `json:"profilePicUrl,omitempty"`
	DateOfBirth      time.Time     `json:"dateOfBirth"`
	Age              int           `json:"age"`
	School           string        `json:"school"`
	QRCode           string        `json:"qrCode,omitempty"`
	RegistrationTime time.Time     `json:"registrationTime"`
	Attendance       []duty.Record `json:"attendance"`

	// Recomputed on every read; never authoritative in the store.
	TotalDutyMinutes int    `json:"totalDutyTime"`
	WorkingStatus    string `json:"workingStatus,omitempty"`
}

// PublicUser is the unauthenticated projection of a scout. The credential
// hash has no field here, so no public response path can leak it.
type PublicUser struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	PhoneNumber      string        `json:"phoneNumber"`
	NIC              string        `json:"nic"`
	ProfilePicURL    string        `json:"profilePicUrl,omitempty"`
	DateOfBirth      time.Time     `json:"dateOfBirth"`
	Age              int           `json:"age"`
	School           string        `json:"school"`
	RegistrationTime time.Time     `json:"registrationTime"`
	Attendance       []duty.Record `json:"attendance"`
	TotalDutyMinutes int           `json:"totalDutyTime"`
	WorkingStatus    string        `json:"workingStatus"`
}

// Public strips the credential fields and carries the computed metrics over.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:               u.ID,
		Name:             u.Name,
		Email:            u.Email,
		PhoneNumber:      u.PhoneNumber,
		NIC:              u.NIC,
		ProfilePicURL:    u.ProfilePicURL,
		DateOfBirth:      u.DateOfBirth,
		Age:              u.Age,
		School:           u.School,
		RegistrationTime: u.RegistrationTime,
		Attendance:       u.Attendance,
		TotalDutyMinutes: u.TotalDutyMinutes,
		WorkingStatus:    u.WorkingStatus,
	}
}
