package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// ProfessionalType classifies a user within the fashion industry.
type ProfessionalType string

const (
	ProfessionalTypeModel        ProfessionalType = "model"
	ProfessionalTypePhotographer ProfessionalType = "photographer"
	ProfessionalTypeDesigner     ProfessionalType = "designer"
	ProfessionalTypeStylist      ProfessionalType = "stylist"
	ProfessionalTypeMakeupArtist ProfessionalType = "makeup_artist"
)

// VerificationTier reflects how thoroughly a profile has been verified.
type VerificationTier string

const (
	VerificationTierBasic        VerificationTier = "basic"
	VerificationTierVerified     VerificationTier = "verified"
	VerificationTierProfessional VerificationTier = "professional"
)

// User represents a member of the professional network. Credentials are
// issued elsewhere; this service only needs the directory attributes that
// feed connection scoring and suggestions.
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `json:"-"` // Password is hashed and not returned in responses
	FullName string `json:"fullName"`

	ProfessionalType ProfessionalType `gorm:"type:varchar(30);index" json:"professionalType"`
	Location         string           `gorm:"index" json:"location"`
	Skills           pq.StringArray   `gorm:"type:text[]" json:"skills"`
	VerificationTier VerificationTier `gorm:"type:varchar(20);default:'basic'" json:"verificationTier"`

	// Avatar is optional and can be used to store a profile picture URL.
	Avatar string `json:"avatar,omitempty"`
}

// DisplayName is the name substituted into introduction messages.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Verified reports whether the profile carries more than basic verification.
func (u *User) Verified() bool {
	return u.VerificationTier != "" && u.VerificationTier != VerificationTierBasic
}

/** -------------------- DTOs -------------------- */

// UserResponse is the public projection of a user profile.
type UserResponse struct {
	ID               uint             `json:"id"`
	Username         string           `json:"username"`
	FullName         string           `json:"fullName"`
	ProfessionalType ProfessionalType `json:"professionalType"`
	Location         string           `json:"location"`
	Skills           []string         `json:"skills"`
	VerificationTier VerificationTier `json:"verificationTier"`
	Avatar           string           `json:"avatar,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		FullName:         u.FullName,
		ProfessionalType: u.ProfessionalType,
		Location:         u.Location,
		Skills:           u.Skills,
		VerificationTier: u.VerificationTier,
		Avatar:           u.Avatar,
		CreatedAt:        u.CreatedAt,
	}
}
