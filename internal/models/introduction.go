package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// IntroductionStatus is the lifecycle state of an introduction request.
type IntroductionStatus string

const (
	IntroductionStatusPending   IntroductionStatus = "pending"
	IntroductionStatusAccepted  IntroductionStatus = "accepted"
	IntroductionStatusDeclined  IntroductionStatus = "declined"
	IntroductionStatusCompleted IntroductionStatus = "completed"
	IntroductionStatusCancelled IntroductionStatus = "cancelled"
)

// IntroductionPurpose is the canonical reason given for an introduction.
type IntroductionPurpose string

const (
	PurposeBusinessOpportunity IntroductionPurpose = "business-opportunity"
	PurposeCollaboration       IntroductionPurpose = "collaboration"
	PurposeMentorship          IntroductionPurpose = "mentorship"
	PurposeJobOpportunity      IntroductionPurpose = "job-opportunity"
	PurposeNetworking          IntroductionPurpose = "networking"
	PurposeOther               IntroductionPurpose = "other"
)

// ValidPurpose reports whether p is one of the canonical purposes.
func ValidPurpose(p IntroductionPurpose) bool {
	switch p {
	case PurposeBusinessOpportunity, PurposeCollaboration, PurposeMentorship,
		PurposeJobOpportunity, PurposeNetworking, PurposeOther:
		return true
	}
	return false
}

// IntroductionRequest is a three-party brokering record: the requester asks
// a mutual connection (the introducer) to introduce them to the target.
type IntroductionRequest struct {
	gorm.Model
	RequesterID  uint `gorm:"not null;index" json:"requesterId"`
	IntroducerID uint `gorm:"not null;index" json:"introducerId"`
	TargetID     uint `gorm:"not null;index" json:"targetId"`

	Subject string              `gorm:"type:varchar(200)" json:"subject"`
	Message string              `gorm:"type:varchar(1000)" json:"message"`
	Purpose IntroductionPurpose `gorm:"type:varchar(40);not null" json:"purpose"`
	Status  IntroductionStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	IntroducerResponse    string     `json:"introducerResponse,omitempty"`
	IntroducerRespondedAt *time.Time `json:"introducerRespondedAt,omitempty"`

	IntroSubject string     `json:"introSubject,omitempty"`
	IntroMessage string     `json:"introMessage,omitempty"`
	IntroSentAt  *time.Time `json:"introSentAt,omitempty"`

	TargetAccepted    *bool      `json:"targetAccepted,omitempty"`
	TargetResponse    string     `json:"targetResponse,omitempty"`
	TargetRespondedAt *time.Time `json:"targetRespondedAt,omitempty"`

	ExpiresAt time.Time `gorm:"not null;index" json:"expiresAt"`

	Requester  User `gorm:"foreignKey:RequesterID" json:"-"`
	Introducer User `gorm:"foreignKey:IntroducerID" json:"-"`
	Target     User `gorm:"foreignKey:TargetID" json:"-"`
}

// IsExpired reports whether the request has passed its expiry window.
func (r *IntroductionRequest) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsRespondable reports whether the introducer can still accept or decline.
func (r *IntroductionRequest) IsRespondable(now time.Time) bool {
	return r.Status == IntroductionStatusPending && !r.IsExpired(now)
}

/** -------------------- DTOs -------------------- */

// CreateIntroductionRequest is the body of POST /introductions.
type CreateIntroductionRequest struct {
	IntroducerID uint                `json:"introducerId" binding:"required"`
	TargetID     uint                `json:"targetId" binding:"required"`
	Subject      string              `json:"subject" binding:"required,max=200"`
	Message      string              `json:"message" binding:"required,max=1000"`
	Purpose      IntroductionPurpose `json:"purpose" binding:"required"`
}

// RespondIntroductionRequest is the body of PUT /introductions/:id/respond.
type RespondIntroductionRequest struct {
	Action             string `json:"action" binding:"required,oneof=accept decline"`
	Message            string `json:"message" binding:"omitempty,max=1000"`
	CustomIntroMessage string `json:"customIntroMessage" binding:"omitempty,max=2000"`
}

// TargetResponseRequest is the body of PUT /introductions/:id/target-response.
type TargetResponseRequest struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message" binding:"omitempty,max=1000"`
}

// IntroductionResponse is the projection returned to any of the three parties.
type IntroductionResponse struct {
	ID           uint                `json:"id"`
	RequesterID  uint                `json:"requesterId"`
	IntroducerID uint                `json:"introducerId"`
	TargetID     uint                `json:"targetId"`
	Subject      string              `json:"subject"`
	Message      string              `json:"message"`
	Purpose      IntroductionPurpose `json:"purpose"`
	Status       IntroductionStatus  `json:"status"`

	IntroducerResponse    string     `json:"introducerResponse,omitempty"`
	IntroducerRespondedAt *time.Time `json:"introducerRespondedAt,omitempty"`
	IntroSubject          string     `json:"introSubject,omitempty"`
	IntroMessage          string     `json:"introMessage,omitempty"`
	IntroSentAt           *time.Time `json:"introSentAt,omitempty"`
	TargetAccepted        *bool      `json:"targetAccepted,omitempty"`
	TargetResponse        string     `json:"targetResponse,omitempty"`
	TargetRespondedAt     *time.Time `json:"targetRespondedAt,omitempty"`

	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewIntroductionResponse(r *IntroductionRequest) IntroductionResponse {
	return IntroductionResponse{
		ID:                    r.ID,
		RequesterID:           r.RequesterID,
		IntroducerID:          r.IntroducerID,
		TargetID:              r.TargetID,
		Subject:               r.Subject,
		Message:               r.Message,
		Purpose:               r.Purpose,
		Status:                r.Status,
		IntroducerResponse:    r.IntroducerResponse,
		IntroducerRespondedAt: r.IntroducerRespondedAt,
		IntroSubject:          r.IntroSubject,
		IntroMessage:          r.IntroMessage,
		IntroSentAt:           r.IntroSentAt,
		TargetAccepted:        r.TargetAccepted,
		TargetResponse:        r.TargetResponse,
		TargetRespondedAt:     r.TargetRespondedAt,
		ExpiresAt:             r.ExpiresAt,
		CreatedAt:             r.CreatedAt,
	}
}
