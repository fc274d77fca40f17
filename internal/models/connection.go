package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */

// ConnectionStatus is the lifecycle state of a connection edge.
type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusRejected ConnectionStatus = "rejected"
)

// StrengthTrend describes how the strength score moved on the last recalculation.
type StrengthTrend string

const (
	TrendIncreasing StrengthTrend = "increasing"
	TrendStable     StrengthTrend = "stable"
	TrendDecreasing StrengthTrend = "decreasing"
)

// PairStatus is a connection status translated to one caller's perspective.
type PairStatus string

const (
	PairStatusNone            PairStatus = "none"
	PairStatusPendingSent     PairStatus = "pending_sent"
	PairStatusPendingReceived PairStatus = "pending_received"
	PairStatusConnected       PairStatus = "connected"
	PairStatusRejected        PairStatus = "rejected"
)

// Connection is a single edge of the relationship graph. Endpoints are
// stored canonically (UserLowID < UserHighID) so the composite unique index
// rejects a duplicate edge regardless of which side initiated it.
type Connection struct {
	gorm.Model
	UserLowID   uint             `gorm:"not null;uniqueIndex:idx_connections_pair,priority:1" json:"-"`
	UserHighID  uint             `gorm:"not null;uniqueIndex:idx_connections_pair,priority:2" json:"-"`
	InitiatorID uint             `gorm:"not null;index" json:"initiatorId"`
	Status      ConnectionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Message     string           `gorm:"type:varchar(500)" json:"message,omitempty"`

	Strength         int            `gorm:"not null;default:0" json:"strength"`
	Trend            StrengthTrend  `gorm:"type:varchar(20);not null;default:'stable'" json:"trend"`
	LastCalculatedAt *time.Time     `json:"lastCalculatedAt,omitempty"`
	Tags             pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`
	InitiatorNotes   string         `json:"-"`
	RecipientNotes   string         `json:"-"`

	ConnectedAt       *time.Time `json:"connectedAt,omitempty"`
	LastInteractionAt *time.Time `json:"lastInteractionAt,omitempty"`

	UserLow  User `gorm:"foreignKey:UserLowID" json:"-"`
	UserHigh User `gorm:"foreignKey:UserHighID" json:"-"`
}

// CanonicalPair orders two user IDs into the (low, high) storage key.
func CanonicalPair(a, b uint) (uint, uint) {
	if a < b {
		return a, b
	}
	return b, a
}

// Involves reports whether userID is one of the two endpoints.
func (c *Connection) Involves(userID uint) bool {
	return c.UserLowID == userID || c.UserHighID == userID
}

// RecipientID returns the non-initiating endpoint.
func (c *Connection) RecipientID() uint {
	if c.InitiatorID == c.UserLowID {
		return c.UserHighID
	}
	return c.UserLowID
}

// OtherEnd returns the endpoint opposite to userID.
func (c *Connection) OtherEnd(userID uint) uint {
	if c.UserLowID == userID {
		return c.UserHighID
	}
	return c.UserLowID
}

// StatusFor translates the edge status to the given viewer's perspective.
func (c *Connection) StatusFor(viewerID uint) PairStatus {
	switch c.Status {
	case ConnectionStatusAccepted:
		return PairStatusConnected
	case ConnectionStatusRejected:
		return PairStatusRejected
	default:
		if c.InitiatorID == viewerID {
			return PairStatusPendingSent
		}
		return PairStatusPendingReceived
	}
}

// InteractionType identifies the kind of activity recorded against an edge.
type InteractionType string

const (
	InteractionMessage        InteractionType = "message"
	InteractionProfileView    InteractionType = "profile_view"
	InteractionOpportunity    InteractionType = "opportunity_interaction"
	InteractionEndorsement    InteractionType = "endorsement"
	InteractionRecommendation InteractionType = "recommendation"
)

// Interaction is a typed activity event between two connected users. Rows
// feed the frequency term of the strength recalculation.
type Interaction struct {
	gorm.Model
	ConnectionID uint            `gorm:"not null;index" json:"connectionId"`
	ActorID      uint            `gorm:"not null" json:"actorId"`
	Type         InteractionType `gorm:"type:varchar(30);not null" json:"type"`
}

/** -------------------- DTOs -------------------- */

// CreateConnectionRequest is the body of POST /connections.
type CreateConnectionRequest struct {
	RecipientID uint   `json:"recipientId" binding:"required"`
	Message     string `json:"message" binding:"omitempty,max=500"`
}

// RecordInteractionRequest is the body of POST /connections/:id/interactions.
type RecordInteractionRequest struct {
	Type InteractionType `json:"type" binding:"required"`
}

// ConnectionResponse is the connection projection returned to a caller,
// with notes filtered down to the viewer's own side.
type ConnectionResponse struct {
	ID                uint             `json:"id"`
	UserID            uint             `json:"userId"`   // the other endpoint
	Initiated         bool             `json:"initiated"` // viewer initiated the edge
	Status            ConnectionStatus `json:"status"`
	Message           string           `json:"message,omitempty"`
	Strength          int              `json:"strength"`
	Trend             StrengthTrend    `json:"trend"`
	Tags              []string         `json:"tags,omitempty"`
	Notes             string           `json:"notes,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	ConnectedAt       *time.Time       `json:"connectedAt,omitempty"`
	LastInteractionAt *time.Time       `json:"lastInteractionAt,omitempty"`
}

func NewConnectionResponse(c *Connection, viewerID uint) ConnectionResponse {
	notes := c.RecipientNotes
	if c.InitiatorID == viewerID {
		notes = c.InitiatorNotes
	}
	return ConnectionResponse{
		ID:                c.ID,
		UserID:            c.OtherEnd(viewerID),
		Initiated:         c.InitiatorID == viewerID,
		Status:            c.Status,
		Message:           c.Message,
		Strength:          c.Strength,
		Trend:             c.Trend,
		Tags:              c.Tags,
		Notes:             notes,
		CreatedAt:         c.CreatedAt,
		ConnectedAt:       c.ConnectedAt,
		LastInteractionAt: c.LastInteractionAt,
	}
}

// PairStatusResponse is the body of GET /connections/status/:userId.
type PairStatusResponse struct {
	Status       PairStatus `json:"status"`
	ConnectionID *uint      `json:"connectionId,omitempty"`
}

// StrengthResponse is the body of GET /connections/:id/strength.
type StrengthResponse struct {
	ConnectionID     uint          `json:"connectionId"`
	Strength         int           `json:"strength"`
	Trend            StrengthTrend `json:"trend"`
	LastCalculatedAt *time.Time    `json:"lastCalculatedAt,omitempty"`
}

// MutualConnectionsResponse is the body of GET /connections/mutual/:userId.
type MutualConnectionsResponse struct {
	MutualConnections []UserResponse `json:"mutualConnections"`
	Count             int            `json:"count"`
}

// Suggestion pairs a candidate profile with its relevance score.
type Suggestion struct {
	User                  UserResponse `json:"user"`
	Score                 int          `json:"score"`
	MutualConnectionCount int          `json:"mutualConnectionCount"`
}

// SuggestionsResponse is the body of GET /connections/suggestions.
type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}
