// Package domain defines the persistence models for the chat transcript and
// owner profiles. These types are mapped with GORM and form the core data
// layer of the application.
package domain

import "time"

// Message roles. Every message is authored either by the owner ("user") or by
// the completion provider ("ai").
const (
	RoleUser = "user"
	RoleAI   = "ai"
)

// Message is a single entry in an owner's transcript. Messages are append-only:
// after creation only the Rating field may change, and only on AI-authored rows.
//
// Fields:
//   - ID: stable UUID primary key (char(36)), assigned on persist, never reused.
//   - UserID: identifier of the owning user; indexed for transcript retrieval.
//   - Role: "user" or "ai" (enforced by DB constraint), immutable.
//   - Content: full text body, immutable.
//   - Rating: optional 1..5 score; settable only on Role == "ai" rows by the owner.
//   - CreatedAt: persist-time timestamp; together with ID it defines the total
//     order of an owner's transcript.
type Message struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_msgs,priority:1"`
	Role      string    `json:"role"       gorm:"type:varchar(8);not null;check:role IN ('user','ai')"`
	Content   string    `json:"content"    gorm:"type:text;not null"`
	Rating    *int      `json:"rating,omitempty"` // only for AI messages
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_user_msgs,priority:2"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// IsAI reports whether the message was authored by the completion provider.
func (m *Message) IsAI() bool { return m.Role == RoleAI }

// Profile stores per-owner settings. It is keyed by the owner identifier so a
// user has at most one profile row; rows are created lazily on first update.
type Profile struct {
	UserID      string    `json:"user_id"      gorm:"type:varchar(64);primaryKey"`
	ChatbotName string    `json:"chatbot_name" gorm:"type:varchar(50);not null;default:'AI Chatbot'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Profile.
func (Profile) TableName() string { return "profiles" }
