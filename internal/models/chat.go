package models

import (
	"fmt"
	"time"
)

type ChatType string

const (
	ChatTypeDM    ChatType = "dm"
	ChatTypeAI    ChatType = "ai"
	ChatTypeGroup ChatType = "group"
)

// Valid reports whether t is a known chat type.
func (t ChatType) Valid() bool {
	switch t {
	case ChatTypeDM, ChatTypeAI, ChatTypeGroup:
		return true
	}
	return false
}

// Chat belongs to an organization. LookupKey carries uniqueness within
// (organization, type): the name for group/ai chats, the sorted participant
// pair for DMs. DM participants are also kept as typed columns.
type Chat struct {
	ID             uint64    `gorm:"primarykey" json:"id"`
	OrganizationID uint64    `gorm:"not null;uniqueIndex:idx_chats_org_type_key,priority:1" json:"organization_id"`
	Type           ChatType  `gorm:"type:varchar(10);not null;uniqueIndex:idx_chats_org_type_key,priority:2" json:"type"`
	LookupKey      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_chats_org_type_key,priority:3" json:"-"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	DMLowUserID    *uint64   `json:"dm_low_user_id,omitempty"`
	DMHighUserID   *uint64   `json:"dm_high_user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DMPair is the canonical, order-independent identity of a direct-message chat.
type DMPair struct {
	Low  uint64
	High uint64
}

// NewDMPair sorts the two user ids so that (a, b) and (b, a) give the same pair.
func NewDMPair(a, b uint64) DMPair {
	if a > b {
		a, b = b, a
	}
	return DMPair{Low: a, High: b}
}

// Key is the lookup key stored for the pair. It is derived, never parsed back.
func (p DMPair) Key() string {
	return fmt.Sprintf("dm:%d:%d", p.Low, p.High)
}

// Other returns the participant that isn't userID, or false when userID is not in the pair.
func (p DMPair) Other(userID uint64) (uint64, bool) {
	switch userID {
	case p.Low:
		return p.High, true
	case p.High:
		return p.Low, true
	}
	return 0, false
}

// DMPair returns the typed pair for a DM chat; ok is false when the columns are unset.
func (c Chat) DMPair() (DMPair, bool) {
	if c.DMLowUserID == nil || c.DMHighUserID == nil {
		return DMPair{}, false
	}
	return DMPair{Low: *c.DMLowUserID, High: *c.DMHighUserID}, true
}

type ChatParticipant struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ChatID    uint64    `gorm:"not null;uniqueIndex:idx_chat_participants_pair,priority:1" json:"chat_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_chat_participants_pair,priority:2;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Chat *Chat `gorm:"foreignKey:ChatID" json:"chat,omitempty"`
}

type Message struct {
	ID       uint64    `gorm:"primarykey" json:"id"`
	ChatID   uint64    `gorm:"not null;index:idx_messages_chat_sent,priority:1" json:"chat_id"`
	SenderID uint64    `gorm:"not null" json:"sender_id"`
	Body     string    `gorm:"type:text;not null" json:"body"`
	SentAt   time.Time `gorm:"not null;index:idx_messages_chat_sent,priority:2" json:"sent_at"`

	// Relations
	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
}
