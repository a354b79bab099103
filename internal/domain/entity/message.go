package entity

import "time"

const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeSystem = "system"
	MessageTypeOffer  = "offer"

	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusRejected = "rejected"
	OfferStatusExpired  = "expired"

	MaxMessageLength = 1000
)

func IsValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeSystem, MessageTypeOffer:
		return true
	}
	return false
}

type MessageOffer struct {
	Amount    float64    `json:"amount" firestore:"amount" bson:"amount"`
	Status    string     `json:"status" firestore:"status" bson:"status"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" firestore:"expiresAt,omitempty" bson:"expiresAt,omitempty"`
}

// EffectiveStatus reports a pending offer past its expiry as expired. The
// stored status is never rewritten.
func (o *MessageOffer) EffectiveStatus(now time.Time) string {
	if o.Status == OfferStatusPending && o.ExpiresAt != nil && now.After(*o.ExpiresAt) {
		return OfferStatusExpired
	}
	return o.Status
}

type Attachment struct {
	URL      string `json:"url" firestore:"url" bson:"url"`
	Type     string `json:"type,omitempty" firestore:"type,omitempty" bson:"type,omitempty"`
	Filename string `json:"filename,omitempty" firestore:"filename,omitempty" bson:"filename,omitempty"`
	Size     int64  `json:"size,omitempty" firestore:"size,omitempty" bson:"size,omitempty"`
}

// Message IDs are UUIDv7 strings, so lexical order follows insertion order.
type Message struct {
	ID              string        `json:"id" firestore:"id" bson:"_id"`
	ConversationKey string        `json:"conversationKey" firestore:"conversationKey" bson:"conversation"`
	SenderID        string        `json:"senderId" firestore:"senderId" bson:"sender"`
	ReceiverID      string        `json:"receiverId" firestore:"receiverId" bson:"receiver"`
	ItemID          string        `json:"itemId" firestore:"itemId" bson:"item"`
	Type            string        `json:"type" firestore:"type" bson:"messageType"`
	Content         string        `json:"content" firestore:"content" bson:"content"`
	Offer           *MessageOffer `json:"offer,omitempty" firestore:"offer,omitempty" bson:"offer,omitempty"`
	Attachments     []Attachment  `json:"attachments" firestore:"attachments" bson:"attachments"`
	IsRead          bool          `json:"isRead" firestore:"isRead" bson:"isRead"`
	ReadAt          *time.Time    `json:"readAt" firestore:"readAt" bson:"readAt"`
	DeletedBy       []string      `json:"-" firestore:"deletedBy" bson:"deletedBy"`
	CreatedAt       time.Time     `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

func (m *Message) IsParticipant(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

func (m *Message) IsDeletedFor(userID string) bool {
	for _, id := range m.DeletedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Counterpart returns the other participant from userID's point of view.
func (m *Message) Counterpart(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}

// NewerThan orders by CreatedAt, then by ID for identical timestamps.
func (m *Message) NewerThan(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.After(other.CreatedAt)
	}
	return m.ID > other.ID
}
