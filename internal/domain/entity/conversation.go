package entity

// Participants are taken from the newest message of a conversation.
type Participants struct {
	SenderID   string `json:"senderId" bson:"senderId"`
	ReceiverID string `json:"receiverId" bson:"receiverId"`
}

// ConversationSummary is a derived view over messages sharing a key; it is
// never stored.
type ConversationSummary struct {
	ConversationKey string       `json:"conversationKey"`
	Participants    Participants `json:"participants"`
	ItemID          string       `json:"itemId"`
	LastMessage     *Message     `json:"lastMessage"`
	UnreadCount     int          `json:"unreadCount"`
	Counterpart     *UserProfile `json:"counterpart,omitempty"`
	Item            *ItemPreview `json:"item,omitempty"`
}
