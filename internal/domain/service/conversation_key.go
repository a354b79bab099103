package service

import (
	"strings"
	"unicode"

	"droplink/pkg/errors"
)

const conversationKeySeparator = "_"

// DeriveConversationKey identifies the conversation between two users about
// an item. The user ids are sorted first, so either participant derives the
// same key.
func DeriveConversationKey(userA, userB, itemID string) (string, error) {
	for _, id := range []string{userA, userB, itemID} {
		if err := checkKeyPart(id); err != nil {
			return "", err
		}
	}
	if userA == userB {
		return "", errors.InvalidArgument("a user cannot start a conversation with themself")
	}

	low, high := userA, userB
	if high < low {
		low, high = high, low
	}
	return low + conversationKeySeparator + high + conversationKeySeparator + itemID, nil
}

// ParseConversationKey splits a key produced by DeriveConversationKey.
func ParseConversationKey(key string) (userLow, userHigh, itemID string, err error) {
	parts := strings.Split(key, conversationKeySeparator)
	if len(parts) != 3 {
		return "", "", "", errors.InvalidArgument("malformed conversation key")
	}
	canonical, err := DeriveConversationKey(parts[0], parts[1], parts[2])
	if err != nil {
		return "", "", "", err
	}
	if canonical != key {
		return "", "", "", errors.InvalidArgument("conversation key is not in canonical order")
	}
	return parts[0], parts[1], parts[2], nil
}

// ConversationIncludes reports whether userID is one of the key's two users.
func ConversationIncludes(key, userID string) (bool, error) {
	low, high, _, err := ParseConversationKey(key)
	if err != nil {
		return false, err
	}
	return userID == low || userID == high, nil
}

func checkKeyPart(id string) error {
	if id == "" {
		return errors.InvalidArgument("identifiers must not be empty")
	}
	if strings.Contains(id, conversationKeySeparator) {
		return errors.InvalidArgument("identifiers must not contain " + conversationKeySeparator)
	}
	if strings.IndexFunc(id, unicode.IsSpace) >= 0 {
		return errors.InvalidArgument("identifiers must not contain whitespace")
	}
	return nil
}
