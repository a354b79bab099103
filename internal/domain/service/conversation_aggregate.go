package service

import (
	"sort"

	"droplink/internal/domain/entity"
)

// SortNewestFirst orders messages by CreatedAt descending; equal timestamps
// fall back to the later-inserted id.
func SortNewestFirst(messages []*entity.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].NewerThan(messages[j])
	})
}

// AggregateConversations groups the messages visible to userID by
// conversation key, keeping the newest message and counting unread messages
// addressed to userID. Conversations whose messages are all hidden from
// userID do not appear. limit <= 0 means no limit.
func AggregateConversations(messages []*entity.Message, userID string, limit int) []*entity.ConversationSummary {
	groups := make(map[string]*entity.ConversationSummary)

	for _, m := range messages {
		if !m.IsParticipant(userID) || m.IsDeletedFor(userID) {
			continue
		}

		summary, ok := groups[m.ConversationKey]
		if !ok {
			summary = &entity.ConversationSummary{ConversationKey: m.ConversationKey}
			groups[m.ConversationKey] = summary
		}
		if summary.LastMessage == nil || m.NewerThan(summary.LastMessage) {
			summary.LastMessage = m
		}
		if m.ReceiverID == userID && !m.IsRead {
			summary.UnreadCount++
		}
	}

	summaries := make([]*entity.ConversationSummary, 0, len(groups))
	for _, summary := range groups {
		last := summary.LastMessage
		summary.Participants = entity.Participants{SenderID: last.SenderID, ReceiverID: last.ReceiverID}
		summary.ItemID = last.ItemID
		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.NewerThan(summaries[j].LastMessage)
	})

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries
}

// VisibleConversationPage filters a conversation for viewerID, sorts it
// newest first and returns the requested window.
func VisibleConversationPage(messages []*entity.Message, viewerID string, limit, offset int) []*entity.Message {
	visible := make([]*entity.Message, 0, len(messages))
	for _, m := range messages {
		if !m.IsDeletedFor(viewerID) {
			visible = append(visible, m)
		}
	}
	SortNewestFirst(visible)

	if offset < 0 || offset >= len(visible) {
		return []*entity.Message{}
	}
	end := len(visible)
	if limit > 0 && limit < end-offset {
		end = offset + limit
	}
	return visible[offset:end]
}
