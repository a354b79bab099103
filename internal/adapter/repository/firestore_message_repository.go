package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"droplink/internal/domain/entity"
	"droplink/internal/domain/repository"
	"droplink/internal/domain/service"
	"droplink/pkg/errors"
	"droplink/pkg/logger"
)

const messagesCollection = "messages"

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

func (r *firestoreMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	_, err := r.client.Collection(messagesCollection).Doc(message.ID).Create(ctx, message)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.BadRequest("Message already exists", err)
		}
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, id string) (*entity.Message, error) {
	doc, err := r.client.Collection(messagesCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

// ListByConversation loads the whole thread because Firestore cannot filter
// on array non-membership; deletedBy is applied before paging.
func (r *firestoreMessageRepository) ListByConversation(ctx context.Context, conversationKey, viewerID string, limit, offset int) ([]*entity.Message, error) {
	query := r.client.Collection(messagesCollection).
		Where("conversationKey", "==", conversationKey).
		OrderBy("createdAt", firestore.Desc)

	thread, err := r.collect(ctx, query)
	if err != nil {
		return nil, err
	}
	return service.VisibleConversationPage(thread, viewerID, limit, offset), nil
}

func (r *firestoreMessageRepository) MarkConversationRead(ctx context.Context, conversationKey, receiverID string, at time.Time) (int64, error) {
	docs, err := r.client.Collection(messagesCollection).
		Where("conversationKey", "==", conversationKey).
		Where("receiverId", "==", receiverID).
		Where("isRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to query unread messages", err)
	}
	if len(docs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(docs))
	for _, doc := range docs {
		job, err := bw.Update(doc.Ref, []firestore.Update{
			{Path: "isRead", Value: true},
			{Path: "readAt", Value: at},
		})
		if err != nil {
			bw.End()
			return 0, errors.Internal("Failed to queue read update", err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	results := make([]error, 0, len(jobs))
	for _, job := range jobs {
		_, err := job.Results()
		results = append(results, err)
	}
	return bulkOutcome(conversationKey, results)
}

// bulkOutcome counts the applied writes and fails when any job failed. The
// applied ones stay written; a rerun only touches what is still unread.
func bulkOutcome(conversationKey string, results []error) (int64, error) {
	var applied int64
	var firstErr error
	for _, err := range results {
		if err != nil {
			logger.Warn("mark read failed in conversation %s: %v", conversationKey, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		applied++
	}
	if firstErr != nil {
		return applied, errors.Internal("Failed to mark conversation as read", firstErr)
	}
	return applied, nil
}

func (r *firestoreMessageRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	_, err := r.client.Collection(messagesCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "isRead", Value: true},
		{Path: "readAt", Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Message", err)
		}
		return errors.Internal("Failed to mark message as read", err)
	}
	return nil
}

func (r *firestoreMessageRepository) AddDeletedBy(ctx context.Context, id, userID string) error {
	_, err := r.client.Collection(messagesCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "deletedBy", Value: firestore.ArrayUnion(userID)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Message", err)
		}
		return errors.Internal("Failed to delete message", err)
	}
	return nil
}

// ListConversations loads every message the user sent or received and
// aggregates them in process.
func (r *firestoreMessageRepository) ListConversations(ctx context.Context, userID string, limit int) ([]*entity.ConversationSummary, error) {
	query := r.client.Collection(messagesCollection).WhereEntity(firestore.OrFilter{
		Filters: []firestore.EntityFilter{
			firestore.PropertyFilter{Path: "senderId", Operator: "==", Value: userID},
			firestore.PropertyFilter{Path: "receiverId", Operator: "==", Value: userID},
		},
	})

	mine, err := r.collect(ctx, query)
	if err != nil {
		return nil, err
	}
	return service.AggregateConversations(mine, userID, limit), nil
}

func (r *firestoreMessageRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.Message, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}
	return messages, nil
}
