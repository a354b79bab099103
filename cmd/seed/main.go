// Command seed loads demo users, items and a conversation into the
// configured mongo or firestore store.
package main

import (
	"context"
	"log"
	"time"

	"droplink/internal/adapter/repository"
	"droplink/internal/domain/entity"
	domainrepo "droplink/internal/domain/repository"
	"droplink/internal/domain/service"
	"droplink/internal/infrastructure/firebase"
	"droplink/internal/infrastructure/mongodb"
	"droplink/pkg/config"
	"droplink/pkg/logger"
)

var users = []*entity.User{
	{ID: "user-sokha", Name: "Sokha Chan", Email: "sokha@example.com", Location: entity.UserLocation{Province: "Phnom Penh", City: "Phnom Penh", District: "Chamkar Mon"}, Rating: 4.8},
	{ID: "user-dara", Name: "Dara Kim", Email: "dara@example.com", Location: entity.UserLocation{Province: "Siem Reap", City: "Siem Reap", District: "Svay Dangkum"}, Rating: 4.2},
	{ID: "user-mealea", Name: "Mealea Sok", Email: "mealea@example.com", Location: entity.UserLocation{Province: "Phnom Penh", City: "Phnom Penh", District: "Daun Penh"}},
}

func items(now time.Time) []*entity.Item {
	pp := entity.ItemLocation{Province: "Phnom Penh", City: "Phnom Penh", District: "Chamkar Mon"}
	sr := entity.ItemLocation{Province: "Siem Reap", City: "Siem Reap", District: "Svay Dangkum"}
	return []*entity.Item{
		{ID: "item-iphone", SellerID: "user-sokha", Title: "iPhone 12 128GB", Description: "Unlocked, battery health 88%, small scratch on the frame.", Price: 320, Currency: "USD", Category: "Electronics", Subcategory: "Smartphones", Condition: "Good", Location: pp, Tags: []string{"apple", "phone"}, Status: entity.ItemStatusActive, Views: 41, FavoriteCount: 6, CreatedAt: now.Add(-72 * time.Hour)},
		{ID: "item-camera", SellerID: "user-sokha", Title: "Vintage film camera", Description: "Canon AE-1 with a 50mm lens, tested and working.", Price: 180, Currency: "USD", Category: "Vintage Items", Subcategory: "Vintage Electronics", Condition: "Fair", Location: pp, Tags: []string{"camera", "film", "canon"}, Status: entity.ItemStatusActive, Views: 58, FavoriteCount: 11, CreatedAt: now.Add(-48 * time.Hour)},
		{ID: "item-desk", SellerID: "user-dara", Title: "Solid wood desk", Description: "120cm desk with two drawers. Pickup only.", Price: 95, Currency: "USD", Category: "Furniture", Subcategory: "Tables", Condition: "Like New", Location: sr, Tags: []string{"desk", "wood"}, Status: entity.ItemStatusActive, Views: 12, FavoriteCount: 2, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: "item-novels", SellerID: "user-dara", Title: "Box of English novels", Description: "Twenty paperbacks, mostly mystery and sci-fi.", Price: 25, Currency: "USD", Category: "Books & Stationery", Subcategory: "Novels", Condition: "Good", Location: sr, Tags: []string{"books"}, Status: entity.ItemStatusActive, Views: 7, CreatedAt: now.Add(-12 * time.Hour)},
		{ID: "item-jacket", SellerID: "user-mealea", Title: "Denim jacket", Description: "Size M, barely worn.", Price: 30, Currency: "USD", Category: "Clothing", Subcategory: "Shirts", Condition: "Like New", Location: pp, Tags: []string{"denim"}, Status: entity.ItemStatusSold, Views: 19, FavoriteCount: 3, CreatedAt: now.Add(-96 * time.Hour)},
		{ID: "item-blender", SellerID: "user-mealea", Title: "Kitchen blender", Description: "1.5L jug, three speeds.", Price: 20, Currency: "USD", Category: "Household Items", Subcategory: "Kitchen Appliances", Condition: "Poor", Location: pp, Status: entity.ItemStatusActive, Views: 3, CreatedAt: now.Add(-6 * time.Hour)},
	}
}

func conversation(now time.Time) ([]*entity.Message, error) {
	key, err := service.DeriveConversationKey("user-dara", "user-sokha", "item-camera")
	if err != nil {
		return nil, err
	}
	expires := now.Add(48 * time.Hour)
	lines := []struct {
		id, from, to, content string
		offer                 *entity.MessageOffer
		age                   time.Duration
	}{
		{"seed-msg-1", "user-dara", "user-sokha", "Hi, is the camera still available?", nil, 5 * time.Hour},
		{"seed-msg-2", "user-sokha", "user-dara", "Yes it is, the lens is included.", nil, 4 * time.Hour},
		{"seed-msg-3", "user-dara", "user-sokha", "Would you take 150?", &entity.MessageOffer{Amount: 150, Status: entity.OfferStatusPending, ExpiresAt: &expires}, 3 * time.Hour},
	}

	messages := make([]*entity.Message, 0, len(lines))
	for _, l := range lines {
		msgType := entity.MessageTypeText
		if l.offer != nil {
			msgType = entity.MessageTypeOffer
		}
		messages = append(messages, &entity.Message{
			ID:              l.id,
			ConversationKey: key,
			SenderID:        l.from,
			ReceiverID:      l.to,
			ItemID:          "item-camera",
			Type:            msgType,
			Content:         l.content,
			Offer:           l.offer,
			Attachments:     []entity.Attachment{},
			DeletedBy:       []string{},
			CreatedAt:       now.Add(-l.age),
		})
	}
	return messages, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	ctx := context.Background()

	var (
		userRepo    domainrepo.UserRepository
		itemRepo    domainrepo.ItemRepository
		messageRepo domainrepo.MessageRepository
	)

	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("%v", err)
		}
		defer client.Close(ctx)
		if err := client.EnsureIndexes(ctx); err != nil {
			log.Fatalf("%v", err)
		}
		userRepo = repository.NewMongoUserRepository(client.Database)
		itemRepo = repository.NewMongoItemRepository(client.Database)
		messageRepo = repository.NewMongoMessageRepository(client.Database)

	case config.StoreFirestore:
		opts, err := firebase.ClientOptions(cfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
		app, err := firebase.NewApp(ctx, cfg, opts...)
		if err != nil {
			log.Fatalf("%v", err)
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer client.Close()
		userRepo = repository.NewFirestoreUserRepository(client)
		itemRepo = repository.NewFirestoreItemRepository(client)
		messageRepo = repository.NewFirestoreMessageRepository(client)

	default:
		log.Fatalf("seed needs STORE_DRIVER=mongo or firestore, got %q", cfg.StoreDriver)
	}

	now := time.Now().UTC()

	for _, u := range users {
		u.CreatedAt = now
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatalf("user %s: %v", u.ID, err)
		}
	}
	logger.Info("Seeded %d users", len(users))

	catalog := items(now)
	for _, item := range catalog {
		if err := itemRepo.Create(ctx, item); err != nil {
			logger.Warn("item %s: %v", item.ID, err)
		}
	}
	logger.Info("Seeded %d items (existing ones are skipped)", len(catalog))

	messages, err := conversation(now)
	if err != nil {
		log.Fatalf("%v", err)
	}
	for _, m := range messages {
		if err := messageRepo.Create(ctx, m); err != nil {
			logger.Warn("message %s: %v", m.ID, err)
		}
	}
	logger.Info("Seeded conversation %s", messages[0].ConversationKey)
}
