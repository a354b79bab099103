package entity

import (
	"time"
)

const (
	ItemStatusActive   = "Active"
	ItemStatusSold     = "Sold"
	ItemStatusPending  = "Pending"
	ItemStatusInactive = "Inactive"
	ItemStatusRemoved  = "Removed"
)

var ItemConditions = []string{"Like New", "Good", "Fair", "Poor"}

type ItemImage struct {
	URL       string `json:"url" firestore:"url" bson:"url"`
	Alt       string `json:"alt,omitempty" firestore:"alt,omitempty" bson:"alt,omitempty"`
	IsPrimary bool   `json:"isPrimary" firestore:"isPrimary" bson:"isPrimary"`
}

type ItemLocation struct {
	Province string `json:"province" firestore:"province" bson:"province"`
	City     string `json:"city" firestore:"city" bson:"city"`
	District string `json:"district" firestore:"district" bson:"district"`
	Address  string `json:"address,omitempty" firestore:"address,omitempty" bson:"address,omitempty"`
}

// Item is owned by the catalog subsystem. Search and detail reads are served
// here; lifecycle changes happen elsewhere.
type Item struct {
	ID            string       `json:"id" firestore:"id" bson:"_id"`
	SellerID      string       `json:"sellerId" firestore:"sellerId" bson:"sellerId"`
	Title         string       `json:"title" firestore:"title" bson:"title"`
	Description   string       `json:"description" firestore:"description" bson:"description"`
	Price         float64      `json:"price" firestore:"price" bson:"price"`
	Currency      string       `json:"currency" firestore:"currency" bson:"currency"`
	Category      string       `json:"category" firestore:"category" bson:"category"`
	Subcategory   string       `json:"subcategory" firestore:"subcategory" bson:"subcategory"`
	Condition     string       `json:"condition" firestore:"condition" bson:"condition"`
	Images        []ItemImage  `json:"images" firestore:"images" bson:"images"`
	Location      ItemLocation `json:"location" firestore:"location" bson:"location"`
	Tags          []string     `json:"tags" firestore:"tags" bson:"tags"`
	Status        string       `json:"status" firestore:"status" bson:"status"`
	Views         int64        `json:"views" firestore:"views" bson:"views"`
	FavoriteCount int64        `json:"favoriteCount" firestore:"favoriteCount" bson:"favoriteCount"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

// ItemPreview is the item reference embedded in messages and conversation summaries.
type ItemPreview struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Price  float64     `json:"price"`
	Status string      `json:"status"`
	Images []ItemImage `json:"images"`
}

func (i *Item) Preview() *ItemPreview {
	if i == nil {
		return nil
	}
	return &ItemPreview{
		ID:     i.ID,
		Title:  i.Title,
		Price:  i.Price,
		Status: i.Status,
		Images: i.Images,
	}
}

func IsValidCondition(condition string) bool {
	for _, c := range ItemConditions {
		if c == condition {
			return true
		}
	}
	return false
}

func IsValidItemStatus(status string) bool {
	switch status {
	case ItemStatusActive, ItemStatusSold, ItemStatusPending, ItemStatusInactive, ItemStatusRemoved:
		return true
	}
	return false
}
