package entity

import (
	"time"
)

type UserLocation struct {
	Province string `json:"province,omitempty" firestore:"province,omitempty" bson:"province,omitempty"`
	City     string `json:"city,omitempty" firestore:"city,omitempty" bson:"city,omitempty"`
	District string `json:"district,omitempty" firestore:"district,omitempty" bson:"district,omitempty"`
}

// User is owned by the auth subsystem; this service only reads it.
type User struct {
	ID           string       `json:"id" firestore:"id" bson:"_id"`
	Name         string       `json:"name" firestore:"name" bson:"name"`
	Email        string       `json:"email,omitempty" firestore:"email" bson:"email"`
	ProfileImage string       `json:"profileImage" firestore:"profileImage" bson:"profileImage"`
	Location     UserLocation `json:"location" firestore:"location" bson:"location"`
	Rating       float64      `json:"rating,omitempty" firestore:"rating,omitempty" bson:"rating,omitempty"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

// UserProfile is the public slice of a user embedded in responses.
type UserProfile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage"`
}

func (u *User) Profile() *UserProfile {
	if u == nil {
		return nil
	}
	return &UserProfile{
		ID:           u.ID,
		Name:         u.Name,
		ProfileImage: u.ProfileImage,
	}
}
