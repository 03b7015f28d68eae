package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account document in the users collection
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Nombre    string             `bson:"nombre,omitempty" json:"nombre,omitempty"`
	Password  string             `bson:"password" json:"-"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Session is the authenticated identity published to subscribers.
// A nil session means signed out.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}
