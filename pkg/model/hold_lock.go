package model

import "time"

// HoldLock is an advisory lock serializing accept operations per provider.
// Concurrent accepts against the same provider race on the lock's unique _id;
// the loser gets a duplicate key error and is told to retry.
type HoldLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
