package database

import (
	"context"

	"melodex-backend/internal/api/models"

	"go.mongodb.org/mongo-driver/bson"
)

func (db *Database) InsertSession(ctx context.Context, session models.Session) error {
	_, err := db.sessions().InsertOne(ctx, session)
	return err
}

func (db *Database) GetSession(ctx context.Context, token string) (models.Session, error) {
	var session models.Session
	err := db.sessions().FindOne(ctx, bson.M{"_id": token}).Decode(&session)
	return session, err
}

// Deleting an unknown token is not an error; logout is idempotent.
func (db *Database) DeleteSession(ctx context.Context, token string) error {
	_, err := db.sessions().DeleteOne(ctx, bson.M{"_id": token})
	return err
}
