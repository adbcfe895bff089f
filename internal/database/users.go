package database

import (
	"context"
	"time"

	"melodex-backend/internal/api/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UpdateUserRoleParams struct {
	ID   primitive.ObjectID
	Role models.Role
}

func (db *Database) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	err := db.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	return user, err
}

func (db *Database) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := db.users().FindOne(ctx, bson.M{"email": email}).Decode(&user)
	return user, err
}

// Resolves user ids to records, keyed by hex id. Missing or malformed
// ids are simply absent from the result.
func (db *Database) GetUsersByIDs(ctx context.Context, ids []string) (map[string]models.User, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}

	users := make(map[string]models.User, len(objectIDs))
	if len(objectIDs) == 0 {
		return users, nil
	}

	cursor, err := db.users().Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users[user.ID.Hex()] = user
	}
	return users, cursor.Err()
}

func (db *Database) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	res, err := db.users().InsertOne(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (db *Database) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := db.users().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, cursor.Err()
}

func (db *Database) UpdateUserRole(ctx context.Context, params UpdateUserRoleParams) (models.User, error) {
	var user models.User
	update := bson.M{"$set": bson.M{
		"role":      params.Role,
		"updatedAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := db.users().
		FindOneAndUpdate(ctx, bson.M{"_id": params.ID}, update, opts).
		Decode(&user)
	return user, err
}

func (db *Database) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	res, err := db.users().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (db *Database) CountUsers(ctx context.Context) (int64, error) {
	return db.users().CountDocuments(ctx, bson.M{})
}
