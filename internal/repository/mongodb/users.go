package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
)

// UserStore defines account and reset-token persistence.
type UserStore interface {
	InsertUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByEmail(ctx context.Context, email string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)
	UpdateUserProfile(ctx context.Context, id, displayName, phone string) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	SaveResetToken(ctx context.Context, token models.PasswordResetToken) error
	TakeResetToken(ctx context.Context, token string) (models.PasswordResetToken, error)
}

// InsertUser creates an operator account.
func (r *MongoDBRepository) InsertUser(ctx context.Context, user models.User) (models.User, error) {
	user.ID = primitive.NewObjectID().Hex()
	if _, err := r.collection(usersColl).InsertOne(ctx, user); err != nil {
		return models.User{}, &models.StoreUnavailableError{Op: "insert user", Err: err}
	}
	return user, nil
}

// FindUserByEmail loads an account by email, NotFoundError when absent.
func (r *MongoDBRepository) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.collection(usersColl).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, &models.NotFoundError{Entity: "user", ID: email}
	}
	if err != nil {
		return models.User{}, &models.StoreUnavailableError{Op: "find user by email", Err: err}
	}
	return user, nil
}

// FindUserByID loads an account by id, NotFoundError when absent.
func (r *MongoDBRepository) FindUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	err := r.collection(usersColl).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, &models.NotFoundError{Entity: "user", ID: id}
	}
	if err != nil {
		return models.User{}, &models.StoreUnavailableError{Op: "find user by id", Err: err}
	}
	return user, nil
}

// UpdateUserProfile sets the mutable profile fields.
func (r *MongoDBRepository) UpdateUserProfile(ctx context.Context, id, displayName, phone string) error {
	update := bson.M{"$set": bson.M{"display_name": displayName, "phone": phone}}
	res, err := r.collection(usersColl).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return &models.StoreUnavailableError{Op: "update profile", Err: err}
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "user", ID: id}
	}
	return nil
}

// UpdateUserPassword replaces the stored bcrypt hash.
func (r *MongoDBRepository) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	update := bson.M{"$set": bson.M{"password_hash": passwordHash}}
	res, err := r.collection(usersColl).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return &models.StoreUnavailableError{Op: "update password", Err: err}
	}
	if res.MatchedCount == 0 {
		return &models.NotFoundError{Entity: "user", ID: id}
	}
	return nil
}

// SaveResetToken stores a password-reset token.
func (r *MongoDBRepository) SaveResetToken(ctx context.Context, token models.PasswordResetToken) error {
	if _, err := r.collection(resetTokensColl).InsertOne(ctx, token); err != nil {
		return &models.StoreUnavailableError{Op: "save reset token", Err: err}
	}
	return nil
}

// TakeResetToken loads and deletes a reset token in one step so it cannot be
// replayed.
func (r *MongoDBRepository) TakeResetToken(ctx context.Context, token string) (models.PasswordResetToken, error) {
	var doc models.PasswordResetToken
	err := r.collection(resetTokensColl).FindOneAndDelete(ctx, bson.M{"_id": token}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PasswordResetToken{}, &models.NotFoundError{Entity: "reset token", ID: token}
	}
	if err != nil {
		return models.PasswordResetToken{}, &models.StoreUnavailableError{Op: "take reset token", Err: err}
	}
	return doc, nil
}
