package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arjun/auth-dashboard/internal/models"
)

// MongoStore handles user CRUD in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

// userDoc is the MongoDB representation of a user record.
type userDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Email       string             `bson:"email"`
	DateOfBirth string             `bson:"date_of_birth"`
	Password    string             `bson:"password"`
	AvatarKey   string             `bson:"avatar_key,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d *userDoc) toModel() *models.User {
	return &models.User{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Email:       d.Email,
		DateOfBirth: d.DateOfBirth,
		Password:    d.Password,
		AvatarKey:   d.AvatarKey,
		CreatedAt:   d.CreatedAt,
	}
}

// NewMongoStore binds to the users collection and ensures the unique
// email index that backstops the pre-insert duplicate check.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	col := db.Collection("users")
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("mongo ensure email index: %w", err)
	}
	return &MongoStore{col: col}, nil
}

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	doc := userDoc{
		Name:        u.Name,
		Email:       u.Email,
		DateOfBirth: u.DateOfBirth,
		Password:    u.Password,
		CreatedAt:   time.Now(),
	}
	res, err := s.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toModel(), nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	if err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find by email: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc userDoc
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find by id: %w", err)
	}
	return doc.toModel(), nil
}

// SetAvatarKey records the object key of the user's uploaded avatar.
func (s *MongoStore) SetAvatarKey(ctx context.Context, id, key string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"avatar_key": key}})
	if err != nil {
		return fmt.Errorf("mongo set avatar key: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
