package onboarding

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines the interface for onboarding record persistence.
// Implementations must serialize concurrent writes to the same record;
// the services load, mutate and replace whole documents.
type Repository interface {
	InsertClient(ctx context.Context, rec *ClientOnboarding) error
	FindClient(ctx context.Context, clientID string) (*ClientOnboarding, error)
	ReplaceClient(ctx context.Context, rec *ClientOnboarding) error
	ListClients(ctx context.Context) ([]*ClientOnboarding, error)

	InsertConsultant(ctx context.Context, rec *ConsultantOnboarding) error
	FindConsultant(ctx context.Context, consultantID string) (*ConsultantOnboarding, error)
	ReplaceConsultant(ctx context.Context, rec *ConsultantOnboarding) error
	ListConsultants(ctx context.Context) ([]*ConsultantOnboarding, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	clients     *mongo.Collection
	consultants *mongo.Collection
}

// NewMongoRepository creates a new onboarding repository and ensures the
// per-user uniqueness index on both collections.
func NewMongoRepository(ctx context.Context, db *mongo.Database) (*MongoRepository, error) {
	repo := &MongoRepository{
		clients:     db.Collection("client_onboardings"),
		consultants: db.Collection("consultant_onboardings"),
	}

	_, err := repo.clients.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "client_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client onboarding index: %w", err)
	}

	_, err = repo.consultants.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "consultant_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consultant onboarding index: %w", err)
	}

	return repo, nil
}

func (r *MongoRepository) InsertClient(ctx context.Context, rec *ClientOnboarding) error {
	res, err := r.clients.InsertOne(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to insert client onboarding: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = oid
	}
	return nil
}

func (r *MongoRepository) FindClient(ctx context.Context, clientID string) (*ClientOnboarding, error) {
	var rec ClientOnboarding
	err := r.clients.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOnboardingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find client onboarding: %w", err)
	}
	return &rec, nil
}

func (r *MongoRepository) ReplaceClient(ctx context.Context, rec *ClientOnboarding) error {
	res, err := r.clients.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec)
	if err != nil {
		return fmt.Errorf("failed to replace client onboarding: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOnboardingNotFound
	}
	return nil
}

func (r *MongoRepository) ListClients(ctx context.Context) ([]*ClientOnboarding, error) {
	cursor, err := r.clients.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list client onboardings: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*ClientOnboarding{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode client onboardings: %w", err)
	}
	return records, nil
}

func (r *MongoRepository) InsertConsultant(ctx context.Context, rec *ConsultantOnboarding) error {
	res, err := r.consultants.InsertOne(ctx, rec)
	if err != nil {
		return fmt.Errorf("failed to insert consultant onboarding: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		rec.ID = oid
	}
	return nil
}

func (r *MongoRepository) FindConsultant(ctx context.Context, consultantID string) (*ConsultantOnboarding, error) {
	var rec ConsultantOnboarding
	err := r.consultants.FindOne(ctx, bson.M{"consultant_id": consultantID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOnboardingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find consultant onboarding: %w", err)
	}
	return &rec, nil
}

func (r *MongoRepository) ReplaceConsultant(ctx context.Context, rec *ConsultantOnboarding) error {
	res, err := r.consultants.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec)
	if err != nil {
		return fmt.Errorf("failed to replace consultant onboarding: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOnboardingNotFound
	}
	return nil
}

func (r *MongoRepository) ListConsultants(ctx context.Context) ([]*ConsultantOnboarding, error) {
	cursor, err := r.consultants.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list consultant onboardings: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*ConsultantOnboarding{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode consultant onboardings: %w", err)
	}
	return records, nil
}
