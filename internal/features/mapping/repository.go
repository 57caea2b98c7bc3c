package mapping

import (
	"context"
	"time"

	"go-docmap/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MappingConfigRepository interface {
	Create(ctx context.Context, cfg *MappingConfig) error
	Get(ctx context.Context, id string) (*MappingConfig, error)
	ListByTemplate(ctx context.Context, templateID string) ([]MappingConfig, error)
	ListActive(ctx context.Context, templateID primitive.ObjectID) ([]MappingConfig, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	SetActive(ctx context.Context, id string, active bool) error
}

type MappingConfigRepositoryImpl struct {
	collection *mongo.Collection
}

func NewMappingConfigRepository(db *database.MongodbDB) MappingConfigRepository {
	return &MappingConfigRepositoryImpl{
		collection: db.DB.Collection("mapping_configs"),
	}
}

func (r *MappingConfigRepositoryImpl) Create(ctx context.Context, cfg *MappingConfig) error {
	if cfg.ID.IsZero() {
		cfg.ID = primitive.NewObjectID()
	}
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = time.Now()
	cfg.IsActive = true

	_, err := r.collection.InsertOne(ctx, cfg)
	return err
}

func (r *MappingConfigRepositoryImpl) Get(ctx context.Context, id string) (*MappingConfig, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var cfg MappingConfig
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&cfg)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (r *MappingConfigRepositoryImpl) ListByTemplate(ctx context.Context, templateID string) ([]MappingConfig, error) {
	oid, err := primitive.ObjectIDFromHex(templateID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "scope", Value: 1}, {Key: "priority", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"template_id": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var configs []MappingConfig
	if err = cursor.All(ctx, &configs); err != nil {
		return nil, err
	}

	return configs, nil
}

// ListActive returns every active config for the template; scope-qualifier
// matching against the call context happens in the resolver.
func (r *MappingConfigRepositoryImpl) ListActive(ctx context.Context, templateID primitive.ObjectID) ([]MappingConfig, error) {
	filter := bson.M{
		"template_id": templateID,
		"is_active":   true,
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var configs []MappingConfig
	if err = cursor.All(ctx, &configs); err != nil {
		return nil, err
	}

	return configs, nil
}

func (r *MappingConfigRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *MappingConfigRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	return r.Update(ctx, id, map[string]interface{}{"is_active": active})
}
