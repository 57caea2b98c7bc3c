package template

import (
	"context"
	"time"

	"go-docmap/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TemplateRepository interface {
	Create(ctx context.Context, tmpl *DataTemplate) error
	Get(ctx context.Context, id string) (*DataTemplate, error)
	List(ctx context.Context) ([]DataTemplate, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type TemplateRepositoryImpl struct {
	collection *mongo.Collection
}

func NewTemplateRepository(db *database.MongodbDB) TemplateRepository {
	return &TemplateRepositoryImpl{
		collection: db.DB.Collection("data_templates"),
	}
}

func (r *TemplateRepositoryImpl) Create(ctx context.Context, tmpl *DataTemplate) error {
	if tmpl.ID.IsZero() {
		tmpl.ID = primitive.NewObjectID()
	}
	tmpl.CreatedAt = time.Now()
	tmpl.UpdatedAt = time.Now()
	tmpl.IsActive = true

	_, err := r.collection.InsertOne(ctx, tmpl)
	return err
}

func (r *TemplateRepositoryImpl) Get(ctx context.Context, id string) (*DataTemplate, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var tmpl DataTemplate
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&tmpl)
	if err != nil {
		return nil, err
	}

	return &tmpl, nil
}

func (r *TemplateRepositoryImpl) List(ctx context.Context) ([]DataTemplate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []DataTemplate
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *TemplateRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *TemplateRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	// Soft delete: templates referenced by instances must stay resolvable
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now(),
	}})
	return err
}
