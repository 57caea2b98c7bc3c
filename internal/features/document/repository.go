package document

import (
	"context"
	"time"

	"go-docmap/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DocumentRepository is the field-source collaborator the matching engine
// reads from; GetExtractedFields is the only call the engine depends on.
type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	GetExtractedFields(ctx context.Context, id string) (map[string]interface{}, error)
	List(ctx context.Context, limit, offset int64) ([]Document, int64, error)
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
}

type DocumentRepositoryImpl struct {
	collection *mongo.Collection
}

func NewDocumentRepository(db *database.MongodbDB) DocumentRepository {
	return &DocumentRepositoryImpl{
		collection: db.DB.Collection("documents"),
	}
}

func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *Document) error {
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *DocumentRepositoryImpl) Get(ctx context.Context, id string) (*Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var doc Document
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (r *DocumentRepositoryImpl) GetExtractedFields(ctx context.Context, id string) (map[string]interface{}, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.ExtractedFields == nil {
		return map[string]interface{}{}, nil
	}
	return doc.ExtractedFields, nil
}

func (r *DocumentRepositoryImpl) List(ctx context.Context, limit, offset int64) ([]Document, int64, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []Document
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (r *DocumentRepositoryImpl) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{
		"extracted_fields": fields,
		"updated_at":       time.Now(),
	}})
	return err
}
