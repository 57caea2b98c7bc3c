package lookupsync

import (
	"context"
	"time"

	"go-docmap/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LookupTableRepository interface {
	Upsert(ctx context.Context, table *LookupTable) error
	GetByName(ctx context.Context, name string) (*LookupTable, error)
	List(ctx context.Context) ([]LookupTable, error)
	ListSyncable(ctx context.Context) ([]LookupTable, error)
	ReplaceEntries(ctx context.Context, name string, entries map[string]string, syncedAt time.Time) error
	Delete(ctx context.Context, name string) error
}

type LookupTableRepositoryImpl struct {
	collection *mongo.Collection
}

func NewLookupTableRepository(db *database.MongodbDB) LookupTableRepository {
	return &LookupTableRepositoryImpl{
		collection: db.DB.Collection("lookup_tables"),
	}
}

func (r *LookupTableRepositoryImpl) Upsert(ctx context.Context, table *LookupTable) error {
	now := time.Now()
	table.UpdatedAt = now

	set := bson.M{
		"description": table.Description,
		"entries":     table.Entries,
		"source":      table.Source,
		"updated_at":  now,
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"name": table.Name, "created_at": now},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"name": table.Name},
		update,
		options.Update().SetUpsert(true))
	return err
}

func (r *LookupTableRepositoryImpl) GetByName(ctx context.Context, name string) (*LookupTable, error) {
	var table LookupTable
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&table)
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *LookupTableRepositoryImpl) List(ctx context.Context) ([]LookupTable, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tables []LookupTable
	if err := cursor.All(ctx, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *LookupTableRepositoryImpl) ListSyncable(ctx context.Context) ([]LookupTable, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"source": bson.M{"$ne": nil}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tables []LookupTable
	if err := cursor.All(ctx, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (r *LookupTableRepositoryImpl) ReplaceEntries(ctx context.Context, name string, entries map[string]string, syncedAt time.Time) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"name": name}, bson.M{
		"$set": bson.M{
			"entries":    entries,
			"synced_at":  syncedAt,
			"updated_at": syncedAt,
		},
	})
	return err
}

func (r *LookupTableRepositoryImpl) Delete(ctx context.Context, name string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"name": name})
	return err
}
