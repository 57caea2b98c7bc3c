package instance

import (
	"context"
	"fmt"
	"time"

	"go-docmap/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type InstanceRepository interface {
	Create(ctx context.Context, inst *TemplateInstance) error
	Get(ctx context.Context, id string) (*TemplateInstance, error)
	List(ctx context.Context, templateID string) ([]TemplateInstance, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status InstanceStatus, errorMessage string) error
	// ClaimProcessing is the compare-and-set that moves an editable
	// instance into PROCESSING; only one caller can win the claim.
	ClaimProcessing(ctx context.Context, id primitive.ObjectID) error
	SetCounters(ctx context.Context, id primitive.ObjectID, counters Counters) error
	SetExported(ctx context.Context, id primitive.ObjectID, format, actor string) error
	ListStuckProcessing(ctx context.Context, olderThan time.Time) ([]TemplateInstance, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RowRepository is the row store; Upsert must be atomic per (instance, key)
type RowRepository interface {
	EnsureIndexes(ctx context.Context) error
	FindByKey(ctx context.Context, instanceID primitive.ObjectID, rowKey string) (*Row, error)
	// Upsert merges a contribution into the row addressed by its key as a
	// single read-modify-write and returns the merged row. New field values
	// win per field; fields the contribution did not produce are preserved;
	// the document id accumulates into the source set exactly once.
	Upsert(ctx context.Context, instanceID primitive.ObjectID, contrib RowContribution) (*Row, error)
	SetValidation(ctx context.Context, instanceID primitive.ObjectID, rowKey string, status RowStatus, validationErrors map[string]string) error
	List(ctx context.Context, instanceID primitive.ObjectID, limit, offset int64) ([]Row, error)
	CountByStatus(ctx context.Context, instanceID primitive.ObjectID) (Counters, error)
	UpdateFields(ctx context.Context, instanceID primitive.ObjectID, rowKey string, fields map[string]interface{}) error
	DeleteByKey(ctx context.Context, instanceID primitive.ObjectID, rowKey string) error
	DeleteAll(ctx context.Context, instanceID primitive.ObjectID) error
}

type InstanceRepositoryImpl struct {
	collection *mongo.Collection
}

func NewInstanceRepository(db *database.MongodbDB) InstanceRepository {
	return &InstanceRepositoryImpl{
		collection: db.DB.Collection("template_instances"),
	}
}

func (r *InstanceRepositoryImpl) Create(ctx context.Context, inst *TemplateInstance) error {
	if inst.ID.IsZero() {
		inst.ID = primitive.NewObjectID()
	}
	inst.Status = StatusDraft
	inst.CreatedAt = time.Now()
	inst.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, inst)
	return err
}

func (r *InstanceRepositoryImpl) Get(ctx context.Context, id string) (*TemplateInstance, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var inst TemplateInstance
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&inst)
	if err != nil {
		return nil, err
	}

	return &inst, nil
}

func (r *InstanceRepositoryImpl) List(ctx context.Context, templateID string) ([]TemplateInstance, error) {
	filter := bson.M{}
	if templateID != "" {
		oid, err := primitive.ObjectIDFromHex(templateID)
		if err != nil {
			return nil, err
		}
		filter["template_id"] = oid
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var instances []TemplateInstance
	if err = cursor.All(ctx, &instances); err != nil {
		return nil, err
	}

	return instances, nil
}

func (r *InstanceRepositoryImpl) SetStatus(ctx context.Context, id primitive.ObjectID, status InstanceStatus, errorMessage string) error {
	update := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == StatusError {
		update["error_message"] = errorMessage
	} else {
		update["error_message"] = ""
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	return err
}

func (r *InstanceRepositoryImpl) ClaimProcessing(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": []InstanceStatus{StatusDraft, StatusError}},
	}
	update := bson.M{"$set": bson.M{
		"status":        StatusProcessing,
		"error_message": "",
		"updated_at":    time.Now(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("instance is not in an editable status")
	}
	return nil
}

func (r *InstanceRepositoryImpl) SetCounters(ctx context.Context, id primitive.ObjectID, counters Counters) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"row_count":       counters.RowCount,
		"valid_row_count": counters.ValidRowCount,
		"error_row_count": counters.ErrorRowCount,
		"updated_at":      time.Now(),
	}})
	return err
}

func (r *InstanceRepositoryImpl) SetExported(ctx context.Context, id primitive.ObjectID, format, actor string) error {
	now := time.Now()
	filter := bson.M{"_id": id, "status": StatusCompleted}
	update := bson.M{"$set": bson.M{
		"status":        StatusExported,
		"export_format": format,
		"exported_at":   now,
		"exported_by":   actor,
		"updated_at":    now,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("only completed instances can be exported")
	}
	return nil
}

func (r *InstanceRepositoryImpl) ListStuckProcessing(ctx context.Context, olderThan time.Time) ([]TemplateInstance, error) {
	filter := bson.M{
		"status":     StatusProcessing,
		"updated_at": bson.M{"$lt": olderThan},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var instances []TemplateInstance
	if err = cursor.All(ctx, &instances); err != nil {
		return nil, err
	}

	return instances, nil
}

func (r *InstanceRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

type RowRepositoryImpl struct {
	collection *mongo.Collection
	counters   *mongo.Collection
}

func NewRowRepository(db *database.MongodbDB) RowRepository {
	return &RowRepositoryImpl{
		collection: db.DB.Collection("template_instance_rows"),
		counters:   db.DB.Collection("row_index_counters"),
	}
}

// EnsureIndexes creates the unique (instance_id, row_key) index backing
// the idempotent upsert.
func (r *RowRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "instance_id", Value: 1}, {Key: "row_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *RowRepositoryImpl) FindByKey(ctx context.Context, instanceID primitive.ObjectID, rowKey string) (*Row, error) {
	var row Row
	err := r.collection.FindOne(ctx, bson.M{"instance_id": instanceID, "row_key": rowKey}).Decode(&row)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *RowRepositoryImpl) Upsert(ctx context.Context, instanceID primitive.ObjectID, contrib RowContribution) (*Row, error) {
	now := time.Now()

	set := bson.M{
		"status":     RowStatusPending,
		"updated_at": now,
	}
	for field, value := range contrib.FieldValues {
		set["field_values."+field] = value
	}
	for field, msg := range contrib.FieldErrors {
		set["validation_errors."+field] = msg
	}

	// Allocate a display ordinal up front; unused ordinals from pure
	// updates leave gaps, which is fine for a stable sort key.
	rowIndex, err := r.nextRowIndex(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$set":      set,
		"$addToSet": bson.M{"source_document_ids": contrib.DocumentID},
		"$setOnInsert": bson.M{
			"instance_id": instanceID,
			"row_key":     contrib.RowKey,
			"row_index":   rowIndex,
			"created_at":  now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var merged Row
	err = r.collection.FindOneAndUpdate(ctx, bson.M{
		"instance_id": instanceID,
		"row_key":     contrib.RowKey,
	}, update, opts).Decode(&merged)
	if err != nil {
		return nil, err
	}

	return &merged, nil
}

func (r *RowRepositoryImpl) nextRowIndex(ctx context.Context, instanceID primitive.ObjectID) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": instanceID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (r *RowRepositoryImpl) SetValidation(ctx context.Context, instanceID primitive.ObjectID, rowKey string, status RowStatus, validationErrors map[string]string) error {
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}}
	if len(validationErrors) > 0 {
		update["$set"].(bson.M)["validation_errors"] = validationErrors
	} else {
		update["$unset"] = bson.M{"validation_errors": ""}
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{
		"instance_id": instanceID,
		"row_key":     rowKey,
	}, update)
	return err
}

func (r *RowRepositoryImpl) List(ctx context.Context, instanceID primitive.ObjectID, limit, offset int64) ([]Row, error) {
	opts := options.Find().SetSort(bson.D{{Key: "row_index", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"instance_id": instanceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []Row
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *RowRepositoryImpl) CountByStatus(ctx context.Context, instanceID primitive.ObjectID) (Counters, error) {
	var counters Counters

	total, err := r.collection.CountDocuments(ctx, bson.M{"instance_id": instanceID})
	if err != nil {
		return counters, err
	}
	valid, err := r.collection.CountDocuments(ctx, bson.M{"instance_id": instanceID, "status": RowStatusValid})
	if err != nil {
		return counters, err
	}
	invalid, err := r.collection.CountDocuments(ctx, bson.M{"instance_id": instanceID, "status": RowStatusInvalid})
	if err != nil {
		return counters, err
	}

	counters.RowCount = int(total)
	counters.ValidRowCount = int(valid)
	counters.ErrorRowCount = int(invalid)
	return counters, nil
}

func (r *RowRepositoryImpl) UpdateFields(ctx context.Context, instanceID primitive.ObjectID, rowKey string, fields map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now()}
	for field, value := range fields {
		set["field_values."+field] = value
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{
		"instance_id": instanceID,
		"row_key":     rowKey,
	}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("row not found: %s", rowKey)
	}
	return nil
}

func (r *RowRepositoryImpl) DeleteByKey(ctx context.Context, instanceID primitive.ObjectID, rowKey string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"instance_id": instanceID, "row_key": rowKey})
	return err
}

func (r *RowRepositoryImpl) DeleteAll(ctx context.Context, instanceID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"instance_id": instanceID})
	return err
}
