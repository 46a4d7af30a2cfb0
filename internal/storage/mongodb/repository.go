package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Stamper реализуют документы, которые сами выставляют временные метки перед вставкой.
type Stamper interface {
	Stamp(now time.Time)
}

// FindOptions задаёт пагинацию и сортировку выборки. Нулевые значения не применяются.
type FindOptions struct {
	Skip  int64
	Limit int64
	Sort  bson.D
}

// Repository - обобщённый доступ к одной коллекции с документами типа T.
// Ошибки хранилища оборачиваются именем операции и не повторяются.
type Repository[T any] struct {
	coll       *mongo.Collection
	timestamps bool
	now        func() time.Time
}

// NewRepository создаёт репозиторий поверх коллекции. Если timestamps = true,
// Update обновляет поле updatedAt.
func NewRepository[T any](coll *mongo.Collection, timestamps bool) *Repository[T] {
	return &Repository[T]{
		coll:       coll,
		timestamps: timestamps,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create вставляет документ и возвращает его сохранённое представление
// вместе со сгенерированным _id.
func (r *Repository[T]) Create(ctx context.Context, doc T) (*T, error) {
	const op = "storage.mongodb.Create"

	if s, ok := any(&doc).(Stamper); ok {
		s.Stamp(r.now())
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var stored T
	if err := r.coll.FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(&stored); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &stored, nil
}

// FindByID возвращает документ по _id или nil, если его нет.
func (r *Repository[T]) FindByID(ctx context.Context, id primitive.ObjectID, populate ...Populate) (*T, error) {
	const op = "storage.mongodb.FindByID"

	if len(populate) == 0 {
		var doc T
		err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return &doc, nil
	}

	docs, err := r.aggregate(ctx, bson.M{"_id": id}, FindOptions{Limit: 1}, populate)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return &docs[0], nil
}

// FindAll возвращает документы, подходящие под фильтр. Результат никогда не nil.
func (r *Repository[T]) FindAll(ctx context.Context, filter any, opts FindOptions, populate ...Populate) ([]T, error) {
	const op = "storage.mongodb.FindAll"

	if filter == nil {
		filter = bson.M{}
	}

	if len(populate) > 0 {
		docs, err := r.aggregate(ctx, filter, opts, populate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return docs, nil
	}

	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := r.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}

// Update применяет частичное обновление ($set) и возвращает документ после
// изменения или nil, если документа с таким _id нет.
func (r *Repository[T]) Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*T, error) {
	const op = "storage.mongodb.Update"

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	if r.timestamps {
		set["updatedAt"] = r.now()
	}

	var doc T
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}

// Delete удаляет документ и сообщает, существовал ли он.
func (r *Repository[T]) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	const op = "storage.mongodb.Delete"
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return res.DeletedCount > 0, nil
}

// DeleteMany удаляет все документы под фильтром и возвращает их количество.
func (r *Repository[T]) DeleteMany(ctx context.Context, filter any) (int64, error) {
	const op = "storage.mongodb.DeleteMany"
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return res.DeletedCount, nil
}

// Count возвращает количество документов под фильтром без учёта пагинации.
func (r *Repository[T]) Count(ctx context.Context, filter any) (int64, error) {
	const op = "storage.mongodb.Count"
	if filter == nil {
		filter = bson.M{}
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (r *Repository[T]) aggregate(ctx context.Context, filter any, opts FindOptions, populate []Populate) ([]T, error) {
	cursor, err := r.coll.Aggregate(ctx, buildPipeline(filter, opts, populate))
	if err != nil {
		return nil, err
	}
	docs := make([]T, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []T{}
	}
	return docs, nil
}
