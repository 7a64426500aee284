package docstore

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/example/microstore-service/internal/domain"
)

// Mongo — хранилище документов поверх mongo-driver: коллекция на
// сущность, идентификаторы — ObjectID в hex. Некорректный hex на пути
// чтения/обновления по id считается ошибкой ввода, не сбоем хранилища.
type Mongo struct {
	DB *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{DB: db}
}

// EnsureUniqueField — уникальный индекс по полю коллекции.
func (s *Mongo) EnsureUniqueField(ctx context.Context, collection, field string) error {
	_, err := s.DB.Collection(collection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Wrap(domain.StorageFailure(err), "ensure unique index")
}

func (s *Mongo) Create(ctx context.Context, collection string, doc domain.Document) (string, error) {
	res, err := s.DB.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", domain.Duplicate("duplicate value for unique field")
		}
		return "", domain.StorageFailure(err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *Mongo) FindOne(ctx context.Context, collection string, filter domain.Filter) (domain.Document, bool, error) {
	q, err := toBSON(filter)
	if err != nil {
		return nil, false, err
	}
	var raw bson.M
	if err := s.DB.Collection(collection).FindOne(ctx, q).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, domain.StorageFailure(err)
	}
	return fromBSON(raw), true, nil
}

func (s *Mongo) FindMany(ctx context.Context, collection string, filter domain.Filter) ([]domain.Document, error) {
	q, err := toBSON(filter)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.DB.Collection(collection).Find(ctx, q, opts)
	if err != nil {
		return nil, domain.StorageFailure(err)
	}
	defer cur.Close(ctx)
	var out []domain.Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, domain.StorageFailure(err)
		}
		out = append(out, fromBSON(raw))
	}
	return out, domain.StorageFailure(cur.Err())
}

func (s *Mongo) UpdateOne(ctx context.Context, collection, id string, set domain.Document) (bool, error) {
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	res, err := s.DB.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": oid}, bson.M{"$set": bson.M(set)})
	if err != nil {
		return false, domain.StorageFailure(err)
	}
	return res.MatchedCount > 0, nil
}

func (s *Mongo) Ping(ctx context.Context) error {
	return domain.StorageFailure(s.DB.Client().Ping(ctx, nil))
}

// Collections — имена коллекций базы, для диагностики.
func (s *Mongo) Collections(ctx context.Context) ([]string, error) {
	names, err := s.DB.ListCollectionNames(ctx, bson.M{})
	return names, domain.StorageFailure(err)
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.Validation("invalid id format")
	}
	return oid, nil
}

func toBSON(filter domain.Filter) (bson.M, error) {
	q := bson.M{}
	for k, v := range filter {
		if k == "id" {
			id, ok := v.(string)
			if !ok {
				return nil, domain.Validation("invalid id format")
			}
			oid, err := parseID(id)
			if err != nil {
				return nil, err
			}
			q["_id"] = oid
			continue
		}
		q[k] = v
	}
	return q, nil
}

func fromBSON(raw bson.M) domain.Document {
	doc := make(domain.Document, len(raw))
	for k, v := range raw {
		if k == "_id" {
			if oid, ok := v.(primitive.ObjectID); ok {
				doc["id"] = oid.Hex()
				continue
			}
		}
		doc[k] = v
	}
	return doc
}

var _ domain.DocumentStore = (*Mongo)(nil)
