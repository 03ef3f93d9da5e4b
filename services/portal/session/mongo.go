package session

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type sessionDocument struct {
	ID        string            `bson:"_id"`
	Values    map[string]string `bson:"values"`
	UpdatedAt time.Time         `bson:"updated_at"`
}

// MongoStorage keeps one document per session. A TTL index on updated_at
// expires idle sessions.
type MongoStorage struct {
	coll *mongo.Collection
	ttl  time.Duration
}

func NewMongoStorage(db *mongo.Database, collection string, ttl time.Duration) *MongoStorage {
	return &MongoStorage{coll: db.Collection(collection), ttl: ttl}
}

func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	if s.ttl <= 0 {
		return nil
	}
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(s.ttl.Seconds())),
	})
	return err
}

func (s *MongoStorage) Get(ctx context.Context, sid, key string) (string, bool, error) {
	var doc sessionDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": sid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

func (s *MongoStorage) Set(ctx context.Context, sid string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range values {
		set["values."+k] = v
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": sid},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoStorage) Delete(ctx context.Context, sid string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	unset := bson.M{}
	for _, k := range keys {
		unset["values."+k] = ""
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": sid},
		bson.M{"$unset": unset, "$set": bson.M{"updated_at": time.Now().UTC()}},
	)
	return err
}

func (s *MongoStorage) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
