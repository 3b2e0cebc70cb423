package dataset

import (
	"context"
	stderrors "errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/crimescope/pkg/errors"
)

// mongoDocument is the stored shape of one resource.
type mongoDocument struct {
	Name    string `bson:"_id"`
	Payload string `bson:"payload"`
}

// MongoSource reads resources from a MongoDB collection whose documents are
// {_id: <resource name>, payload: <raw JSON text>}.
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSource connects to uri and uses database.collection.
func NewMongoSource(ctx context.Context, uri, database, collection string) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	return &MongoSource{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// NewMongoSourceFromCollection wraps an existing collection.
func NewMongoSourceFromCollection(coll *mongo.Collection) *MongoSource {
	return &MongoSource{coll: coll}
}

func (s *MongoSource) Name() string { return "mongo" }

func (s *MongoSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := errors.ValidateResourceName(name); err != nil {
		return nil, err
	}
	var doc mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeDatasetNotFound, "dataset %s not found in collection %s", name, s.coll.Name())
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "find %s", name)
	}
	return []byte(doc.Payload), nil
}

// Put upserts a resource.
func (s *MongoSource) Put(ctx context.Context, name string, data []byte) error {
	if err := errors.ValidateResourceName(name); err != nil {
		return err
	}
	doc := mongoDocument{Name: name, Payload: string(data)}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "store %s", name)
	}
	return nil
}

// Close disconnects the client when the source owns it.
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}
