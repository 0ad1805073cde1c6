package persistence

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/workflows/pkg/api"
)

// MongoDefinitionStore is a DefinitionStore backed by MongoDB.
//
// Label and type are stored as plain fields so they can be queried; the
// graph itself is kept as a gob payload so extension data round-trips with
// its Go types intact.
type MongoDefinitionStore struct {
	coll *mongo.Collection
}

// Ensure it implements DefinitionStore.
var _ DefinitionStore = (*MongoDefinitionStore)(nil)

// NewMongoDefinitionStore creates a Mongo-backed definition store.
// dbName defaults to "workflows" if empty, collName defaults to "definitions".
func NewMongoDefinitionStore(client *mongo.Client, dbName, collName string) *MongoDefinitionStore {
	if dbName == "" {
		dbName = "workflows"
	}
	if collName == "" {
		collName = "definitions"
	}

	return &MongoDefinitionStore{
		coll: client.Database(dbName).Collection(collName),
	}
}

type mongoDefinitionDoc struct {
	ID      string `bson:"_id"`
	Label   string `bson:"label"`
	Type    string `bson:"type"`
	Payload []byte `bson:"payload"`
}

func (s *MongoDefinitionStore) SaveDefinition(ctx context.Context, def api.Definition) error {
	payload, err := EncodeDefinition(def)
	if err != nil {
		return err
	}

	doc := mongoDefinitionDoc{
		ID:      def.ID,
		Label:   def.Label,
		Type:    def.Type,
		Payload: payload,
	}

	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": def.ID}, doc, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoDefinitionStore) GetDefinition(ctx context.Context, id string) (api.Definition, error) {
	var doc mongoDefinitionDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return api.Definition{}, ErrDefinitionNotFound
		}
		return api.Definition{}, err
	}
	return DecodeDefinition(doc.Payload)
}

func (s *MongoDefinitionStore) ListDefinitions(ctx context.Context) ([]api.Definition, error) {
	cur, err := s.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var defs []api.Definition
	for cur.Next(ctx) {
		var doc mongoDefinitionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		def, err := DecodeDefinition(doc.Payload)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return defs, nil
}

func (s *MongoDefinitionStore) DeleteDefinition(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrDefinitionNotFound
	}
	return nil
}
