package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/workflows/internal/testutil"
)

type MongoStoreTestSuite struct {
	suite.Suite
	endpoint string
	client   *mongo.Client
	store    *MongoDefinitionStore
	dbName   string
	collName string
}

func TestMongoStoreTestSuite(t *testing.T) {
	testsuite := new(MongoStoreTestSuite)
	testsuite.endpoint = testutil.StartMongoContainer(t)
	testsuite.dbName = "workflows_test"
	testsuite.collName = "definitions"
	suite.Run(t, testsuite)
}

func (ts *MongoStoreTestSuite) SetupTest() {
	r := ts.Require()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(ts.endpoint))
	r.NoErrorf(err, "mongo.Connect failed")
	r.NoErrorf(client.Ping(ctx, nil), "mongo ping failed")

	ts.client = client
	r.NoError(client.Database(ts.dbName).Collection(ts.collName).Drop(ctx))
	ts.store = NewMongoDefinitionStore(client, ts.dbName, ts.collName)
}

func (ts *MongoStoreTestSuite) TearDownTest() {
	_ = ts.client.Disconnect(context.Background())
}

func (ts *MongoStoreTestSuite) TestConformance() {
	runDefinitionStoreConformance(ts.T(), ts.store)
}

func (ts *MongoStoreTestSuite) TestLabelAndTypeAreQueryable() {
	r := ts.Require()
	ctx := context.Background()

	r.NoError(ts.store.SaveDefinition(ctx, sampleDefinition("articles")))

	coll := ts.client.Database(ts.dbName).Collection(ts.collName)
	n, err := coll.CountDocuments(ctx, bson.M{"type": "editorial", "label": "Editorial articles"})
	r.NoError(err)
	r.EqualValues(1, n)
}
