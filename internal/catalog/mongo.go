package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	LastUpdateCollection  = "lastupdate"
	ChannelsCollection    = "channels"
	LanguagesCollection   = "languages"
	CategoriesCollection  = "categories"
	MoviesCollection      = "movies"
	ShowsCollection       = "shows"
	UserContentCollection = "userContents"
)

const defaultConnectTimeout = 10 * time.Second

// Client connects to MongoDB on first use and shares the connection between catalogs
type Client struct {
	uri     string
	timeout time.Duration

	mu     sync.Mutex
	client *mongo.Client
}

// NewClient creates a lazily connecting client for uri
func NewClient(uri string) *Client {
	return &Client{uri: uri, timeout: defaultConnectTimeout}
}

// Database returns a handle on the named database, connecting if needed
func (c *Client) Database(ctx context.Context, name string) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.uri))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		c.client = client
	}
	return c.client.Database(name), nil
}

// Close disconnects if a connection was made
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	return err
}

// database is the shared base of the Mongo stores
type database struct {
	client *Client
	name   string
}

func (d database) collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := d.client.Database(ctx, d.name)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// LastUpdate returns the time of the last refresh, if one was recorded
func (d database) LastUpdate(ctx context.Context) (time.Time, bool, error) {
	coll, err := d.collection(ctx, LastUpdateCollection)
	if err != nil {
		return time.Time{}, false, err
	}
	var doc struct {
		Time int64 `bson:"time"`
	}
	err = coll.FindOne(ctx, bson.M{}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last update of %s: %w", d.name, err)
	}
	return time.UnixMilli(doc.Time), true, nil
}

// SetLastUpdate records a refresh time in milliseconds
func (d database) SetLastUpdate(ctx context.Context, t time.Time) error {
	coll, err := d.collection(ctx, LastUpdateCollection)
	if err != nil {
		return err
	}
	_, err = coll.UpdateOne(ctx, bson.M{}, bson.M{"$set": bson.M{"time": t.UnixMilli()}}, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to record last update of %s: %w", d.name, err)
	}
	return nil
}

func (d database) bulk(ctx context.Context, name string, models []mongo.WriteModel) error {
	if len(models) == 0 {
		return nil
	}
	coll, err := d.collection(ctx, name)
	if err != nil {
		return err
	}
	if _, err := coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("bulk write %s.%s: %w", d.name, name, err)
	}
	return nil
}

func (d database) find(ctx context.Context, name string, filter any, out any) error {
	coll, err := d.collection(ctx, name)
	if err != nil {
		return err
	}
	cur, err := coll.Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find %s.%s: %w", d.name, name, err)
	}
	return cur.All(ctx, out)
}

func (d database) aggregate(ctx context.Context, name string, pipeline mongo.Pipeline, out any) error {
	coll, err := d.collection(ctx, name)
	if err != nil {
		return err
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("aggregate %s.%s: %w", d.name, name, err)
	}
	return cur.All(ctx, out)
}

func upsertSet(key string, value string, doc any) mongo.WriteModel {
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{key: value}).
		SetUpdate(bson.M{"$set": doc}).
		SetUpsert(true)
}

func upsertOnInsert(key string, value string, doc any) mongo.WriteModel {
	return mongo.NewUpdateOneModel().
		SetFilter(bson.M{key: value}).
		SetUpdate(bson.M{"$setOnInsert": doc}).
		SetUpsert(true)
}
