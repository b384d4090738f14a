package catalog

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UpdateLog records when a catalog was last refreshed
type UpdateLog interface {
	LastUpdate(ctx context.Context) (time.Time, bool, error)
	SetLastUpdate(ctx context.Context, t time.Time) error
}

// TVStore persists the television catalog
type TVStore interface {
	UpdateLog
	UpsertCategories(ctx context.Context, categories []Category) error
	UpsertLanguages(ctx context.Context, languages []Language) error
	UpsertChannels(ctx context.Context, channels []Channel) error
	Categories(ctx context.Context) ([]Category, error)
	Channels(ctx context.Context, filter ChannelFilter) ([]Channel, error)
}

// LibraryStore persists a movie-like catalog
type LibraryStore interface {
	UpdateLog
	InsertMissing(ctx context.Context, movies []Movie) error
	Find(ctx context.Context, title string) ([]Movie, error)
}

// ShowStore reads the shows catalog
type ShowStore interface {
	Shows(ctx context.Context, title string) ([]Show, error)
	Episodes(ctx context.Context, showID, season string) ([]Episode, error)
}

// MongoTVStore keeps channels, languages and categories in one database
type MongoTVStore struct{ database }

// NewMongoTVStore creates the television store
func NewMongoTVStore(client *Client, db string) *MongoTVStore {
	return &MongoTVStore{database{client: client, name: db}}
}

// UpsertCategories replaces categories by id
func (s *MongoTVStore) UpsertCategories(ctx context.Context, categories []Category) error {
	models := make([]mongo.WriteModel, 0, len(categories))
	for _, c := range categories {
		models = append(models, upsertSet("id", c.ID, c))
	}
	return s.bulk(ctx, CategoriesCollection, models)
}

// UpsertLanguages replaces languages by code
func (s *MongoTVStore) UpsertLanguages(ctx context.Context, languages []Language) error {
	models := make([]mongo.WriteModel, 0, len(languages))
	for _, l := range languages {
		models = append(models, upsertSet("code", l.Code, l))
	}
	return s.bulk(ctx, LanguagesCollection, models)
}

// UpsertChannels replaces channels by id
func (s *MongoTVStore) UpsertChannels(ctx context.Context, channels []Channel) error {
	models := make([]mongo.WriteModel, 0, len(channels))
	for _, c := range channels {
		models = append(models, upsertSet("id", c.ID, c))
	}
	return s.bulk(ctx, ChannelsCollection, models)
}

// Categories lists every stored category
func (s *MongoTVStore) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.find(ctx, CategoriesCollection, bson.M{}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Channels lists the playable channels matching filter
func (s *MongoTVStore) Channels(ctx context.Context, filter ChannelFilter) ([]Channel, error) {
	var out []Channel
	if err := s.find(ctx, ChannelsCollection, ChannelQuery(filter), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MongoLibraryStore keeps movie-like documents in one collection
type MongoLibraryStore struct {
	database
	collection string
}

// NewMongoLibraryStore creates a library store over db.collection
func NewMongoLibraryStore(client *Client, db, collection string) *MongoLibraryStore {
	return &MongoLibraryStore{database: database{client: client, name: db}, collection: collection}
}

// InsertMissing adds movies whose id is not stored yet and leaves existing ones untouched
func (s *MongoLibraryStore) InsertMissing(ctx context.Context, movies []Movie) error {
	models := make([]mongo.WriteModel, 0, len(movies))
	for _, m := range movies {
		models = append(models, upsertOnInsert("id", m.ID, m))
	}
	return s.bulk(ctx, s.collection, models)
}

// Find lists movies whose title contains title; an empty title lists all
func (s *MongoLibraryStore) Find(ctx context.Context, title string) ([]Movie, error) {
	var out []Movie
	if err := s.find(ctx, s.collection, TitleQuery(title), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MongoShowStore reads shows with embedded seasons and episodes
type MongoShowStore struct{ database }

// NewMongoShowStore creates the show store
func NewMongoShowStore(client *Client, db string) *MongoShowStore {
	return &MongoShowStore{database{client: client, name: db}}
}

// Shows lists shows whose title contains title
func (s *MongoShowStore) Shows(ctx context.Context, title string) ([]Show, error) {
	var out []Show
	if err := s.aggregate(ctx, ShowsCollection, ShowsPipeline(title), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Episodes lists the episodes of one season
func (s *MongoShowStore) Episodes(ctx context.Context, showID, season string) ([]Episode, error) {
	var out []struct {
		Episodes []Episode `bson:"episodes"`
	}
	if err := s.aggregate(ctx, ShowsCollection, EpisodesPipeline(showID, season), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out[0].Episodes, nil
}
