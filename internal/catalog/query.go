package catalog

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ChannelFilter narrows a channel listing
type ChannelFilter struct {
	Category  string
	Languages []string // channels whose languages are all in this set
}

// ChannelQuery builds the channel filter: at least one playable stream, the
// category if given, and no language outside the allowed set
func ChannelQuery(f ChannelFilter) bson.M {
	q := bson.M{
		"_streams": bson.M{"$elemMatch": bson.M{"status": bson.M{"$in": bson.A{StreamOnline, StreamTimeout}}}},
	}
	if f.Category != "" {
		q["categories"] = bson.M{"$elemMatch": bson.M{"id": f.Category}}
	}
	if len(f.Languages) > 0 {
		q["languages"] = bson.M{"$not": bson.M{"$elemMatch": bson.M{"code": bson.M{"$nin": f.Languages}}}}
	}
	return q
}

// TitleQuery matches titles containing text, case-insensitively
func TitleQuery(text string) bson.M {
	if text == "" {
		return bson.M{}
	}
	return bson.M{"title": bson.M{"$regex": regexp.QuoteMeta(text), "$options": "i"}}
}

// ShowsPipeline lists shows with their season and episode counts
func ShowsPipeline(title string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: TitleQuery(title)}},
		{{Key: "$project", Value: bson.D{
			{Key: "id", Value: 1},
			{Key: "title", Value: 1},
			{Key: "image", Value: 1},
			{Key: "genre", Value: 1},
			{Key: "plot", Value: 1},
			{Key: "baseurl", Value: 1},
			{Key: "seasons", Value: bson.M{"$size": "$seasons"}},
			{Key: "episodes", Value: bson.M{"$reduce": bson.M{
				"input":        "$seasons",
				"initialValue": 0,
				"in":           bson.M{"$add": bson.A{"$$value", bson.M{"$size": "$$this.episodes"}}},
			}}},
		}}},
	}
}

// EpisodesPipeline unwinds one season of a show into its episode list
func EpisodesPipeline(showID, season string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"id": showID}}},
		{{Key: "$unwind", Value: "$seasons"}},
		{{Key: "$match", Value: bson.M{"seasons.id": season}}},
		{{Key: "$project", Value: bson.M{"episodes": "$seasons.episodes"}}},
	}
}
