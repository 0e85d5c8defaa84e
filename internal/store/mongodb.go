package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"video-relay-go/internal/config"
)

var (
	mongoOnce sync.Once
	mongoCli  *mongo.Client
	mongoErr  error
)

func mongoDBName() string {
	v := strings.TrimSpace(config.AppConfig.MongoDB)
	if v == "" {
		return "video_relay"
	}
	return v
}

func mongoClient() (*mongo.Client, error) {
	if backendKind() != backendMongoDB {
		return nil, errors.New("mongodb backend disabled")
	}
	mongoOnce.Do(func() {
		uri := strings.TrimSpace(config.AppConfig.MongoURI)
		if uri == "" {
			mongoErr = errors.New("MONGO_URI is empty")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err != nil {
			mongoErr = err
			return
		}
		if err := cli.Ping(ctx, readpref.Primary()); err != nil {
			_ = cli.Disconnect(ctx)
			mongoErr = err
			return
		}
		if err := initMongoIndexes(ctx, cli); err != nil {
			_ = cli.Disconnect(ctx)
			mongoErr = err
			return
		}
		mongoCli = cli
	})
	return mongoCli, mongoErr
}

func initMongoIndexes(ctx context.Context, cli *mongo.Client) error {
	coll := cli.Database(mongoDBName()).Collection("resolutions")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "platform", Value: 1}, {Key: "content_id", Value: 1}},
			Options: options.Index().SetName("idx_resolutions_content"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_resolutions_created"),
		},
	})
	return err
}

func mongoSaveResolution(ctx context.Context, row ResolutionRow) error {
	cli, err := mongoClient()
	if err != nil {
		return err
	}
	coll := cli.Database(mongoDBName()).Collection("resolutions")
	_, err = coll.InsertOne(ctx, bson.M{
		"platform":   row.Platform,
		"content_id": row.ContentID,
		"source_url": row.SourceURL,
		"type":       row.Type,
		"caption":    row.Caption,
		"created_at": row.CreatedAt.Unix(),
	})
	return err
}

func mongoListResolutions(ctx context.Context, limit int) ([]ResolutionRow, error) {
	cli, err := mongoClient()
	if err != nil {
		return nil, err
	}
	coll := cli.Database(mongoDBName()).Collection("resolutions")
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []ResolutionRow
	for cur.Next(ctx) {
		var doc struct {
			Platform  string `bson:"platform"`
			ContentID string `bson:"content_id"`
			SourceURL string `bson:"source_url"`
			Type      string `bson:"type"`
			Caption   string `bson:"caption"`
			CreatedAt int64  `bson:"created_at"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, ResolutionRow{
			Platform:  doc.Platform,
			ContentID: doc.ContentID,
			SourceURL: doc.SourceURL,
			Type:      doc.Type,
			Caption:   doc.Caption,
			CreatedAt: timeFromUnix(doc.CreatedAt),
		})
	}
	return out, cur.Err()
}
