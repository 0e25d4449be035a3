// Package mongo loads material libraries from a MongoDB collection. Each
// collection document is one scene dump in the same shape pkg/scene/jsonfile
// consumes, so libraries can be seeded with mongoimport from the exact files
// the CLI reads. Documents are converted back to relaxed extended JSON and
// handed to the jsonfile parser, keeping a single source of truth for the
// document grammar.
package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/materialkit/matdump/pkg/errors"
	"github.com/materialkit/matdump/pkg/scene"
	"github.com/materialkit/matdump/pkg/scene/jsonfile"
)

// Source reads scene documents from one MongoDB collection.
type Source struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Config locates the scene collection.
type Config struct {
	URI        string // defaults to mongodb://localhost:27017
	Database   string // defaults to "matdump"
	Collection string // defaults to "scenes"
}

// NewSource connects to MongoDB and verifies the connection with a ping.
func NewSource(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "matdump"
	}
	if cfg.Collection == "" {
		cfg.Collection = "scenes"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect to %s", cfg.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping %s", cfg.URI)
	}

	return &Source{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Library fetches the scene document whose "library" field matches name and
// builds a live library from it.
func (s *Source) Library(ctx context.Context, name string) (scene.Library, error) {
	var doc bson.M
	err := s.coll.FindOne(ctx, bson.M{"library": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "library %q not found", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneLoad, err, "fetch library %q", name)
	}
	delete(doc, "_id")

	// Relaxed extended JSON keeps plain numbers plain, which is what the
	// jsonfile grammar expects.
	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneLoad, err, "convert library %q", name)
	}
	return jsonfile.Parse(data)
}

// ListLibraries returns the names of all stored libraries.
func (s *Source) ListLibraries(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "library", bson.M{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSceneLoad, err, "list libraries")
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Close disconnects from MongoDB.
func (s *Source) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
