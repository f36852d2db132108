// Package mongo provides the MongoDB-backed user store matching the
// original deployment: FindOneAndUpdate on the users collection sets
// lastLogin in the same round trip as the lookup.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/piarcha/piarka/pkg/userstore"
)

// Config holds MongoDB connection settings.
type Config struct {
	// URI is the MongoDB connection string (e.g., "mongodb://host:27017").
	URI string

	// Database is the database name (default: "piarka").
	Database string

	// Collection is the users collection name (default: "users").
	Collection string

	// ConnectTimeout bounds the initial connect and ping (default: 10s).
	ConnectTimeout time.Duration
}

// defaults applies default values for unset configuration fields.
func (c *Config) defaults() {
	if c.Database == "" {
		c.Database = "piarka"
	}
	if c.Collection == "" {
		c.Collection = "users"
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = 10 * time.Second
	}
}

// Store is a MongoDB-backed user store.
type Store struct {
	client *driver.Client
	users  *driver.Collection

	now func() time.Time
}

// Ensure Store implements userstore.Store at compile time.
var _ userstore.Store = (*Store)(nil)

// userDoc is the stored document shape.
type userDoc struct {
	Username  string    `bson:"username"`
	LastLogin time.Time `bson:"lastLogin"`
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := driver.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &Store{
		client: client,
		users:  client.Database(cfg.Database).Collection(cfg.Collection),
		now:    time.Now,
	}, nil
}

// FindAndTouchLogin matches username and sets lastLogin in one operation.
func (s *Store) FindAndTouchLogin(ctx context.Context, username string) (*userstore.User, error) {
	filter := bson.M{"username": username}
	update := bson.M{"$set": bson.M{"lastLogin": s.now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDoc
	err := s.users.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, driver.ErrNoDocuments) {
		return nil, userstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", userstore.ErrUnavailable, err)
	}

	return &userstore.User{Username: doc.Username, LastLogin: doc.LastLogin}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
