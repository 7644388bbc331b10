package mongodb

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/veilstore/veilstore/pkg/config"
	"github.com/veilstore/veilstore/pkg/observability/logger"
	"github.com/veilstore/veilstore/pkg/store"
)

const namespaceExistsCode = 48

var _ store.Adapter = (*Adapter)(nil)

// Config holds MongoDB adapter configuration.
type Config struct {
	URI              string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// Adapter owns a single logical connection to MongoDB. The zero lifecycle is
// NewAdapter -> Connect -> operations -> Close; a closed adapter is only
// reopened by an explicit new Connect call. The adapter is safe for
// concurrent use.
type Adapter struct {
	cfg     Config
	logger  logger.Logger
	timeout time.Duration

	mu     sync.RWMutex
	client *mongo.Client
}

// NewAdapter validates cfg and returns an unconnected adapter. A missing
// URI or database name is a fatal *config.ConfigurationError.
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if cfg.URI == "" {
		return nil, config.NewConfigurationError("MONGO_URI", "mongodb URI is required")
	}
	if cfg.Database == "" {
		return nil, config.NewConfigurationError("MONGO_DATABASE", "mongodb database is required")
	}
	if log == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}

	return &Adapter{
		cfg:     cfg,
		logger:  log,
		timeout: cfg.OperationTimeout,
	}, nil
}

// Connect establishes the connection and verifies it with a ping. It is
// idempotent: connecting an already-connected adapter is a no-op. A failed
// connect leaves the adapter unconnected and is not retried.
func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return nil
	}

	a.logger.Info("Connecting to MongoDB", "database", a.cfg.Database)

	dialCtx, cancel := context.WithTimeout(ctx, a.cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(dialCtx, options.Client().ApplyURI(a.cfg.URI))
	if err != nil {
		a.logger.Error("Failed to connect to MongoDB", "error", err)
		return NewConnectionError("connect", err)
	}

	if err := client.Ping(dialCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		a.logger.Error("Failed to connect to MongoDB", "error", err)
		return NewConnectionError("ping", err)
	}

	a.client = client
	a.logger.Info("Successfully connected to MongoDB", "database", a.cfg.Database)
	return nil
}

// Close releases the connection. It is safe to call multiple times.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := a.client.Disconnect(ctx)
	a.client = nil
	if err != nil {
		return NewConnectionError("disconnect", err)
	}
	a.logger.Info("MongoDB connection closed")
	return nil
}

// Ping verifies the connection is alive.
func (a *Adapter) Ping(ctx context.Context) error {
	client, err := a.liveClient()
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return NewConnectionError("ping", err)
	}
	return nil
}

// HealthCheck implements store.Adapter with a bounded ping.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	hcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Ping(hcCtx); err != nil {
		a.logger.Error("MongoDB health check failed", "error", err)
		return err
	}
	return nil
}

// Database returns the configured logical database, or an error when the
// adapter is not connected.
func (a *Adapter) Database() (*mongo.Database, error) {
	client, err := a.liveClient()
	if err != nil {
		return nil, err
	}
	return client.Database(a.cfg.Database), nil
}

// Collection returns a handle to the named collection.
func (a *Adapter) Collection(name string) (*mongo.Collection, error) {
	db, err := a.Database()
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

// With runs fn against a freshly connected adapter and guarantees Close is
// invoked exactly once on every exit path.
func With(ctx context.Context, cfg Config, log logger.Logger, fn func(*Adapter) error) error {
	adapter, err := NewAdapter(cfg, log)
	if err != nil {
		return err
	}
	if err := adapter.Connect(ctx); err != nil {
		return err
	}
	defer adapter.Close()
	return fn(adapter)
}

// InsertOne inserts a single document into the collection.
func (a *Adapter) InsertOne(ctx context.Context, collection string, doc interface{}) (*mongo.InsertOneResult, error) {
	coll, err := a.Collection(collection)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := coll.InsertOne(opCtx, doc)
	if err != nil {
		return nil, NewConnectionError("insert one", err)
	}
	return result, nil
}

// InsertMany inserts all documents into the collection.
func (a *Adapter) InsertMany(ctx context.Context, collection string, docs []interface{}) (*mongo.InsertManyResult, error) {
	coll, err := a.Collection(collection)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := coll.InsertMany(opCtx, docs)
	if err != nil {
		return nil, NewConnectionError("insert many", err)
	}
	return result, nil
}

// FindOne finds a single document matching filter and decodes it into
// result. A missing document surfaces as mongo.ErrNoDocuments.
func (a *Adapter) FindOne(ctx context.Context, collection string, filter, result interface{}) error {
	coll, err := a.Collection(collection)
	if err != nil {
		return err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	if err := coll.FindOne(opCtx, filter).Decode(result); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return err
		}
		return NewConnectionError("find one", err)
	}
	return nil
}

// Find returns all documents matching filter, decoded into results.
func (a *Adapter) Find(ctx context.Context, collection string, filter, results interface{}, opts ...*options.FindOptions) error {
	coll, err := a.Collection(collection)
	if err != nil {
		return err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	cursor, err := coll.Find(opCtx, filter, opts...)
	if err != nil {
		return NewConnectionError("find", err)
	}
	if err := cursor.All(opCtx, results); err != nil {
		return NewConnectionError("find", err)
	}
	return nil
}

// UpdateOne updates the first document matching filter.
func (a *Adapter) UpdateOne(ctx context.Context, collection string, filter, update interface{}) (*mongo.UpdateResult, error) {
	coll, err := a.Collection(collection)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := coll.UpdateOne(opCtx, filter, update)
	if err != nil {
		return nil, NewConnectionError("update one", err)
	}
	return result, nil
}

// UpdateMany updates all documents matching filter.
func (a *Adapter) UpdateMany(ctx context.Context, collection string, filter, update interface{}) (*mongo.UpdateResult, error) {
	coll, err := a.Collection(collection)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := coll.UpdateMany(opCtx, filter, update)
	if err != nil {
		return nil, NewConnectionError("update many", err)
	}
	return result, nil
}

// DeleteOne physically removes the first document matching filter.
func (a *Adapter) DeleteOne(ctx context.Context, collection string, filter interface{}) (*mongo.DeleteResult, error) {
	coll, err := a.Collection(collection)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := coll.DeleteOne(opCtx, filter)
	if err != nil {
		return nil, NewConnectionError("delete one", err)
	}
	return result, nil
}

// DeleteMany physically removes all documents matching filter.
func (a *Adapter) DeleteMany(ctx context.Context, collection string, filter interface{}) (*mongo.DeleteResult, error) {
	coll, err := a.Collection(collection)
	if err != nil {
		return nil, err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	result, err := coll.DeleteMany(opCtx, filter)
	if err != nil {
		return nil, NewConnectionError("delete many", err)
	}
	return result, nil
}

// CountDocuments counts documents matching filter.
func (a *Adapter) CountDocuments(ctx context.Context, collection string, filter interface{}) (int64, error) {
	coll, err := a.Collection(collection)
	if err != nil {
		return 0, err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	count, err := coll.CountDocuments(opCtx, filter)
	if err != nil {
		return 0, NewConnectionError("count documents", err)
	}
	return count, nil
}

// EnsureCollection creates the named collection if it does not exist. An
// already-existing collection is the success path, not an error.
func (a *Adapter) EnsureCollection(ctx context.Context, name string) error {
	db, err := a.Database()
	if err != nil {
		return err
	}
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	if err := db.CreateCollection(opCtx, name); err != nil {
		if isNamespaceExists(err) {
			a.logger.Info("Collection already exists", "collection", name)
			return nil
		}
		return NewConnectionError("create collection", err)
	}
	a.logger.Info("Collection created", "collection", name)
	return nil
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == namespaceExistsCode || cmdErr.Name == "NamespaceExists"
	}
	return false
}

func (a *Adapter) liveClient() (*mongo.Client, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.client == nil {
		return nil, NewConnectionError("operation", ErrNotConnected)
	}
	return a.client, nil
}

func (a *Adapter) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}
