package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings required to establish a MongoDB connection.
type Config struct {
	URI         string
	Database    string
	Timeout     time.Duration
	MaxPoolSize uint64
	AppName     string
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetTimeout(timeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// Store groups the repositories that share one database handle.
type Store struct {
	Users       *UserRepository
	Clients     *ClientRepository
	Companies   *CompanyRepository
	Properties  *PropertyRepository
	Inspections *InspectionRepository
	Uploads     *UploadRepository
	Contests    *ContestRepository
	Sync        *SyncRepository
	Objects     *GridFSStore
}

// NewStore builds every repository on db.
func NewStore(db *mongo.Database) (*Store, error) {
	objects, err := NewGridFSStore(db, uploadsBucket)
	if err != nil {
		return nil, err
	}
	return &Store{
		Users:       NewUserRepository(db),
		Clients:     NewClientRepository(db),
		Companies:   NewCompanyRepository(db),
		Properties:  NewPropertyRepository(db),
		Inspections: NewInspectionRepository(db),
		Uploads:     NewUploadRepository(db),
		Contests:    NewContestRepository(db),
		Sync:        NewSyncRepository(db),
		Objects:     objects,
	}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// duplicateOn reports whether err is a duplicate-key violation of the named
// index.
func duplicateOn(err error, index string) bool {
	return mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), index)
}
