// internal/app/store/ssocache/ssocache.go
package ssocache

import (
	"context"
	"time"

	"github.com/gatelens/gatelens/internal/app/gateway"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// docID: one cached document per console deployment.
const docID = "sso_config"

// ErrNotCached is returned when no config has ever been cached.
var ErrNotCached = mongo.ErrNoDocuments

// cachedConfig is the persisted shape. Secrets arrive masked from the
// gateway's read endpoint, so nothing sensitive lands in Mongo.
type cachedConfig struct {
	ID        string            `bson:"_id"`
	Config    gateway.SSOConfig `bson:"config"`
	UpdatedAt time.Time         `bson:"updated_at"`
	UpdatedBy string            `bson:"updated_by,omitempty"`
}

// Store caches the last SSO configuration successfully read from the
// gateway, so the admin panel can still show it when the gateway is down.
type Store struct {
	c *mongo.Collection
}

// New creates a new ssocache store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sso_config_cache")}
}

// Get returns the cached config and when it was cached.
// Returns ErrNotCached if nothing has been cached yet.
func (s *Store) Get(ctx context.Context) (gateway.SSOConfig, time.Time, error) {
	var doc cachedConfig
	err := s.c.FindOne(ctx, bson.M{"_id": docID}).Decode(&doc)
	if err != nil {
		return gateway.SSOConfig{}, time.Time{}, err
	}
	return doc.Config, doc.UpdatedAt, nil
}

// Put replaces the cached config. Uses upsert so it works on first write.
func (s *Store) Put(ctx context.Context, cfg gateway.SSOConfig, updatedBy string) error {
	doc := cachedConfig{
		ID:        docID,
		Config:    cfg,
		UpdatedAt: time.Now().UTC(),
		UpdatedBy: updatedBy,
	}
	opts := options.Replace().SetUpsert(true)
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": docID}, doc, opts)
	return err
}

// Delete drops the cached config, e.g. after SSO settings are deleted on
// the gateway.
func (s *Store) Delete(ctx context.Context) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": docID})
	return err
}
