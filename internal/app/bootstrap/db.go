// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/gatelens/gatelens/internal/app/features/dashboard"
	"github.com/gatelens/gatelens/internal/app/gateway"
	"github.com/gatelens/gatelens/internal/app/store/audit"
	"github.com/gatelens/gatelens/internal/app/store/oauthstate"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB connects to MongoDB and builds the shared proxy client and
// dashboard registry.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	gw := gateway.New(appCfg.GatewayBaseURL, appCfg.GatewayMasterKey, logger)

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
		Gateway:       gw,
		Registry:      dashboard.NewRegistry(gw, logger),
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))
	logger.Info("proxy gateway configured",
		zap.String("base_url", appCfg.GatewayBaseURL))

	return deps, nil
}

// EnsureSchema creates the indexes the console's stores rely on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := audit.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	if err := oauthstate.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("oauth state indexes: %w", err)
	}
	return nil
}
