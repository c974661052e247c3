// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/gatelens/gatelens/internal/app/features/dashboard"
	"github.com/gatelens/gatelens/internal/app/gateway"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backend dependencies built at startup and shared by
// the lifecycle hooks.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Gateway is the shared proxy client; Registry owns the per-user
	// dashboard orchestrators built on it.
	Gateway  *gateway.Client
	Registry *dashboard.Registry
}
