// Package database provides a GORM-based database component with connection pooling,
// health checks, transactions, and migration support.
//
// # Architecture
//
// The database module follows gokit's component pattern with a driver-agnostic design.
// Users provide the database driver (postgres, mysql, sqlite, etc.) via WithDriver(),
// keeping the module lightweight and flexible.
//
// # Quick Start
//
// Register the database component with a component.Registry:
//
//	import (
//	    "github.com/constellation-engine/core/component"
//	    "github.com/constellation-engine/core/database"
//	    "gorm.io/driver/postgres"
//	)
//
//	func main() {
//	    reg := component.NewRegistry()
//	    cfg := database.Config{Enabled: true, DSN: "host=localhost dbname=mydb"}
//	    reg.Register(database.NewComponent(cfg, log).
//	        WithDriver(func(dsn string) gorm.Dialector {
//	            return postgres.Open(dsn)
//	        }))
//	    reg.StartAll(context.Background())
//	}
//
// # Package contents and subpackages
//
//   - DB (this package): database wrapper, connection pooling, and transaction helpers
//   - errors.go (this package): database error utilities and translation to AppError
//   - models.go (this package): common database types like BaseModel
//   - migration: File-based database migrations using golang-migrate
//   - query: Advanced query builders and helpers
//   - testutil: Testing utilities for database-dependent tests
//
// # Disabled configuration
//
// Start does not skip a disabled configuration: it passes it to New, which
// returns a "database is disabled" error. Health has no "disabled" status;
// until Start succeeds it reports StatusUnhealthy with "database not
// initialized".
//
//	cfg := database.Config{Enabled: false}  // Start returns an error
//
// See component.go for full lifecycle documentation.
package database
