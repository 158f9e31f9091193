package main

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"warehouse-in-go/pkg/db"
)

// dbMigrateCmd represents the db migrate command
var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations to bring the schema
up to date. Migrations are located in the db/migrations directory.

Example:
  warehousectl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runMigrations(); err != nil {
			fmt.Println("Migration failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  warehousectl db down      # Rollback 1 migration
  warehousectl db down 3    # Rollback 3 migrations`,
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			_, _ = fmt.Sscanf(args[0], "%d", &steps)
		}

		if err := runMigrationsDown(steps); err != nil {
			fmt.Println("Rollback failed:", err)
			os.Exit(1)
		}
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showMigrationStatus(); err != nil {
			fmt.Println("Failed to get status:", err)
			os.Exit(1)
		}
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

func getDatabaseURL() string {
	return db.URL()
}

// getDatabaseURLWithMigrationsTable returns the database URL with custom migrations table
// This allows golang-migrate to use a different table name, leaving alembic_version
// available for Alembic (the Python toolchain's migration tracker) compatibility
func getDatabaseURLWithMigrationsTable() string {
	dbURL := getDatabaseURL()
	if dbURL == "" {
		return ""
	}
	// Add custom migrations table parameter
	if strings.Contains(dbURL, "?") {
		return dbURL + "&x-migrations-table=go_schema_migrations"
	}
	return dbURL + "?x-migrations-table=go_schema_migrations"
}

func runMigrations() error {
	dbURL := getDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	m, err := createMigrateInstance(getDatabaseURLWithMigrationsTable())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, _ := m.Version()
	fmt.Printf("Current version: %d (dirty: %v)\n", version, dirty)

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			fmt.Println("No migrations to run - database is up to date")
			// Still sync alembic_version for interoperability
			if err := syncAlembicVersion(dbURL); err != nil {
				fmt.Printf("Warning: Failed to sync alembic_version: %v\n", err)
			}
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	newVersion, _, _ := m.Version()
	fmt.Printf("Migrated to version: %d\n", newVersion)

	// Sync the Alembic-compatible version table for Python toolchain interoperability
	if err := syncAlembicVersion(dbURL); err != nil {
		fmt.Printf("Warning: Failed to sync alembic_version: %v\n", err)
	}

	fmt.Println("Migrations complete")
	return nil
}

// syncAlembicVersion creates/updates the Alembic-compatible alembic_version table
// so tooling that inspects the Python migration tracker sees the schema revision
// applied by Go.
//
// golang-migrate uses the go_schema_migrations table (via the x-migrations-table
// parameter), so alembic_version is ours to write. Alembic keeps a single row
// holding the current revision identifier; we store the numeric migration
// version as that identifier.
func syncAlembicVersion(dbURL string) error {
	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Get the current version from golang-migrate's go_schema_migrations table
	var currentVersion int64
	err = conn.QueryRow("SELECT version FROM go_schema_migrations WHERE dirty = false LIMIT 1").Scan(&currentVersion)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil // No migrations applied yet
		}
		return fmt.Errorf("failed to get current version: %w", err)
	}

	_, err = conn.Exec(`
		CREATE TABLE IF NOT EXISTS alembic_version (
			version_num varchar(32) NOT NULL PRIMARY KEY
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create alembic_version table: %w", err)
	}

	// Alembic keeps exactly one row
	_, err = conn.Exec(`DELETE FROM alembic_version`)
	if err != nil {
		return fmt.Errorf("failed to clear alembic_version: %w", err)
	}

	_, err = conn.Exec(`INSERT INTO alembic_version (version_num) VALUES ($1)`,
		fmt.Sprintf("%d", currentVersion))
	if err != nil {
		return fmt.Errorf("failed to record version: %w", err)
	}

	fmt.Println("Synced alembic_version for Python toolchain interoperability")
	return nil
}

func runMigrationsDown(steps int) error {
	dbURL := getDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	m, err := createMigrateInstance(getDatabaseURLWithMigrationsTable())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	fmt.Printf("Rolling back %d migration(s)...\n", steps)

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	version, _, _ := m.Version()
	fmt.Printf("Rolled back to version: %d\n", version)
	return nil
}

func showMigrationStatus() error {
	dbURL := getDatabaseURL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	m, err := createMigrateInstance(getDatabaseURLWithMigrationsTable())
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := m.Version()
	if err != nil {
		if err == migrate.ErrNilVersion {
			fmt.Println("No migrations have been applied yet")
			return nil
		}
		return err
	}

	fmt.Printf("Current version: %d\n", version)
	if dirty {
		fmt.Println("Warning: Database is in a dirty state")
	}
	return nil
}
