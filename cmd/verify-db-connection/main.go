// Maintenance tool: verifies the configured Postgres database is reachable
// and that the expected tables and indexes exist after migration.
package main

import (
	"database/sql"
	"fmt"
	"log"

	"crosspay-backend/internal/config"

	_ "github.com/lib/pq"
)

var expectedTables = []string{"payment_links", "payment_attempts", "transactions"}

func main() {
	fmt.Println("🔍 Verifying database connection and schema...")

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.DSN == "" {
		log.Fatal("No database DSN configured (set DATABASE_DSN or database.dsn)")
	}

	sqlDB, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	var dbName string
	if err := sqlDB.QueryRow("SELECT current_database()").Scan(&dbName); err != nil {
		log.Fatalf("Failed to get database name: %v", err)
	}
	fmt.Printf("📋 Connected to database: %s\n", dbName)

	ok := true
	for _, table := range expectedTables {
		var exists bool
		err := sqlDB.QueryRow(`
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = $1
			)
		`, table).Scan(&exists)
		if err != nil {
			log.Fatalf("Failed to check table %s: %v", table, err)
		}
		if !exists {
			fmt.Printf("❌ Table missing: %s (run the server once to migrate)\n", table)
			ok = false
			continue
		}

		var indexCount int
		err = sqlDB.QueryRow(`
			SELECT COUNT(*) FROM pg_indexes
			WHERE schemaname = 'public' AND tablename = $1
		`, table).Scan(&indexCount)
		if err != nil {
			log.Fatalf("Failed to count indexes on %s: %v", table, err)
		}

		var rowCount int64
		if err := sqlDB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&rowCount); err != nil {
			log.Fatalf("Failed to count rows in %s: %v", table, err)
		}

		fmt.Printf("✅ %s: %d rows, %d indexes\n", table, rowCount, indexCount)
	}

	if !ok {
		log.Fatal("Schema verification failed")
	}
	fmt.Println("✅ Database verification complete")
}
