// Package migrations holds bun migration helpers shared by the migration sets
// and the migrate command.
package migrations

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const usageText = `Usage:
  migrate [-config path] <command>

Commands:
  init    create the bun migration tables
  up      apply every pending migration
  down    roll back the last migration group
  status  print applied and pending migrations

Example:
  go run ./cmd/api-server/migrate -config config.yaml up
`

// Usage prints command usage and exits.
func Usage() {
	fmt.Fprint(os.Stderr, usageText)
	flag.PrintDefaults()
	os.Exit(2)
}

// Exitf prints the message followed by usage and exits.
func Exitf(s string, args ...any) {
	fmt.Fprintf(os.Stderr, s+"\n", args...)
	Usage()
}

// CreateSchema creates a table for every model, skipping existing ones.
func CreateSchema(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		log.Println("creating table for", reflect.TypeOf(model))
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

// DropTables drops the tables of the given models with CASCADE.
func DropTables(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		log.Println("dropping table for", reflect.TypeOf(model))
		if _, err := db.NewDropTable().Model(model).IfExists().Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", model, err)
		}
	}
	return nil
}

// TruncateTables empties the tables of the given models.
func TruncateTables(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		if _, err := db.NewTruncateTable().Model(model).Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("truncate table for %T: %w", model, err)
		}
	}
	return nil
}

// CreateModelIndexes creates one single-column index per column, named
// idx_<table>_<column>.
func CreateModelIndexes(ctx context.Context, db bun.IDB, model any, columns ...string) error {
	for _, column := range columns {
		if err := CreateCompositeIndex(ctx, db, model, column); err != nil {
			return err
		}
	}
	return nil
}

// CreateCompositeIndex creates one index over columns, named
// idx_<table>_<col1>_<col2>. Columns may carry a sort direction.
func CreateCompositeIndex(ctx context.Context, db bun.IDB, model any, columns ...string) error {
	indexName, err := modelIndexName(db, model, columns...)
	if err != nil {
		return err
	}
	q := db.NewCreateIndex().Model(model).Index(indexName).IfNotExists()
	for _, column := range columns {
		q = q.ColumnExpr(column)
	}
	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("create index %s: %w", indexName, err)
	}
	return nil
}

// DropModelIndexes drops indexes created by CreateModelIndexes.
func DropModelIndexes(ctx context.Context, db bun.IDB, model any, columns ...string) error {
	for _, column := range columns {
		indexName, err := modelIndexName(db, model, column)
		if err != nil {
			return err
		}
		if _, err := db.NewDropIndex().Index(indexName).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("drop index %s: %w", indexName, err)
		}
	}
	return nil
}

func modelIndexName(db bun.IDB, model any, columns ...string) (string, error) {
	if model == nil {
		return "", fmt.Errorf("model cannot be nil")
	}
	tableName := db.NewCreateIndex().Model(model).GetTableName()
	if tableName == "" {
		return "", fmt.Errorf("failed to resolve table name for model %T", model)
	}

	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		parts = append(parts, strings.Fields(c)[0])
	}
	table := strings.NewReplacer(`"`, "", ".", "_").Replace(tableName)
	return fmt.Sprintf("idx_%s_%s", table, strings.Join(parts, "_")), nil
}

// RunMigrations executes the migrate command named by args[0].
func RunMigrations(ctx context.Context, migrator *migrate.Migrator, args ...string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command provided")
	}

	switch args[0] {
	case "init":
		if err := migrator.Init(ctx); err != nil {
			return err
		}
		log.Println("migration tables created")
		return nil

	case "up":
		return withLock(ctx, migrator, func() error {
			group, err := migrator.Migrate(ctx)
			if err != nil {
				return err
			}
			if group.IsZero() {
				log.Println("no new migrations to run (database is up to date)")
			} else {
				log.Printf("migrated to %s\n", group)
			}
			return nil
		})

	case "down":
		return withLock(ctx, migrator, func() error {
			group, err := migrator.Rollback(ctx)
			if err != nil {
				return err
			}
			if group.IsZero() {
				log.Println("no migrations to roll back")
			} else {
				log.Printf("rolled back %s\n", group)
			}
			return nil
		})

	case "status":
		ms, err := migrator.MigrationsWithStatus(ctx)
		if err != nil {
			return err
		}
		log.Printf("migrations: %s\n", ms)
		log.Printf("unapplied migrations: %s\n", ms.Unapplied())
		log.Printf("last migration group: %s\n", ms.LastGroup())
		return nil

	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func withLock(ctx context.Context, migrator *migrate.Migrator, fn func() error) error {
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(ctx); err != nil {
			log.Printf("failed to release migration lock: %v", err)
		}
	}()
	return fn()
}

// Migrate initialises the migration tables and applies pending migrations.
// Used for auto-migration at server start.
func Migrate(ctx context.Context, db *bun.DB, ms *migrate.Migrations) (*migrate.MigrationGroup, error) {
	migrator := migrate.NewMigrator(db, ms)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}

	var group *migrate.MigrationGroup
	err := withLock(ctx, migrator, func() error {
		var err error
		group, err = migrator.Migrate(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return group, nil
}
