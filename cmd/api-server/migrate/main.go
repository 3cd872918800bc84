package main

import (
	"context"
	"flag"
	"log"

	"github.com/uptrace/bun/migrate"

	"github.com/goonhub/goonhub/pkg/config"
	"github.com/goonhub/goonhub/pkg/migrations/apidb"
	"github.com/goonhub/goonhub/pkg/pgutil"
	mghelper "github.com/goonhub/goonhub/pkg/pgutil/migrations"
)

func main() {
	cfgPath := flag.String("config", "config.example.yaml", "Path to configuration file")
	flag.Usage = mghelper.Usage
	flag.Parse()

	cfg, err := config.LoadAPIServer(*cfgPath)
	if err != nil {
		log.Fatalf("error reading configuration file: %s", err.Error())
	}

	db, err := pgutil.ConnectDB(&cfg.Database, nil)
	if err != nil {
		log.Fatalf("error connecting to database: %s", err.Error())
	}
	defer db.Close()

	log.Printf("Running migrations for GoonHub database (%s)...\n", cfg.Database.Database)

	migrator := migrate.NewMigrator(db, apidb.Migrations)
	if err := mghelper.RunMigrations(context.Background(), migrator, flag.Args()...); err != nil {
		mghelper.Exitf(err.Error())
	}
}
