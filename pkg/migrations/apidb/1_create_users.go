package apidb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/goonhub/goonhub/pkg/pgutil/migrations"
	pgstore "github.com/goonhub/goonhub/pkg/store/pg"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating users table...")
		if err := mghelper.CreateSchema(ctx, db, &pgstore.UserDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &pgstore.UserDao{}, "is_creator")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping users table...")
		return mghelper.DropTables(ctx, db, &pgstore.UserDao{})
	})
}
