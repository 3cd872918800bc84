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
		log.Println("creating live_streams table...")
		if err := mghelper.CreateSchema(ctx, db, &pgstore.LiveStreamDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &pgstore.LiveStreamDao{}, "creator_id", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping live_streams table...")
		return mghelper.DropTables(ctx, db, &pgstore.LiveStreamDao{})
	})
}
