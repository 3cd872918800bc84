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
		log.Println("creating follows and activities tables...")
		if err := mghelper.CreateSchema(ctx, db, &pgstore.FollowDao{}, &pgstore.ActivityDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &pgstore.FollowDao{}, "following_id"); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &pgstore.ActivityDao{}, "user_id", "target_user_id"); err != nil {
			return err
		}
		return mghelper.CreateCompositeIndex(ctx, db, &pgstore.ActivityDao{}, "created_at DESC", "seq DESC")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping follows and activities tables...")
		return mghelper.DropTables(ctx, db, &pgstore.ActivityDao{}, &pgstore.FollowDao{})
	})
}
