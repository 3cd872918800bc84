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
		log.Println("creating posts and post_likes tables...")
		if err := mghelper.CreateSchema(ctx, db, &pgstore.PostDao{}, &pgstore.PostLikeDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &pgstore.PostDao{}, "creator_id", "status"); err != nil {
			return err
		}
		if err := mghelper.CreateCompositeIndex(ctx, db, &pgstore.PostDao{}, "created_at DESC"); err != nil {
			return err
		}
		// category filter matches on tags
		_, err := db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_posts_tags ON posts USING GIN (tags)")
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping posts and post_likes tables...")
		return mghelper.DropTables(ctx, db, &pgstore.PostLikeDao{}, &pgstore.PostDao{})
	})
}
