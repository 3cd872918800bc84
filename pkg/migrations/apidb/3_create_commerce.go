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
		log.Println("creating purchases, tokens and tips tables...")
		if err := mghelper.CreateSchema(ctx, db, &pgstore.PurchaseDao{}, &pgstore.TokenDao{}, &pgstore.TipDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &pgstore.PurchaseDao{}, "post_id"); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &pgstore.TokenDao{}, "creator_id", "mint_address"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &pgstore.TipDao{}, "to_user", "from_user")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping purchases, tokens and tips tables...")
		return mghelper.DropTables(ctx, db, &pgstore.TipDao{}, &pgstore.TokenDao{}, &pgstore.PurchaseDao{})
	})
}
