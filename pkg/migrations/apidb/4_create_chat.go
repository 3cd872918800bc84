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
		log.Println("creating ai_personas and chat_messages tables...")
		if err := mghelper.CreateSchema(ctx, db, &pgstore.PersonaDao{}, &pgstore.ChatMessageDao{}); err != nil {
			return err
		}
		return mghelper.CreateCompositeIndex(ctx, db, &pgstore.ChatMessageDao{}, "user_id", "creator_id", "created_at", "seq")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping ai_personas and chat_messages tables...")
		return mghelper.DropTables(ctx, db, &pgstore.ChatMessageDao{}, &pgstore.PersonaDao{})
	})
}
