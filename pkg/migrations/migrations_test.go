package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun/migrate"

	"github.com/goonhub/goonhub/pkg/migrations/apidb"
	mghelper "github.com/goonhub/goonhub/pkg/pgutil"
	pgstore "github.com/goonhub/goonhub/pkg/store/pg"
)

var apiTables = []string{
	"users",
	"posts",
	"post_likes",
	"purchases",
	"tokens",
	"tips",
	"ai_personas",
	"chat_messages",
	"follows",
	"activities",
	"live_streams",
}

func migrateUp(t *testing.T, migrator *migrate.Migrator) *migrate.MigrationGroup {
	t.Helper()
	ctx := context.Background()

	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return group
}

func TestAPIDBMigrations_Apply(t *testing.T) {
	db := mghelper.SetupTestDB(t)

	group := migrateUp(t, migrate.NewMigrator(db, apidb.Migrations))
	if group.IsZero() {
		t.Fatal("expected migrations to run, but none were applied")
	}

	for _, table := range append(apiTables, "bun_migrations") {
		mghelper.AssertTableExists(t, db, table)
	}

	for _, index := range []string{
		"idx_users_is_creator",
		"idx_posts_creator_id",
		"idx_posts_created_at",
		"idx_posts_tags",
		"idx_tokens_creator_id",
		"idx_tips_to_user",
		"idx_chat_messages_user_id_creator_id_created_at_seq",
		"idx_follows_following_id",
		"idx_activities_user_id",
		"idx_activities_target_user_id",
		"idx_activities_created_at_seq",
		"idx_live_streams_status",
	} {
		mghelper.AssertIndexExists(t, db, index)
	}
}

func TestMigrations_Idempotency(t *testing.T) {
	db := mghelper.SetupTestDB(t)
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, apidb.Migrations)
	migrateUp(t, migrator)

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("second Migrate() failed: %v", err)
	}
	if !group.IsZero() {
		t.Error("expected no new migrations on second run")
	}
	mghelper.AssertTableExists(t, db, "posts")
}

func TestMigrations_Rollback(t *testing.T) {
	db := mghelper.SetupTestDB(t)
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, apidb.Migrations)
	migrateUp(t, migrator)

	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("expected rollback to process a migration group")
	}

	for _, table := range apiTables {
		mghelper.AssertTableNotExists(t, db, table)
	}
}

func TestUniqueEdges_Enforced(t *testing.T) {
	db := mghelper.SetupTestDB(t)
	ctx := context.Background()
	migrateUp(t, migrate.NewMigrator(db, apidb.Migrations))

	follow := &pgstore.FollowDao{ID: "f1", FollowerID: "alice", FollowingID: "bob"}
	if _, err := db.NewInsert().Model(follow).Exec(ctx); err != nil {
		t.Fatalf("first follow insert failed: %v", err)
	}
	dup := &pgstore.FollowDao{ID: "f2", FollowerID: "alice", FollowingID: "bob"}
	if _, err := db.NewInsert().Model(dup).Exec(ctx); err == nil {
		t.Error("expected duplicate follow edge to be rejected")
	}
	mghelper.AssertRowCount(t, db, "follows", 1)

	purchase := &pgstore.PurchaseDao{ID: "p1", UserID: "alice", PostID: "post-1", AmountLamports: 10}
	if _, err := db.NewInsert().Model(purchase).Exec(ctx); err != nil {
		t.Fatalf("first purchase insert failed: %v", err)
	}
	again := &pgstore.PurchaseDao{ID: "p2", UserID: "alice", PostID: "post-1", AmountLamports: 10}
	if _, err := db.NewInsert().Model(again).Exec(ctx); err == nil {
		t.Error("expected duplicate purchase to be rejected")
	}
	mghelper.AssertRowCount(t, db, "purchases", 1)
}
