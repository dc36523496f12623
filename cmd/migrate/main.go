package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/thomasjvidal/teste-backend-pleno/internal/config"
	"github.com/thomasjvidal/teste-backend-pleno/internal/logging"
	"github.com/thomasjvidal/teste-backend-pleno/internal/model"
	"github.com/thomasjvidal/teste-backend-pleno/internal/repository"
	"github.com/thomasjvidal/teste-backend-pleno/internal/service"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)   差分マイグレーションを適用
  down        最後に適用したマイグレーションを取り消す
  fresh       全マイグレーションを取り消してから順番に再適用
  seed        初期ユーザー（admin / user / testuser）を投入`)
	os.Exit(1)
}

func main() {
	_ = godotenv.Load()
	_ = godotenv.Load("../.env")

	cfg, err := config.Load()
	if err != nil {
		logging.Setup("")
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	migrationDir := findMigrationDir()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		runIncremental(ctx, pool, migrationDir)
	case "down":
		runDown(ctx, pool, migrationDir)
	case "fresh":
		for runDown(ctx, pool, migrationDir) {
		}
		runIncremental(ctx, pool, migrationDir)
	case "seed":
		runSeed(ctx, pool)
	default:
		usage()
	}
}

func findMigrationDir() string {
	dir := "migrations"
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		dir = "../migrations"
	}
	return dir
}

// collectUpFiles は .up.sql ファイル名をソート済みで返す
func collectUpFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Fatal("read migrations dir failed", "error", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files
}

func ensureSchemaMigrations(ctx context.Context, pool *pgxpool.Pool) {
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		logging.Fatal("create schema_migrations failed", "error", err)
	}
}

// applyInTx はマイグレーション SQL と schema_migrations の更新を 1 トランザクションで実行する
func applyInTx(ctx context.Context, pool *pgxpool.Pool, sql, record string, args ...any) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, sql); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, record, args...); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ---------------------------------------------------------------------------
// (default) 差分マイグレーション
// ---------------------------------------------------------------------------
func runIncremental(ctx context.Context, pool *pgxpool.Pool, dir string) {
	ensureSchemaMigrations(ctx, pool)

	upFiles := collectUpFiles(dir)
	applied := 0
	for i, filename := range upFiles {
		name := strings.TrimSuffix(filename, ".up.sql")

		var exists bool
		if err := pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists); err != nil {
			logging.Fatal("check migration failed", "migration", name, "error", err)
		}
		if exists {
			continue
		}

		sql, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			logging.Fatal("read migration failed", "migration", name, "error", err)
		}
		if err := applyInTx(ctx, pool, string(sql), "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
			logging.Fatal("migration failed", "migration", name, "error", err)
		}
		applied++
		slog.Info("migration completed", "number", i+1, "migration", name)
	}

	if applied == 0 {
		slog.Info("all migrations already applied")
	} else {
		slog.Info("migrations completed", "count", applied)
	}
}

// ---------------------------------------------------------------------------
// down: 最新のマイグレーションを 1 つ取り消す。取り消したら true
// ---------------------------------------------------------------------------
func runDown(ctx context.Context, pool *pgxpool.Pool, dir string) bool {
	ensureSchemaMigrations(ctx, pool)

	var name string
	err := pool.QueryRow(ctx, "SELECT name FROM schema_migrations ORDER BY name DESC LIMIT 1").Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			slog.Info("no migrations to revert")
			return false
		}
		logging.Fatal("find latest migration failed", "error", err)
	}

	sql, err := os.ReadFile(filepath.Join(dir, name+".down.sql"))
	if err != nil {
		logging.Fatal("read down migration failed", "migration", name, "error", err)
	}
	if err := applyInTx(ctx, pool, string(sql), "DELETE FROM schema_migrations WHERE name = $1", name); err != nil {
		logging.Fatal("revert failed", "migration", name, "error", err)
	}
	slog.Info("migration reverted", "migration", name)
	return true
}

// ---------------------------------------------------------------------------
// seed: 初期ユーザー（既存ならスキップ）
// ---------------------------------------------------------------------------

const seedPassword = "password"

var seedUsers = []struct {
	username string
	role     string
}{
	{"admin", model.RoleAdmin},
	{"user", model.RoleUsual},
	{"testuser", model.RoleUsual},
}

func runSeed(ctx context.Context, pool *pgxpool.Pool) {
	users := repository.NewPgUserRepository(pool)
	hash, err := service.HashPassword(seedPassword)
	if err != nil {
		logging.Fatal("hash seed password failed", "error", err)
	}

	created := 0
	for _, s := range seedUsers {
		u := &model.User{Username: s.username, PasswordHash: hash, Role: s.role}
		err := users.Create(ctx, u)
		switch {
		case err == nil:
			created++
			slog.Info("seed user created", "username", u.Username, "role", u.Role, "user_id", u.ID)
		case errors.Is(err, repository.ErrAlreadyExists):
			slog.Info("seed user exists", "username", u.Username)
		default:
			logging.Fatal("seed user failed", "username", u.Username, "error", err)
		}
	}
	slog.Info("seed completed", "created", created)
}
