package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tapcoin/internal/db"
	"tapcoin/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

const schemaTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name       TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func main() {
	apply := flag.Bool("apply", false, "apply pending migrations")
	migDir := flag.String("dir", filepath.Join("internal", "migrations"), "migrations directory")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		logger.Fatal("connect failed", "error", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, schemaTable); err != nil {
		logger.Fatal("create schema_migrations", "error", err)
	}

	names, err := migrationFiles(*migDir)
	if err != nil {
		logger.Fatal("read migrations dir", "error", err)
	}

	for _, name := range names {
		applied, err := isApplied(ctx, pool, name)
		if err != nil {
			logger.Fatal("check migration", "name", name, "error", err)
		}
		if !*apply {
			state := "pending"
			if applied {
				state = "applied"
			}
			fmt.Printf("%-40s %s\n", name, state)
			continue
		}
		if applied {
			continue
		}
		if err := applyFile(ctx, pool, filepath.Join(*migDir, name), name); err != nil {
			logger.Fatal("failed to apply migration", "name", name, "error", err)
		}
		fmt.Printf("applied %s\n", name)
	}
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func isApplied(ctx context.Context, pool *pgxpool.Pool, name string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

func applyFile(ctx context.Context, pool *pgxpool.Pool, path, name string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(b)); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name)
		return err
	})
}
