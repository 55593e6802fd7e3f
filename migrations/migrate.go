package migrations

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"

	"github.com/uptrace/bun"
)

//go:embed *.sql
var migrationFiles embed.FS

const advisoryLockID int64 = 740019321

// Apply runs the "goose Up" section of every embedded migration in filename
// order, skipping the ones already recorded in schema_migrations.
func Apply(ctx context.Context, db *bun.DB) error {
	names, err := migrationNames()
	if err != nil {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.NewRaw("SELECT pg_advisory_lock(?)", advisoryLockID).Exec(ctx); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = conn.NewRaw("SELECT pg_advisory_unlock(?)", advisoryLockID).Exec(context.Background())
	}()

	if _, err := conn.NewRaw(`
CREATE TABLE IF NOT EXISTS schema_migrations (
	name TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`).Exec(ctx); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	for _, name := range names {
		var applied bool
		if err := conn.NewRaw("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = ?)", name).Scan(ctx, &applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			continue
		}

		stmts, err := Statements(name)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			if _, err := conn.NewRaw(stmt).Exec(ctx); err != nil {
				return fmt.Errorf("exec migration %s: %w", name, err)
			}
		}
		if _, err := conn.NewRaw("INSERT INTO schema_migrations (name) VALUES (?)", name).Exec(ctx); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}
	return nil
}

// Statements returns the individual "goose Up" statements of one migration.
func Statements(name string) ([]string, error) {
	b, err := migrationFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read migration %s: %w", name, err)
	}
	up, err := extractGooseUp(string(b))
	if err != nil {
		return nil, fmt.Errorf("migration %s: %w", name, err)
	}
	return splitSQLStatements(up), nil
}

func migrationNames() ([]string, error) {
	entries, err := migrationFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

func extractGooseUp(sql string) (string, error) {
	const upMarker = "-- +goose Up"
	const downMarker = "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", fmt.Errorf("missing goose up marker")
	}
	afterUp := strings.TrimLeft(sql[upIdx+len(upMarker):], "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), nil
}

func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
