package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded schema to a PostgreSQL store.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

type upFile struct {
	version uint64
	name    string
}

// ApplySQLite applies the embedded up migrations to a SQLite store, keeping
// the same schema_migrations bookkeeping golang-migrate uses.
func ApplySQLite(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	files, err := upFiles()
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (version BIGINT PRIMARY KEY, dirty BOOLEAN NOT NULL)`,
	).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current uint64
	if err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&current).Error; err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, f := range files {
		if f.version <= current {
			continue
		}
		body, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/"+f.name)
		if err != nil {
			return fmt.Errorf("read %s: %w", f.name, err)
		}
		err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, stmt := range SplitStatements(string(body)) {
				if err := tx.Exec(stmt).Error; err != nil {
					return fmt.Errorf("%s: %w", f.name, err)
				}
			}
			if err := tx.Exec(`DELETE FROM schema_migrations`).Error; err != nil {
				return err
			}
			return tx.Exec(`INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, f.version, false).Error
		})
		if err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func upFiles() ([]upFile, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}

	var files []upFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s has no version prefix", name)
		}
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %s: %w", name, err)
		}
		files = append(files, upFile{version: version, name: name})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// SplitStatements splits a migration body on semicolons. Migration files must
// not contain semicolons inside literals or comments.
func SplitStatements(body string) []string {
	parts := strings.Split(body, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		stmt := strings.TrimSpace(part)
		if stmt == "" {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
