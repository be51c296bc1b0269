//go:build integration

// Package testdb starts a throwaway Postgres container with the schema applied.
package testdb

import (
	"context"
	"database/sql"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"coursehub/internal/platform/database"
)

type DBHandle struct {
	DB     *sql.DB
	cancel func()
	stop   func(context.Context) error
}

func (h *DBHandle) Close() {
	if h.DB != nil {
		_ = h.DB.Close()
	}
	if h.stop != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.stop(ctx)
	}
	if h.cancel != nil {
		h.cancel()
	}
}

func Start(ctx context.Context) (*DBHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)

	pg, err := postgres.RunContainer(ctx,
		tc.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("coursehub"),
		postgres.WithUsername("coursehub"),
		postgres.WithPassword("coursehub"),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	uri, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pg.Terminate(ctx)
		cancel()
		return nil, err
	}

	db, err := database.Open(ctx, uri)
	if err != nil {
		_ = pg.Terminate(ctx)
		cancel()
		return nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		_ = pg.Terminate(ctx)
		cancel()
		return nil, err
	}

	return &DBHandle{
		DB:     db,
		cancel: cancel,
		stop:   pg.Terminate,
	}, nil
}

// Reset empties every table between tests.
func (h *DBHandle) Reset(ctx context.Context) error {
	_, err := h.DB.ExecContext(ctx, `TRUNCATE users, courses, course_offers, enrollments, grades, course_files,
		homework_assignments, homework_submissions, student_messages, course_messages RESTART IDENTITY CASCADE`)
	return err
}
