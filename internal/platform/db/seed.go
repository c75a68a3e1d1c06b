package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"schoolhr/internal/domain/auth"
	"schoolhr/internal/platform/config"
)

// Seed ensures the school row and an admin login exist. It returns the school id.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) (string, error) {
	schoolID, err := ensureSchool(ctx, pool, cfg.SchoolName)
	if err != nil {
		return "", err
	}
	if err := ensureAdminUser(ctx, pool, schoolID, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return "", err
	}
	return schoolID, nil
}

func ensureSchool(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM schools WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	err = pool.QueryRow(ctx, "INSERT INTO schools (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, schoolID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE school_id = $1 AND lower(email) = lower($2)", schoolID, email).Scan(&id)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO users (school_id, email, full_name, password_hash, role, status)
    VALUES ($1, $2, $3, $4, $5, $6)
  `, schoolID, email, "Administrator", hash, auth.RoleAdmin, auth.UserStatusActive)
	return err
}
