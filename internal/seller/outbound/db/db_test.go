package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/seller/entity"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newStore(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:17-alpine",
		postgres.WithDatabase("sellerhub"),
		postgres.WithUsername("sellerhub"),
		postgres.WithPassword("sellerhub"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	if err := Migrate(dsn); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	// a second run is a no-op
	if err := Migrate(dsn); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pgxpool: %v", err)
	}
	t.Cleanup(pool.Close)

	return NewDB(pool, instrument.NewNoop())
}

func TestDB_SaveAndFind(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// Arrange
	expires := time.Now().UTC().Add(5 * time.Minute).Truncate(time.Microsecond)
	s := entity.NewSeller(1001, "9999999999")
	s.OtpHash = "digest"
	s.OtpExpiresAt = &expires
	s.OtpRetryCount = 1

	// Act
	created, err := store.Save(ctx, s)

	// Assert
	if err != nil {
		t.Fatalf("Save(insert) error = %v", err)
	}
	if created.Version != 1 || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected created row %+v", created)
	}

	got, err := store.FindByPhone(ctx, "9999999999")
	if err != nil {
		t.Fatalf("FindByPhone() error = %v", err)
	}
	if got.ID != 1001 || got.OtpHash != "digest" || got.OtpExpiresAt == nil || !got.OtpExpiresAt.Equal(expires) ||
		got.State != entity.StateUnverified || got.OtpCooldownUntil != nil {
		t.Fatalf("unexpected row %+v", got)
	}

	got.Email = "seller@example.com"
	got.MarkVerified(entity.StateMobileVerified)
	updated, err := store.Save(ctx, *got)
	if err != nil {
		t.Fatalf("Save(update) error = %v", err)
	}
	if updated.Version != 2 || updated.OtpExpiresAt != nil || updated.State != entity.StateMobileVerified {
		t.Fatalf("unexpected updated row %+v", updated)
	}

	byEmail, err := store.FindByEmail(ctx, "seller@example.com")
	if err != nil || byEmail.Phone != "9999999999" {
		t.Fatalf("FindByEmail() = %+v, %v", byEmail, err)
	}
}

func TestDB_SharedEmail(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	bind := func(id int64, phone, email string) {
		t.Helper()
		s, err := store.FindByPhone(ctx, phone)
		if errors.Is(err, goerror.ErrNotFound) {
			fresh := entity.NewSeller(id, phone)
			s = &fresh
		} else if err != nil {
			t.Fatalf("FindByPhone(%s) error = %v", phone, err)
		}
		s.Email = email
		if _, err := store.Save(ctx, *s); err != nil {
			t.Fatalf("Save(%s, %s) error = %v", phone, email, err)
		}
	}
	owner := func(email string) string {
		t.Helper()
		s, err := store.FindByEmail(ctx, email)
		if errors.Is(err, goerror.ErrNotFound) {
			return ""
		}
		if err != nil {
			t.Fatalf("FindByEmail(%s) error = %v", email, err)
		}
		return s.Phone
	}

	// Arrange
	bind(1, "1111111111", "shared@example.com")
	bind(2, "2222222222", "shared@example.com")
	if got := owner("shared@example.com"); got != "2222222222" {
		t.Fatalf("owner = %q, want latest binder", got)
	}

	// Act
	bind(1, "1111111111", "first@example.com")

	// Assert
	if got := owner("shared@example.com"); got != "2222222222" {
		t.Fatalf("owner after other seller moved = %q, want 2222222222", got)
	}
	if got := owner("first@example.com"); got != "1111111111" {
		t.Fatalf("owner(first) = %q, want 1111111111", got)
	}

	bind(2, "2222222222", "second@example.com")
	if got := owner("shared@example.com"); got != "" {
		t.Fatalf("owner after last holder moved = %q, want none", got)
	}
}

func TestDB_NotFound(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.FindByPhone(ctx, "0000000000"); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("FindByPhone() error = %v, want ErrNotFound", err)
	}
	if _, err := store.FindByEmail(ctx, ""); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("FindByEmail(\"\") error = %v, want ErrNotFound", err)
	}
}

func TestDB_SaveConflicts(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// Arrange
	first, err := store.Save(ctx, entity.NewSeller(1, "8888888888"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// Act & Assert
	if _, err := store.Save(ctx, entity.NewSeller(2, "8888888888")); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("duplicate insert error = %v, want ErrConflict", err)
	}

	winner := *first
	winner.OtpRetryCount = 2
	if _, err := store.Save(ctx, winner); err != nil {
		t.Fatalf("first update error = %v", err)
	}

	loser := *first
	loser.OtpRetryCount = 9
	if _, err := store.Save(ctx, loser); !errors.Is(err, goerror.ErrConflict) {
		t.Fatalf("stale update error = %v, want ErrConflict", err)
	}

	got, _ := store.FindByPhone(ctx, "8888888888")
	if got.OtpRetryCount != 2 || got.Version != 2 {
		t.Fatalf("stale write applied: %+v", got)
	}
}

func TestMigrateURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"postgres://u:p@h:5432/db?sslmode=disable": "pgx5://u:p@h:5432/db?sslmode=disable",
		"postgresql://h/db":                        "pgx5://h/db",
		"pgx5://h/db":                              "pgx5://h/db",
	}
	for in, want := range tests {
		if got := migrateURL(in); got != want {
			t.Fatalf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
	if err := Migrate(""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
