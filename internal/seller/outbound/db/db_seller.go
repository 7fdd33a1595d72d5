package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/seller/entity"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
)

const sellerColumns = `id, phone, email, first_name, middle_name, last_name, city, pincode,
	otp_hash, otp_expires_at, otp_retry_count, otp_cooldown_until, state, version, created_at, updated_at`

var insertColumns = []string{
	"id", "phone", "email", "first_name", "middle_name", "last_name", "city", "pincode",
	"otp_hash", "otp_expires_at", "otp_retry_count", "otp_cooldown_until", "state",
}

var insertSeller = fmt.Sprintf(`INSERT INTO sellers (%s) VALUES (%s)
	ON CONFLICT (phone) DO NOTHING
	RETURNING %s`,
	strings.Join(insertColumns, ", "),
	strings.Join(lo.Times(len(insertColumns), func(i int) string { return "$" + strconv.Itoa(i+1) }), ", "),
	sellerColumns,
)

type sellerRow struct {
	ID               int64      `db:"id"`
	Phone            string     `db:"phone"`
	Email            string     `db:"email"`
	FirstName        string     `db:"first_name"`
	MiddleName       string     `db:"middle_name"`
	LastName         string     `db:"last_name"`
	City             string     `db:"city"`
	Pincode          string     `db:"pincode"`
	OtpHash          string     `db:"otp_hash"`
	OtpExpiresAt     *time.Time `db:"otp_expires_at"`
	OtpRetryCount    int        `db:"otp_retry_count"`
	OtpCooldownUntil *time.Time `db:"otp_cooldown_until"`
	State            int16      `db:"state"`
	Version          int64      `db:"version"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

func (r sellerRow) toEntity() *entity.Seller {
	return &entity.Seller{
		ID:               r.ID,
		Phone:            r.Phone,
		Email:            r.Email,
		FirstName:        r.FirstName,
		MiddleName:       r.MiddleName,
		LastName:         r.LastName,
		City:             r.City,
		Pincode:          r.Pincode,
		OtpHash:          r.OtpHash,
		OtpExpiresAt:     utc(r.OtpExpiresAt),
		OtpRetryCount:    r.OtpRetryCount,
		OtpCooldownUntil: utc(r.OtpCooldownUntil),
		State:            entity.State(r.State),
		Version:          r.Version,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func (s *DB) queryOne(ctx context.Context, sql string, args ...any) (*entity.Seller, error) {
	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, s.mapError(err)
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[sellerRow])
	if err != nil {
		return nil, s.mapError(err)
	}
	return row.toEntity(), nil
}

func (s *DB) FindByPhone(ctx context.Context, phone string) (_ *entity.Seller, err error) {
	ctx, span := s.startSpan(ctx, "FindByPhone")
	defer func() { s.endSpan(span, err) }()

	return s.queryOne(ctx, `SELECT `+sellerColumns+` FROM sellers WHERE phone = $1`, phone)
}

// FindByEmail returns the most recently updated seller bound to email.
func (s *DB) FindByEmail(ctx context.Context, email string) (_ *entity.Seller, err error) {
	ctx, span := s.startSpan(ctx, "FindByEmail")
	defer func() { s.endSpan(span, err) }()

	return s.queryOne(ctx, `SELECT `+sellerColumns+` FROM sellers
		WHERE email = $1 AND email <> ''
		ORDER BY updated_at DESC LIMIT 1`, email)
}

// Save inserts a seller with Version 0 and otherwise updates the row only
// while its version still equals in.Version. A lost race yields
// goerror.ErrConflict.
func (s *DB) Save(ctx context.Context, in entity.Seller) (_ *entity.Seller, err error) {
	ctx, span := s.startSpan(ctx, "Save")
	defer func() { s.endSpan(span, err) }()

	var out *entity.Seller
	if in.Version == 0 {
		out, err = s.queryOne(ctx, insertSeller,
			in.ID, in.Phone, in.Email, in.FirstName, in.MiddleName, in.LastName, in.City, in.Pincode,
			in.OtpHash, in.OtpExpiresAt, in.OtpRetryCount, in.OtpCooldownUntil, int16(in.State))
	} else {
		out, err = s.queryOne(ctx, `UPDATE sellers SET
				email = $3, first_name = $4, middle_name = $5, last_name = $6, city = $7, pincode = $8,
				otp_hash = $9, otp_expires_at = $10, otp_retry_count = $11, otp_cooldown_until = $12, state = $13,
				version = version + 1, updated_at = now()
			WHERE phone = $1 AND version = $2
			RETURNING `+sellerColumns,
			in.Phone, in.Version, in.Email, in.FirstName, in.MiddleName, in.LastName, in.City, in.Pincode,
			in.OtpHash, in.OtpExpiresAt, in.OtpRetryCount, in.OtpCooldownUntil, int16(in.State))
	}

	// no row back means another writer got there first
	if errors.Is(err, goerror.ErrNotFound) {
		err = goerror.ErrConflict
	}
	return out, err
}
