package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/carventure/sellerhub/internal/pkg/clock"
	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/seller/entity"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyPrefixPhone = "seller:phone:"
	keyPrefixEmail = "seller:email:"
)

// Cache is a Redis seller store. Each seller is a hash keyed by phone, with a
// string index from email to phone.
type Cache struct {
	client *redis.Client
	clock  clock.Clocker
	ins    instrument.Instrumentation
}

func NewCache(client *redis.Client, clk clock.Clocker, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, clock: clk, ins: ins}
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("seller.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Cache) FindByPhone(ctx context.Context, phone string) (_ *entity.Seller, err error) {
	ctx, span := c.startSpan(ctx, "FindByPhone")
	defer func() { c.endSpan(span, err) }()

	return c.load(ctx, c.client, phone)
}

func (c *Cache) FindByEmail(ctx context.Context, email string) (_ *entity.Seller, err error) {
	ctx, span := c.startSpan(ctx, "FindByEmail")
	defer func() { c.endSpan(span, err) }()

	if email == "" {
		return nil, goerror.ErrNotFound
	}

	phone, err := c.client.Get(ctx, keyPrefixEmail+email).Result()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return c.load(ctx, c.client, phone)
}

// Save writes the seller inside WATCH/MULTI on its hash and fails with
// goerror.ErrConflict when the stored version is not in.Version.
func (c *Cache) Save(ctx context.Context, in entity.Seller) (_ *entity.Seller, err error) {
	ctx, span := c.startSpan(ctx, "Save")
	defer func() { c.endSpan(span, err) }()

	key := keyPrefixPhone + in.Phone
	var out entity.Seller

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.load(ctx, tx, in.Phone)
		switch {
		case errors.Is(err, goerror.ErrNotFound):
			if in.Version != 0 {
				return goerror.ErrConflict
			}
		case err != nil:
			return err
		case current.Version != in.Version:
			return goerror.ErrConflict
		}

		// the old index may already belong to another seller
		releaseOld := false
		if current != nil && current.Email != "" && current.Email != in.Email {
			oldKey := keyPrefixEmail + current.Email
			if err := tx.Watch(ctx, oldKey).Err(); err != nil {
				return err
			}
			owner, err := tx.Get(ctx, oldKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			releaseOld = owner == in.Phone
		}

		now := c.clock.Now().UTC()
		out = in
		out.Version = in.Version + 1
		out.UpdatedAt = now
		if current == nil {
			out.CreatedAt = now
		} else {
			out.CreatedAt = current.CreatedAt
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.HSet(ctx, key, encode(out))
			if releaseOld {
				p.Del(ctx, keyPrefixEmail+current.Email)
			}
			if out.Email != "" {
				p.Set(ctx, keyPrefixEmail+out.Email, out.Phone, 0)
			}
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, goerror.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Cache) load(ctx context.Context, r redis.Cmdable, phone string) (*entity.Seller, error) {
	fields, err := r.HGetAll(ctx, keyPrefixPhone+phone).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, goerror.ErrNotFound
	}
	return decode(fields), nil
}

func encode(s entity.Seller) map[string]any {
	return map[string]any{
		"id":                 s.ID,
		"phone":              s.Phone,
		"email":              s.Email,
		"first_name":         s.FirstName,
		"middle_name":        s.MiddleName,
		"last_name":          s.LastName,
		"city":               s.City,
		"pincode":            s.Pincode,
		"otp_hash":           s.OtpHash,
		"otp_expires_at":     unixNano(s.OtpExpiresAt),
		"otp_retry_count":    s.OtpRetryCount,
		"otp_cooldown_until": unixNano(s.OtpCooldownUntil),
		"state":              int16(s.State),
		"version":            s.Version,
		"created_at":         s.CreatedAt.UnixNano(),
		"updated_at":         s.UpdatedAt.UnixNano(),
	}
}

func decode(f map[string]string) *entity.Seller {
	return &entity.Seller{
		ID:               parseInt(f["id"]),
		Phone:            f["phone"],
		Email:            f["email"],
		FirstName:        f["first_name"],
		MiddleName:       f["middle_name"],
		LastName:         f["last_name"],
		City:             f["city"],
		Pincode:          f["pincode"],
		OtpHash:          f["otp_hash"],
		OtpExpiresAt:     fromUnixNano(f["otp_expires_at"]),
		OtpRetryCount:    int(parseInt(f["otp_retry_count"])),
		OtpCooldownUntil: fromUnixNano(f["otp_cooldown_until"]),
		State:            entity.State(parseInt(f["state"])),
		Version:          parseInt(f["version"]),
		CreatedAt:        time.Unix(0, parseInt(f["created_at"])).UTC(),
		UpdatedAt:        time.Unix(0, parseInt(f["updated_at"])).UTC(),
	}
}

// unixNano encodes an absent time as 0.
func unixNano(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(raw string) *time.Time {
	n := parseInt(raw)
	if n == 0 {
		return nil
	}
	t := time.Unix(0, n).UTC()
	return &t
}

func parseInt(raw string) int64 {
	n, _ := strconv.ParseInt(raw, 10, 64)
	return n
}
