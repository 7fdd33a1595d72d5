package seller

import (
	"context"
	"fmt"
	"strings"

	"github.com/carventure/sellerhub/internal/pkg/clock"
	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/hash"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/jwt"
	"github.com/carventure/sellerhub/internal/pkg/mail"
	"github.com/carventure/sellerhub/internal/pkg/messaging"
	"github.com/carventure/sellerhub/internal/pkg/otp"
	"github.com/carventure/sellerhub/internal/pkg/router"
	"github.com/carventure/sellerhub/internal/pkg/uid"
	"github.com/carventure/sellerhub/internal/pkg/validator"
	"github.com/carventure/sellerhub/internal/seller/entity"
	"github.com/carventure/sellerhub/internal/seller/inbound"
	"github.com/carventure/sellerhub/internal/seller/outbound/cache"
	"github.com/carventure/sellerhub/internal/seller/outbound/db"
	"github.com/carventure/sellerhub/internal/seller/outbound/email"
	"github.com/carventure/sellerhub/internal/seller/outbound/mq"
	"github.com/carventure/sellerhub/internal/seller/usecase"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"

	DeliveryMail      = "mail"
	DeliveryMessaging = "messaging"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	CacheConn  *redis.Client              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Mail       mail.Mail                  `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Hasher     hash.Hash                  `validate:"required"`
	Codec      otp.Generator              `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

// PublicEndpoints lists the seller routes that skip authentication.
func PublicEndpoints() map[string][]string {
	return inbound.PublicEndpoints()
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	store, err := newStore(dep)
	if err != nil {
		return err
	}

	delivery, err := newDelivery(dep)
	if err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:       store,
		RepoDelivery: delivery,
		Validator:    dep.Validator,
		Config:       dep.Config,
		Hasher:       dep.Hasher,
		Codec:        dep.Codec,
		UID:          dep.UID,
		Clock:        dep.Clock,
		Instrument:   dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.JWT, dep.Config)

	return nil
}

type sellerStore interface {
	FindByPhone(ctx context.Context, phone string) (*entity.Seller, error)
	FindByEmail(ctx context.Context, email string) (*entity.Seller, error)
	Save(ctx context.Context, s entity.Seller) (*entity.Seller, error)
}

type otpDelivery interface {
	SendOtp(ctx context.Context, in usecase.OtpDelivery) error
}

func newStore(dep Dependency) (sellerStore, error) {
	switch driver := strings.TrimSpace(dep.Config.GetString("modules.seller.store")); driver {
	case "", StorePostgres:
		return db.NewDB(dep.DBConn, dep.Instrument), nil
	case StoreRedis:
		return cache.NewCache(dep.CacheConn, dep.Clock, dep.Instrument), nil
	default:
		return nil, fmt.Errorf("seller: unknown store %q", driver)
	}
}

func newDelivery(dep Dependency) (otpDelivery, error) {
	switch driver := strings.TrimSpace(dep.Config.GetString("modules.seller.otp.delivery")); driver {
	case "", DeliveryMail:
		return email.New(dep.Mail, dep.Instrument), nil
	case DeliveryMessaging:
		return mq.NewMessaging(dep.Messaging, dep.UUID, dep.Instrument), nil
	default:
		return nil, fmt.Errorf("seller: unknown otp delivery %q", driver)
	}
}
