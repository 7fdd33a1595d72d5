package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/carventure/sellerhub/internal/pkg/clock"
	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/pkg/hash"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/otp"
	"github.com/carventure/sellerhub/internal/pkg/uid"
	"github.com/carventure/sellerhub/internal/pkg/validator"
	"github.com/carventure/sellerhub/internal/seller/entity"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultRetryCeiling = 5
	defaultCooloff      = 30 * time.Minute
	defaultExpiry       = 10 * time.Minute
)

// OtpDelivery is a plaintext code on its way to the seller.
type OtpDelivery struct {
	SellerID    int64
	Channel     entity.Channel
	Destination string
	Code        string
}

type repoDelivery interface {
	SendOtp(ctx context.Context, in OtpDelivery) error
}

type repoDB interface {
	FindByPhone(ctx context.Context, phone string) (*entity.Seller, error)
	FindByEmail(ctx context.Context, email string) (*entity.Seller, error)
	// Save upserts by phone, guarded by Version. It returns the stored row
	// with its new version, or goerror.ErrConflict on a stale version.
	Save(ctx context.Context, s entity.Seller) (*entity.Seller, error)
}

type Usecase struct {
	repoDB       repoDB
	repoDelivery repoDelivery
	validator    validator.Validator
	cfg          config.Config
	hasher       hash.Hash
	codec        otp.Generator
	uid          uid.NumberID
	clock        clock.Clocker
	ins          instrument.Instrumentation

	issued   instrument.Counter
	verified instrument.Counter
	denied   instrument.Counter
}

type Dependency struct {
	RepoDB       repoDB
	RepoDelivery repoDelivery
	Validator    validator.Validator
	Config       config.Config
	Hasher       hash.Hash
	Codec        otp.Generator
	UID          uid.NumberID
	Clock        clock.Clocker
	Instrument   instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	meter := dep.Instrument.Meter("seller.usecase")

	return &Usecase{
		repoDB:       dep.RepoDB,
		repoDelivery: dep.RepoDelivery,
		validator:    dep.Validator,
		cfg:          dep.Config,
		hasher:       dep.Hasher,
		codec:        dep.Codec,
		uid:          dep.UID,
		clock:        dep.Clock,
		ins:          dep.Instrument,
		issued:       instrument.NewCounter(meter, "seller.otp.issued", "OTP codes issued"),
		verified:     instrument.NewCounter(meter, "seller.otp.verified", "OTP codes verified"),
		denied:       instrument.NewCounter(meter, "seller.otp.denied", "OTP requests or verifications refused"),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("seller.usecase").Start(ctx, name)
}

// policy is read per request so config reloads apply without a restart.
func (s *Usecase) policy() entity.OtpPolicy {
	p := entity.OtpPolicy{
		Ceiling: s.cfg.GetInt("modules.seller.otp.retry_ceiling"),
		Cooloff: s.cfg.GetMinute("modules.seller.otp.cooloff_minutes"),
	}
	if p.Ceiling <= 0 {
		p.Ceiling = defaultRetryCeiling
	}
	if p.Cooloff <= 0 {
		p.Cooloff = defaultCooloff
	}
	return p
}

func (s *Usecase) otpExpiry() time.Duration {
	if d := s.cfg.GetMinute("modules.seller.otp.expiry_minutes"); d > 0 {
		return d
	}
	return defaultExpiry
}

// findByPhone maps a missing seller to the business not-found error.
func (s *Usecase) findByPhone(ctx context.Context, phone string) (*entity.Seller, error) {
	seller, err := s.repoDB.FindByPhone(ctx, phone)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil, errSellerNotFound()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo find seller by phone", "phone", phone, "error", err)
		return nil, goerror.NewServer(err)
	}
	return seller, nil
}

func (s *Usecase) save(ctx context.Context, seller entity.Seller) (*entity.Seller, error) {
	saved, err := s.repoDB.Save(ctx, seller)
	if errors.Is(err, goerror.ErrConflict) {
		slog.WarnContext(ctx, "seller modified concurrently", "seller_id", seller.ID, "version", seller.Version)
		return nil, goerror.NewBusinessWrap(err, "Request was modified concurrently, please retry", goerror.CodeConflict)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo save seller", "seller_id", seller.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	return saved, nil
}

func errSellerNotFound() error {
	return goerror.NewBusinessWrap(entity.ErrSellerNotFound, "Seller not found", goerror.CodeNotFound)
}

func errStateTransition(err error) error {
	return goerror.NewBusinessWrap(err, "Complete the previous verification step first", goerror.CodeForbidden)
}
