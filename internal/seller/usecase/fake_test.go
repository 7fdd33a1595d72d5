package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/carventure/sellerhub/internal/pkg/clock"
	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/pkg/hash"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/validator"
	"github.com/carventure/sellerhub/internal/seller/entity"
)

const testConfig = `
modules:
  seller:
    otp:
      retry_ceiling: 5
      cooloff_minutes: 30
      expiry_minutes: 5
`

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type memStore struct {
	mu      sync.Mutex
	sellers map[string]entity.Seller
	saves   int
	saveErr error
	findErr error
}

func newMemStore() *memStore {
	return &memStore{sellers: map[string]entity.Seller{}}
}

func (m *memStore) FindByPhone(_ context.Context, phone string) (*entity.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findErr != nil {
		return nil, m.findErr
	}
	s, ok := m.sellers[phone]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) FindByEmail(_ context.Context, email string) (*entity.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.sellers {
		if s.Email == email {
			return &s, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (m *memStore) Save(_ context.Context, s entity.Seller) (*entity.Seller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return nil, m.saveErr
	}
	current, exists := m.sellers[s.Phone]
	if (exists && current.Version != s.Version) || (!exists && s.Version != 0) {
		return nil, goerror.ErrConflict
	}

	s.Version++
	m.sellers[s.Phone] = s
	m.saves++
	return &s, nil
}

func (m *memStore) get(t *testing.T, phone string) entity.Seller {
	t.Helper()

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sellers[phone]
	if !ok {
		t.Fatalf("seller %s not stored", phone)
	}
	return s
}

func (m *memStore) put(s entity.Seller) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.Version = 1
	m.sellers[s.Phone] = s
}

type fakeDelivery struct {
	sent []OtpDelivery
	err  error
}

func (f *fakeDelivery) SendOtp(_ context.Context, in OtpDelivery) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, in)
	return nil
}

type stubCodec struct{ code string }

func (c stubCodec) Generate() (string, error) { return c.code, nil }

type seqID struct{ next int64 }

func (s *seqID) Generate() int64 {
	s.next++
	return s.next
}

type fixture struct {
	uc       *Usecase
	store    *memStore
	delivery *fakeDelivery
	clock    *clock.Manual
	hasher   hash.Hash
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(testConfig))
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	f := &fixture{
		store:    newMemStore(),
		delivery: &fakeDelivery{},
		clock:    clock.NewManual(testNow),
		hasher:   hash.NewSHA256(),
	}
	f.uc = New(Dependency{
		RepoDB:       f.store,
		RepoDelivery: f.delivery,
		Validator:    v,
		Config:       cfg,
		Hasher:       f.hasher,
		Codec:        stubCodec{code: "123456"},
		UID:          &seqID{next: 100},
		Clock:        f.clock,
		Instrument:   instrument.NewNoop(),
	})
	return f
}

func (f *fixture) requestPhone(t *testing.T, phone string) {
	t.Helper()
	if err := f.uc.RequestOtp(context.Background(), RequestOtpInput{Channel: entity.ChannelPhone, Destination: phone}); err != nil {
		t.Fatalf("RequestOtp(phone) error = %v", err)
	}
}

func (f *fixture) verifyPhone(t *testing.T, phone, code string) {
	t.Helper()
	if err := f.uc.VerifyOtp(context.Background(), VerifyOtpInput{Channel: entity.ChannelPhone, Identity: phone, Code: code}); err != nil {
		t.Fatalf("VerifyOtp(phone) error = %v", err)
	}
}

func assertBusiness(t *testing.T, err, sentinel error, code goerror.Code) {
	t.Helper()

	if !errors.Is(err, sentinel) {
		t.Fatalf("expected %v, got %v", sentinel, err)
	}
	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *goerror.Error, got %T", err)
	}
	if gerr.Code() != code {
		t.Fatalf("code = %s, want %s", gerr.Code(), code)
	}
}
