package seller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/carventure/sellerhub/internal/pkg/clock"
	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/hash"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/jwt"
	"github.com/carventure/sellerhub/internal/pkg/otp"
	"github.com/carventure/sellerhub/internal/pkg/router"
	"github.com/carventure/sellerhub/internal/pkg/uid"
	"github.com/carventure/sellerhub/internal/pkg/validator"
	"github.com/carventure/sellerhub/internal/seller/inbound"
	"github.com/carventure/sellerhub/internal/seller/outbound/cache"
	"github.com/carventure/sellerhub/internal/seller/usecase"
	"github.com/redis/go-redis/v9"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

const goldenCode = "246810"

type outbox struct {
	mu   sync.Mutex
	sent []usecase.OtpDelivery
}

func (o *outbox) SendOtp(_ context.Context, in usecase.OtpDelivery) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, in)
	return nil
}

type onboarding struct {
	handler http.Handler
	outbox  *outbox
}

func newOnboarding(t *testing.T) *onboarding {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("redis connection string: %v", err)
	}
	opt, err := redis.ParseURL(uri)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  seller:
    otp:
      retry_ceiling: 5
      cooloff_minutes: 30
      expiry_minutes: 10
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}
	hasher, err := hash.FromName(hash.DriverHMACSHA256, hash.FactoryOptions{HMACSecret: "pepper"})
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	codec, err := otp.NewCodec(otp.Config{Env: "test", Golden: otp.Golden{Enabled: true, Code: goldenCode}})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	snow, err := uid.NewSnowflake()
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	clk := clock.New()
	issuer, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("x", 64)),
		Issuer: "sellerhub",
		TTL:    time.Hour,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	ins := instrument.NewNoop()
	r := router.NewRouter(router.Config{
		Config:          cfg,
		UUID:            uid.NewUUID(),
		JWT:             issuer,
		Instrument:      ins,
		PublicEndpoints: PublicEndpoints(),
	})

	box := &outbox{}
	uc := usecase.New(usecase.Dependency{
		RepoDB:       cache.NewCache(client, clk, ins),
		RepoDelivery: box,
		Validator:    v,
		Config:       cfg,
		Hasher:       hasher,
		Codec:        codec,
		UID:          snow,
		Clock:        clk,
		Instrument:   ins,
	})
	inbound.RegisterHTTPEndpoint(r, uc, issuer, cfg)

	return &onboarding{handler: r, outbox: box}
}

func (o *onboarding) call(t *testing.T, method, path, body, token string) (int, json.RawMessage) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	o.handler.ServeHTTP(rec, req)

	var env struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return rec.Code, env.Data
}

func TestOnboarding_FullJourney(t *testing.T) {
	o := newOnboarding(t)

	steps := []struct {
		name   string
		method string
		path   string
		body   string
		auth   bool
		status int
	}{
		{name: "email before token", method: http.MethodPost, path: "/api/v1/sellers/email/otp", body: `{"email":"asha@example.com"}`, status: http.StatusUnauthorized},
		{name: "request mobile otp", method: http.MethodPost, path: "/api/v1/sellers/phone/otp", body: `{"mobile_number":"9876543210"}`, status: http.StatusOK},
		{name: "wrong mobile otp", method: http.MethodPost, path: "/api/v1/sellers/phone/otp/verify", body: `{"mobile_number":"9876543210","otp":"000000"}`, status: http.StatusBadRequest},
	}
	for _, s := range steps {
		if status, _ := o.call(t, s.method, s.path, s.body, ""); status != s.status {
			t.Fatalf("%s: status = %d, want %d", s.name, status, s.status)
		}
	}

	status, data := o.call(t, http.MethodPost, "/api/v1/sellers/phone/otp/verify", `{"mobile_number":"9876543210","otp":"`+goldenCode+`"}`, "")
	if status != http.StatusOK {
		t.Fatalf("verify mobile: status = %d", status)
	}
	var tok struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &tok); err != nil || tok.Token == "" {
		t.Fatalf("token payload %s: %v", data, err)
	}

	authed := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "registration before email", method: http.MethodPost, path: "/api/v1/sellers/registration", body: `{"first_name":"Asha","last_name":"Rao","city":"Pune","pincode":"411001"}`, status: http.StatusForbidden},
		{name: "request email otp", method: http.MethodPost, path: "/api/v1/sellers/email/otp", body: `{"email":"Asha@Example.com"}`, status: http.StatusOK},
		{name: "verify email otp", method: http.MethodPost, path: "/api/v1/sellers/email/otp/verify", body: `{"email":"asha@example.com","otp":"` + goldenCode + `"}`, status: http.StatusOK},
		{name: "complete registration", method: http.MethodPost, path: "/api/v1/sellers/registration", body: `{"first_name":"Asha","last_name":"Rao","city":"Pune","pincode":"411001"}`, status: http.StatusOK},
	}
	for _, s := range authed {
		if status, _ := o.call(t, s.method, s.path, s.body, tok.Token); status != s.status {
			t.Fatalf("%s: status = %d, want %d", s.name, status, s.status)
		}
	}

	status, data = o.call(t, http.MethodGet, "/api/v1/sellers/me", "", tok.Token)
	if status != http.StatusOK {
		t.Fatalf("profile: status = %d", status)
	}
	var profile inbound.ProfileResponse
	if err := json.Unmarshal(data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.State != "registration_completed" || profile.Email != "a***@example.com" || profile.City != "Pune" {
		t.Fatalf("profile = %+v", profile)
	}

	if len(o.outbox.sent) != 1 || o.outbox.sent[0].Destination != "asha@example.com" || o.outbox.sent[0].Code != goldenCode {
		t.Fatalf("deliveries = %+v", o.outbox.sent)
	}
}
