package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/carventure/sellerhub/internal/pkg/clock"
	"github.com/carventure/sellerhub/internal/pkg/config"
	"github.com/carventure/sellerhub/internal/pkg/goerror"
	"github.com/carventure/sellerhub/internal/pkg/instrument"
	"github.com/carventure/sellerhub/internal/pkg/jwt"
	"github.com/carventure/sellerhub/internal/pkg/uid"
	"github.com/carventure/sellerhub/internal/pkg/validator"
)

type envelope struct {
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (tokenResponse) Message() string { return "Mobile verified successfully" }

func (t tokenResponse) Cookies() []*http.Cookie {
	return []*http.Cookie{{Name: CookieToken, Value: t.Token, HttpOnly: true, Path: "/"}}
}

type fixture struct {
	router *Router
	jwt    *jwt.Symmetric
	clock  *clock.Manual
	ready  bool
}

func newFixture(t *testing.T, yaml string) *fixture {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	clk := clock.NewManual(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	j, err := jwt.NewHS512(jwt.Config{
		Secret: []byte(strings.Repeat("k", 64)),
		Issuer: "sellerhub",
		TTL:    24 * time.Hour,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	f := &fixture{jwt: j, clock: clk, ready: true}
	f.router = NewRouter(Config{
		Config:     cfg,
		UUID:       uid.NewUUID(),
		JWT:        j,
		Instrument: instrument.NewNoop(),
		PublicEndpoints: map[string][]string{
			http.MethodPost: {"/login", "/explode"},
		},
		Ready: func() bool { return f.ready },
	})

	f.router.POST("/login", func(r *Request) (any, error) {
		var in struct {
			Phone string `json:"phone"`
		}
		if err := r.DecodeBody(&in); err != nil {
			return nil, err
		}
		tok, err := j.Generate(in.Phone)
		if err != nil {
			return nil, err
		}
		return tokenResponse{Token: tok}, nil
	})
	f.router.GET("/me", func(r *Request) (any, error) {
		return map[string]string{"phone": r.Subject()}, nil
	})
	f.router.GET("/missing", func(*Request) (any, error) {
		return nil, goerror.NewBusiness("Seller not found", goerror.CodeNotFound)
	})
	f.router.GET("/invalid", func(*Request) (any, error) {
		return nil, goerror.NewInvalidInput(validator.V10ValidationError{"otp": "otp must be exactly 6 digits"})
	})
	f.router.GET("/raw", func(*Request) (any, error) {
		return nil, errors.New("db exploded")
	})
	f.router.POST("/explode", func(*Request) (any, error) {
		panic("boom")
	})

	return f
}

func do(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %q: %v", rec.Body.String(), err)
		}
	}
	return rec, env
}

func TestRouter_CookieIssuedAndAccepted(t *testing.T) {
	t.Parallel()

	// Arrange
	f := newFixture(t, "app: {}")

	// Act
	rec, env := do(t, f.router, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"phone":"9999999999"}`)))

	// Assert
	if rec.Code != http.StatusOK || env.Message != "Mobile verified successfully" {
		t.Fatalf("login = %d %q", rec.Code, env.Message)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieToken || !cookies[0].HttpOnly {
		t.Fatalf("cookies = %+v", cookies)
	}
	if rec.Header().Get(HeaderCorrelationID) == "" {
		t.Fatal("correlation id header missing")
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(cookies[0])
	rec, env = do(t, f.router, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("/me with cookie = %d %q", rec.Code, env.Message)
	}
	if !strings.Contains(string(env.Data), "9999999999") {
		t.Fatalf("/me data = %s", env.Data)
	}
}

func TestRouter_Authentication(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "app: {}")
	valid, _ := f.jwt.Generate("8888888888")

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{name: "missing", status: http.StatusUnauthorized, message: "Authentication required"},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, message: "Authentication required"},
		{name: "garbage", header: "Bearer abc", status: http.StatusUnauthorized, message: "Invalid or expired token"},
		{name: "bearer ok", header: "Bearer " + valid, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec, env := do(t, f.router, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.message != "" && env.Message != tt.message {
				t.Fatalf("message = %q, want %q", env.Message, tt.message)
			}
		})
	}
}

func TestRouter_ExpiredToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "app: {}")
	token, _ := f.jwt.Generate("9999999999")
	f.clock.Advance(25 * time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec, env := do(t, f.router, req)
	if rec.Code != http.StatusUnauthorized || env.Message != "Invalid or expired token" {
		t.Fatalf("expired token = %d %q", rec.Code, env.Message)
	}
}

func TestRouter_ErrorMapping(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "app: {}")
	token, _ := f.jwt.Generate("9999999999")

	tests := []struct {
		path   string
		status int
		check  func(t *testing.T, env envelope)
	}{
		{path: "/missing", status: http.StatusNotFound, check: func(t *testing.T, env envelope) {
			if env.Message != "Seller not found" {
				t.Fatalf("message = %q", env.Message)
			}
		}},
		{path: "/invalid", status: http.StatusUnprocessableEntity, check: func(t *testing.T, env envelope) {
			if env.Error["otp"] == "" {
				t.Fatalf("error fields = %v", env.Error)
			}
		}},
		{path: "/raw", status: http.StatusInternalServerError, check: func(t *testing.T, env envelope) {
			if env.Message != "Internal server error" {
				t.Fatalf("message = %q", env.Message)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)

			rec, env := do(t, f.router, req)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			tt.check(t, env)
		})
	}
}

func TestRouter_DecodeBodyRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "app: {}")

	rec, env := do(t, f.router, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"phone":"1","extra":true}`)))
	if rec.Code != http.StatusBadRequest || env.Message != "Invalid request body" {
		t.Fatalf("unknown field = %d %q", rec.Code, env.Message)
	}
}

func TestRouter_RecoversPanic(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "app: {}")

	rec, env := do(t, f.router, httptest.NewRequest(http.MethodPost, "/explode", nil))
	if rec.Code != http.StatusInternalServerError || env.Message != "Internal server error" {
		t.Fatalf("panic = %d %q", rec.Code, env.Message)
	}
}

func TestRouter_HealthAndNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "app: {}")

	rec, env := do(t, f.router, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || env.Message != "Application is running!" {
		t.Fatalf("health = %d %q", rec.Code, env.Message)
	}

	f.ready = false
	rec, _ = do(t, f.router, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("health not ready = %d, want 503", rec.Code)
	}

	rec, _ = do(t, f.router, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route = %d, want 404", rec.Code)
	}
}

func TestRouter_Maintenance(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "app:\n  maintenance:\n    endpoints: /login\n")

	rec, env := do(t, f.router, httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"phone":"9"}`)))
	if rec.Code != http.StatusServiceUnavailable || env.Message != "service is under maintenance" {
		t.Fatalf("maintenance = %d %q", rec.Code, env.Message)
	}
}

func TestRealIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		value  string
		remote string
		want   string
	}{
		{name: "forwarded for", header: "X-Forwarded-For", value: "203.0.113.7, 10.0.0.1", remote: "10.0.0.2:1234", want: "203.0.113.7"},
		{name: "real ip", header: "X-Real-IP", value: "198.51.100.4", remote: "10.0.0.2:1234", want: "198.51.100.4"},
		{name: "bad header falls back", header: "X-Real-IP", value: "nope", remote: "10.0.0.2:1234", want: "10.0.0.2"},
		{name: "remote only", remote: "192.0.2.1:80", want: "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			if got := realIP(req); got != tt.want {
				t.Fatalf("realIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChain_Order(t *testing.T) {
	t.Parallel()

	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { order = append(order, "handler") }), mw("a"), nil, mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if strings.Join(order, ",") != "a,b,handler" {
		t.Fatalf("order = %v", order)
	}
}
