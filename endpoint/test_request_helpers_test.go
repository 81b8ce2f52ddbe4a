package endpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ariebrainware/hospital-booking/auth"
	"github.com/ariebrainware/hospital-booking/booking"
	"github.com/ariebrainware/hospital-booking/config"
	"github.com/ariebrainware/hospital-booking/middleware"
	"github.com/ariebrainware/hospital-booking/model"
	"github.com/ariebrainware/hospital-booking/notify"
	"github.com/ariebrainware/hospital-booking/store"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testAdminEmail    = "admin@hospital.com"
	testAdminPassword = "admin123"
)

type requestSpec struct {
	method      string
	requestPath string
	body        interface{}
	headers     map[string]string
	cookies     []*http.Cookie
}

func performRequest(r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, map[string]interface{}, error) {
	var reader *strings.Reader
	setJSONHeader := false
	switch v := spec.body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(v)
		setJSONHeader = true
	default:
		b, _ := json.Marshal(spec.body)
		reader = strings.NewReader(string(b))
		setJSONHeader = true
	}

	req := httptest.NewRequest(spec.method, spec.requestPath, reader)
	if setJSONHeader {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}
	for _, cookie := range spec.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var response map[string]interface{}
	if w.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			return w, nil, err
		}
	}
	return w, response, nil
}

// decodeList decodes a bare JSON array response body.
func decodeList[T any](t *testing.T, w *httptest.ResponseRecorder) []T {
	t.Helper()
	var out []T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

// recordingGateway captures confirmation emails instead of sending them.
type recordingGateway struct {
	mu     sync.Mutex
	result notify.Result
	sent   []notify.Message
}

func (g *recordingGateway) Send(_ context.Context, msg notify.Message) notify.Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg)
	return g.result
}

func (g *recordingGateway) messages() []notify.Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]notify.Message(nil), g.sent...)
}

type endpointFixture struct {
	router  *gin.Engine
	db      *gorm.DB
	store   *store.SQLStore
	gateway *recordingGateway
	tokens  *auth.TokenIssuer
}

type fixtureOptions struct {
	gatewayResult notify.Result
	staticDir     string
	rateLimit     int
	doctorSeed    string
}

// setupEndpointTest wires a full router over a private in-memory sqlite store.
func setupEndpointTest(t *testing.T, opts fixtureOptions) *endpointFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.ResetRedisClientForTest()

	dsn := fmt.Sprintf("file:endpoint_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if opts.doctorSeed == "" {
		opts.doctorSeed = model.SeedStandard
	}
	seed, err := model.DoctorSeed(opts.doctorSeed)
	require.NoError(t, err)
	st := store.NewSQLStore(db, seed)
	require.NoError(t, st.Initialize(context.Background()))
	t.Cleanup(func() { _ = st.Close() })

	if opts.gatewayResult == (notify.Result{}) {
		opts.gatewayResult = notify.Ok()
	}
	if opts.rateLimit == 0 {
		opts.rateLimit = 100
	}

	gw := &recordingGateway{result: opts.gatewayResult}
	tokens := auth.NewTokenIssuer("test-secret-123", time.Hour)
	h := NewHandler(HandlerDeps{
		Authenticator: auth.StaticAdmin{Email: testAdminEmail, Password: testAdminPassword},
		Tokens:        tokens,
		Revoker:       auth.NewRevoker(nil),
		Bookings:      booking.NewService(st, gw, time.Second),
		Store:         st,
		AppName:       "Hospital Booking",
		StaticDir:     opts.staticDir,
	})
	router := SetupRouter(h, RouterConfig{
		SessionSecret:  "test-session-secret",
		SessionTTL:     time.Hour,
		LoginRateLimit: middleware.RateLimitConfig{Limit: opts.rateLimit, Window: time.Minute},
	})

	return &endpointFixture{router: router, db: db, store: st, gateway: gw, tokens: tokens}
}

// login signs in as the admin and returns the bearer header and session cookies.
func (f *endpointFixture) login(t *testing.T) (map[string]string, []*http.Cookie) {
	t.Helper()
	w, resp, err := performRequest(f.router, requestSpec{
		method:      http.MethodPost,
		requestPath: "/login",
		body:        map[string]string{"email": testAdminEmail, "password": testAdminPassword},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	token, _ := resp["token"].(string)
	require.NotEmpty(t, token)
	return map[string]string{"Authorization": "Bearer " + token}, w.Result().Cookies()
}
