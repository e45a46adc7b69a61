package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	. "github.com/ecole-ece/vitrine/apps/api/echo"
	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
	"github.com/ecole-ece/vitrine/services/metrics"
	"github.com/ecole-ece/vitrine/storage/database/inmem"
	"github.com/ecole-ece/vitrine/tests"
)

const (
	homeContent = `{
		"hero": {"title": "Bienvenue", "subtitle": "École Centrale d'Électronique"},
		"stats": ["1500 étudiants", "40 partenaires"],
		"news": [
			{"title": "Portes ouvertes", "date": "12 mars"},
			{"title": "Forum entreprises", "date": "3 avril"}
		]
	}`
	contactContent = `{"address": "10 rue Sextius Michel", "phone": "01 44 39 06 00"}`
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}

	errStoreDown = errors.New("connection refused")
)

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

// flakyRepo fails every write while a failure is set.
type flakyRepo struct {
	content.Repository

	mu      sync.Mutex
	failure error
}

func (r *flakyRepo) setDown(down bool) {
	if down {
		r.failWith(errStoreDown)
	} else {
		r.failWith(nil)
	}
}

func (r *flakyRepo) failWith(err error) {
	r.mu.Lock()
	r.failure = err
	r.mu.Unlock()
}

func (r *flakyRepo) ReplaceContent(ctx context.Context, key string, raw json.RawMessage) (time.Time, error) {
	r.mu.Lock()
	failure := r.failure
	r.mu.Unlock()
	if failure != nil {
		return time.Time{}, failure
	}
	return r.Repository.ReplaceContent(ctx, key, raw)
}

type testApp struct {
	conf   *core.Config
	server *Server
	repo   *flakyRepo
	pages  *content.Collection
}

func setup(t *testing.T) *testApp {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)

	// set up DB & repos
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	repo := &flakyRepo{Repository: inmemdb.NewContentRepository(db)}
	testutil.CreateDocument(t, repo, "home", "Accueil", homeContent)
	testutil.CreateDocument(t, repo, "contact", "Contact", contactContent)

	// set up services
	metrics := metricsvc.New()
	pages := content.NewCollection(repo, logger, content.WithObserver(metrics))
	if err = pages.Refresh(context.Background()); err != nil {
		t.Fatalf("pages.Refresh(): %v", err)
	}
	translator := core.NewTranslator()

	// set up server
	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Pages:      pages,
		Site:       content.NewSite(repo, nil, logger),
		Metrics:    metrics.Handler(),
		Validate:   core.NewValidator(translator),
		Translator: translator,
	})
	return &testApp{conf: conf, server: server, repo: repo, pages: pages}
}

func (app *testApp) adminToken(t *testing.T) string {
	return getToken(t, app.conf, NewAdminClaims(app.conf, "1", "admin@ece.fr"))
}

func (app *testApp) userToken(t *testing.T) string {
	claims := NewAdminClaims(app.conf, "2", "student@ece.fr")
	claims.IsAdmin = false
	return getToken(t, app.conf, claims)
}

// do sends a request to the app and returns the recorded response.
func (app *testApp) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	app.server.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, claims *Claims) string {
	token, err := GenerateToken(claims, conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// checkMetric looks for sample (a line of the Prometheus text format) in GET /metrics.
func checkMetric(t *testing.T, app *testApp, sample string) {
	t.Helper()
	rec := app.do(http.MethodGet, "/metrics", "")
	if !strings.Contains(rec.Body.String(), sample+"\n") {
		t.Errorf("metrics: %q not found", sample)
	}
}
