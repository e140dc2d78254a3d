package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/llm"
	"github.com/pageza/mealplanner/backend/internal/models"
	"github.com/pageza/mealplanner/backend/internal/server"
	"github.com/pageza/mealplanner/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeOpenRouter answers chat completions with a fixed nutrition payload, or
// with status when it is non-zero.
type fakeOpenRouter struct {
	status atomic.Int32
	calls  atomic.Int32
}

func (f *fakeOpenRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer test-key" {
		http.Error(w, `{"error":{"message":"bad request"}}`, http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if status := int(f.status.Load()); status != 0 {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"error":{"message":"upstream says no","type":"rate_limit_error"}}`)
		return
	}
	fmt.Fprint(w, `{
		"id": "gen-1",
		"model": "openai/gpt-4o-mini",
		"created": 1718000000,
		"choices": [{"message": {"content": "{\"kcal\": 650, \"protein_g\": 52, \"fat_g\": 28, \"carbs_g\": 45}"}, "finish_reason": "stop"}]
	}`)
}

type harness struct {
	t        *testing.T
	db       *gorm.DB
	upstream *fakeOpenRouter
	url      string
	client   *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	upstream := &fakeOpenRouter{}
	upstreamSrv := httptest.NewServer(upstream)
	t.Cleanup(upstreamSrv.Close)

	chat, err := llm.New(llm.Config{APIKey: "test-key", BaseURL: upstreamSrv.URL},
		llm.WithSleeper(func(time.Duration) {}))
	require.NoError(t, err)

	cfg := &config.Config{
		Environment:      config.Test,
		JWTSecret:        "integration-secret-with-enough-bytes!",
		CORSOrigins:      []string{config.DefaultSiteURL},
		RecipeRateLimit:  10,
		RecipeRateWindow: time.Minute,
	}
	db := testhelpers.SetupSQLite(t)
	srv := server.Build(cfg, db, nil, chat, zap.NewNop())

	app := httptest.NewServer(srv.Handler())
	t.Cleanup(app.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{
		t:        t,
		db:       db,
		upstream: upstream,
		url:      app.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) do(method, path string, body any, out any) int {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.url+path, &buf)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

var chickenWithRice = map[string]any{
	"name":        "Kurczak z ryżem",
	"description": "Prosty i zdrowy obiad bogaty w białko",
	"ingredients": []map[string]any{
		{"name": "Pierś z kurczaka", "amount": 200, "unit": "g"},
		{"name": "Ryż biały", "amount": 100, "unit": "g"},
		{"name": "Brokuły", "amount": 150, "unit": "g"},
		{"name": "Oliwa z oliwek", "amount": 15, "unit": "ml"},
	},
	"steps": []string{
		"Ugotuj ryż według instrukcji na opakowaniu",
		"Pokrój kurczaka w kostkę i usmaż na oliwie",
		"Ugotuj brokuły na parze",
		"Połącz wszystkie składniki",
	},
}

func TestRecipeLifecycle(t *testing.T) {
	h := newHarness(t)

	var status map[string]any
	assert.Equal(t, http.StatusOK, h.do(http.MethodGet, "/health", nil, &status))

	var errBody map[string]any
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/recipes", nil, &errBody))

	var auth map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":           "kucharz@example.com",
		"password":        "tajne123",
		"confirmPassword": "tajne123",
	}, &auth))
	assert.Equal(t, "ok", auth["status"])

	var created map[string]any
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/recipes", chickenWithRice, &created))
	assert.Equal(t, "Kurczak z ryżem", created["name"])
	assert.Equal(t, 650.0, created["kcal"])
	assert.Equal(t, 52.0, created["proteinG"])
	assert.Equal(t, 28.0, created["fatG"])
	assert.Equal(t, 45.0, created["carbsG"])
	id := created["id"].(string)

	var list map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/recipes?ingredient=Broku%C5%82y", nil, &list))
	assert.Equal(t, 1.0, list["total"])

	var fetched map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/recipes/"+id, nil, &fetched))
	assert.Equal(t, "success", fetched["aiStatus"])

	var run models.AiRun
	require.NoError(t, h.db.First(&run, "recipe_id = ?", id).Error)
	var runBody map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, fmt.Sprintf("/api/ai-runs/%d", run.ID), nil, &runBody))
	assert.Equal(t, "success", runBody["status"])

	var overridden map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodPatch, "/api/recipes/"+id+"/nutrition",
		map[string]float64{"kcal": 700, "protein_g": 50, "fat_g": 30, "carbs_g": 60}, &overridden))
	assert.Equal(t, true, overridden["isManualOverride"])

	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, "/api/recipes/"+id, nil, nil))
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/api/recipes/"+id, nil, &errBody))

	var logout map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/auth/logout", nil, &logout))
	assert.Equal(t, http.StatusUnauthorized, h.do(http.MethodGet, "/api/recipes", nil, &errBody))
}

func TestRecipeCreationAIFailure(t *testing.T) {
	h := newHarness(t)
	h.upstream.status.Store(http.StatusTooManyRequests)

	var auth map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":           "kucharz@example.com",
		"password":        "tajne123",
		"confirmPassword": "tajne123",
	}, &auth))

	var body map[string]any
	assert.Equal(t, http.StatusTooManyRequests, h.do(http.MethodPost, "/api/recipes", chickenWithRice, &body))
	assert.Equal(t, "AI Error", body["error"])
	assert.Equal(t, "Przekroczono limit zapytań do AI - spróbuj ponownie za chwilę", body["message"])
	assert.Equal(t, int32(3), h.upstream.calls.Load())

	var recipes int64
	require.NoError(t, h.db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.Zero(t, recipes)

	var run models.AiRun
	require.NoError(t, h.db.First(&run).Error)
	assert.Equal(t, models.AiRunError, run.Status)
}

func TestRecipeCreationEmptyIngredients(t *testing.T) {
	h := newHarness(t)

	var auth map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email":           "kucharz@example.com",
		"password":        "tajne123",
		"confirmPassword": "tajne123",
	}, &auth))

	payload := map[string]any{
		"name":        "Pusty talerz",
		"ingredients": []any{},
		"steps":       []string{"Podaj"},
	}
	var body map[string]any
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/api/recipes", payload, &body))
	assert.Equal(t, "Bad Request", body["error"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok, "details missing: %v", body)
	assert.Contains(t, details, "ingredients")

	var recipes int64
	require.NoError(t, h.db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.Zero(t, recipes)
	assert.Zero(t, h.upstream.calls.Load())
}

func TestCrossUserAccess(t *testing.T) {
	h := newHarness(t)
	register := func(email string) {
		var auth map[string]any
		require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/auth/register", map[string]string{
			"email": email, "password": "tajne123", "confirmPassword": "tajne123",
		}, &auth))
	}

	register("pierwszy@example.com")
	var created map[string]any
	require.Equal(t, http.StatusCreated, h.do(http.MethodPost, "/api/recipes", chickenWithRice, &created))
	id := created["id"].(string)

	register("drugi@example.com")
	var body map[string]any
	assert.Equal(t, http.StatusForbidden, h.do(http.MethodGet, "/api/recipes/"+id, nil, &body))
	assert.Equal(t, "FORBIDDEN", body["error"])

	var list map[string]any
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, "/api/recipes", nil, &list))
	assert.Equal(t, 0.0, list["total"])
}

func TestBrowserRedirects(t *testing.T) {
	h := newHarness(t)

	req, err := http.NewRequest(http.MethodGet, h.url+"/recipes/new", nil)
	require.NoError(t, err)
	resp, err := h.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/auth/login?next=%2Frecipes%2Fnew", resp.Header.Get("Location"))
}
