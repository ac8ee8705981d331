package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"lead-scoring-service/internal/config"
	"lead-scoring-service/internal/dataset"
	"lead-scoring-service/internal/domain"
	"lead-scoring-service/internal/modelstore"
	"lead-scoring-service/internal/pipeline"
	"lead-scoring-service/internal/predict"
	"lead-scoring-service/internal/registry"
	"lead-scoring-service/internal/schema"
	"lead-scoring-service/internal/testutil"
	"lead-scoring-service/internal/train"
	"lead-scoring-service/internal/transform"
)

// blockingSource parks ingestion until release is closed, keeping a run
// in flight for as long as a test needs.
type blockingSource struct {
	release chan struct{}
}

func (s *blockingSource) Fetch(_ context.Context) (*dataset.Table, error) {
	<-s.release
	return dataset.NewTable([]string{"Age", "Response"}), nil
}

type fixture struct {
	handler  *Handler
	router   *gin.Engine
	store    *modelstore.MemoryStore
	registry *testutil.MockRunRegistry
	release  chan struct{}
}

func setupRouter(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &modelstore.MemoryStore{}
	reg := new(testutil.MockRunRegistry)
	release := make(chan struct{})

	sch := &schema.Schema{
		Features:          []string{"Age", "Response"},
		NumericalFeatures: []string{"Age"},
		Target:            "Response",
	}
	cfg := config.PipelineConfig{
		ArtifactRoot: t.TempDir(),
		TestSize:     0.2, Seed: 42,
		AccuracyThreshold: 0.6, Epochs: 10, LearningRate: 0.1,
	}
	source := &blockingSource{release: release}
	runner := pipeline.NewRunner(cfg, sch, source, store, registry.NoopRegistry{}, "mem://model.json")

	h := New(predict.NewService(store, "mem://model.json"), runner, registry.NewRunService(reg))
	r := gin.New()
	r.SetHTMLTemplate(template.Must(template.New("index.html").Parse(`{{.context}}{{.error}}`)))
	h.RegisterRoutes(r)

	return &fixture{handler: h, router: r, store: store, registry: reg, release: release}
}

func putModel(t *testing.T, store *modelstore.MemoryStore, weight float64) {
	t.Helper()
	columns := []string{"Age"}
	model := &train.Model{
		Weights:      []float64{weight},
		Columns:      columns,
		Preprocessor: &transform.Preprocessor{Columns: columns},
		TrainedAt:    time.Now().UTC(),
	}
	raw, err := json.Marshal(model)
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), raw))
}

func validLead() map[string]any {
	return map[string]any{
		"age": 40.0, "gender": "Male", "vintage": 100.0,
		"region_code": 28.0, "annual_premium": 30000.0,
		"vehicle_damage": "Yes", "driving_license": 1,
		"previously_insured": 0, "policy_sales_channel": 26.0,
		"vehicle_age_1_2_year": 1,
	}
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPredict(t *testing.T) {
	f := setupRouter(t)
	putModel(t, f.store, 0.1)

	w := postJSON(f.router, "/api/v1/predict", validLead())
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["response"])
	assert.Equal(t, "Vehicle owner is likely to purchase insurance!", resp["label"])
}

func TestPredict_NoModel(t *testing.T) {
	f := setupRouter(t)

	w := postJSON(f.router, "/api/v1/predict", validLead())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPredict_InvalidLead(t *testing.T) {
	f := setupRouter(t)
	putModel(t, f.store, 0.1)

	lead := validLead()
	lead["gender"] = "Other"
	w := postJSON(f.router, "/api/v1/predict", lead)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	lead = validLead()
	lead["vehicle_age_lt_1_year"] = 1
	w = postJSON(f.router, "/api/v1/predict", lead)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrain_InFlightConflict(t *testing.T) {
	f := setupRouter(t)
	defer close(f.release)

	w := postJSON(f.router, "/api/v1/train", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(domain.RunStatusRunning), resp["status"])
	assert.NotEmpty(t, resp["id"])

	w = postJSON(f.router, "/api/v1/train", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListRuns(t *testing.T) {
	f := setupRouter(t)

	runs := []*domain.PipelineRun{
		{ID: uuid.New(), StartedAt: time.Now(), Status: domain.RunStatusSucceeded, Accepted: true},
	}
	f.registry.On("ListRuns", mock.Anything, 20).Return(runs, nil)

	req, _ := http.NewRequest("GET", "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["total"])
}

func TestGetRun(t *testing.T) {
	f := setupRouter(t)

	id := uuid.New()
	f.registry.On("GetRun", mock.Anything, id).Return(&domain.PipelineRun{
		ID: id, StartedAt: time.Now(), Status: domain.RunStatusFailed, Error: "boom",
	}, nil)

	req, _ := http.NewRequest("GET", "/api/v1/runs/"+id.String(), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "boom")
}

func TestGetRun_NotFoundAndBadID(t *testing.T) {
	f := setupRouter(t)

	id := uuid.New()
	f.registry.On("GetRun", mock.Anything, id).Return(nil, domain.ErrRunNotFound)

	req, _ := http.NewRequest("GET", "/api/v1/runs/"+id.String(), nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req, _ = http.NewRequest("GET", "/api/v1/runs/not-a-uuid", nil)
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetModel(t *testing.T) {
	f := setupRouter(t)
	putModel(t, f.store, 0.1)

	f.registry.On("LatestPromoted", mock.Anything).Return(&domain.ModelVersion{
		ID: uuid.New(), RunID: uuid.New(), CreatedAt: time.Now(),
		URI: "mem://model.json", Accuracy: 0.85, Promoted: true,
	}, nil)

	req, _ := http.NewRequest("GET", "/api/v1/model", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mem://model.json", resp["uri"])
	assert.Equal(t, float64(1), resp["features"])
	assert.NotNil(t, resp["version"])
}

func TestGetModel_NoRunHistory(t *testing.T) {
	f := setupRouter(t)
	putModel(t, f.store, 0.1)
	f.registry.On("LatestPromoted", mock.Anything).Return(nil, domain.ErrModelVersionMissing)

	req, _ := http.NewRequest("GET", "/api/v1/model", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "mem://model.json", resp["uri"])
	assert.NotContains(t, resp, "version")
}

func TestGetModel_NonePromoted(t *testing.T) {
	f := setupRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/model", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	f := setupRouter(t)

	req, _ := http.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealth_DBDown(t *testing.T) {
	f := setupRouter(t)
	f.handler.DBPing = func(context.Context) error { return errors.New("connection refused") }

	req, _ := http.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unhealthy")
}

func TestFormPredict(t *testing.T) {
	f := setupRouter(t)
	putModel(t, f.store, 0.1)

	form := url.Values{}
	form.Set("Age", "40")
	form.Set("Gender", "Male")
	form.Set("Vintage", "100")
	form.Set("Region_Code", "28")
	form.Set("Annual_Premium", "30000")
	form.Set("Vehicle_Damage", "Yes")
	form.Set("Driving_License", "1")
	form.Set("Previously_Insured", "0")
	form.Set("Policy_Sales_Channel", "26")
	form.Set("Vehicle_Age", "1-2 Year")

	req, _ := http.NewRequest("POST", "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Vehicle owner is likely to purchase insurance!")
}

func TestForm(t *testing.T) {
	f := setupRouter(t)

	req, _ := http.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
