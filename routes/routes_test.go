package routes

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renditionmaker/assets"
	"renditionmaker/credentials"
	"renditionmaker/failures"
	"renditionmaker/job"
	"renditionmaker/models"
	"renditionmaker/success"
	taskqueue "renditionmaker/taskQueue"
	"renditionmaker/utils"
)

var testSecret = []byte("routes-test-secret-routes-test-secret")

type testServer struct {
	mux   *http.ServeMux
	queue *taskqueue.WorkQueue
	store *assets.Store
}

func newTestServer(t *testing.T, auth *utils.VerifyConfig) *testServer {
	t.Helper()
	dir := t.TempDir()

	store, err := assets.Open(filepath.Join(dir, "Assets.db"))
	require.NoError(t, err)
	queue, err := taskqueue.OpenWorkQueue(filepath.Join(dir, "WorkQueue.db"))
	require.NoError(t, err)
	require.NoError(t, success.Init(filepath.Join(dir, "Success.db")))
	require.NoError(t, failures.Init(filepath.Join(dir, "Failures.db")))
	require.NoError(t, credentials.OpenDB(filepath.Join(dir, "Credentials.db")))
	t.Cleanup(func() {
		store.Close()
		queue.Close()
		success.Close()
		failures.Close()
		credentials.CloseDB()
	})

	// the scheduler is never started, so submitted items stay pending
	processor := job.NewProcessor(store, job.NewPlanner(nil, store, job.PlannerOptions{}))
	scheduler := job.NewScheduler(queue, processor)

	mux := http.NewServeMux()
	NewHandlers(scheduler, store, filepath.Join(dir, "originals"), auth).Register(mux)
	return &testServer{mux: mux, queue: queue, store: store}
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func executeBody(payload, user string) *bytes.Reader {
	b, _ := json.Marshal(ExecuteRequest{
		Payload:     payload,
		ProcessArgs: "dimensions:100:100,mimetypes:image/png",
		UserID:      user,
		WorkflowID:  "wf-1",
	})
	return bytes.NewReader(b)
}

func TestExecuteStatusCancel(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/workflow/execute", executeBody("/content/a.jpg", "alice")))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	id, _ := decode(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	queued, found, err := s.queue.Get(id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "alice", queued.UserID)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/status?id="+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", decode(t, rec)["state"])

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/cancel?id="+id, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/status?id="+id, nil))
	assert.Equal(t, "cancelled", decode(t, rec)["state"])

	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/cancel?id="+id, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(t, httptest.NewRequest(http.MethodDelete, "/cancel?id=nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/status?id=nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExecuteValidation(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/workflow/execute", executeBody("", "alice")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/workflow/execute", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/workflow/execute", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestExecuteUsesTokenSubject(t *testing.T) {
	s := newTestServer(t, &utils.VerifyConfig{SecretKey: testSecret})

	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/workflow/execute", executeBody("/content/a.jpg", "mallory")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := utils.CreateSubmitJWT(&models.SubmitClaims{Subject: "carol", ExpiresAt: time.Now().Add(time.Minute).Unix()}, testSecret)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/workflow/execute", executeBody("/content/a.jpg", "mallory"))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = s.do(t, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	queued, found, err := s.queue.Get(decode(t, rec)["id"].(string))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "carol", queued.UserID)
}

func TestAssetsUploadAndGet(t *testing.T) {
	s := newTestServer(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("path", "/content/hero.png"))
	require.NoError(t, mw.WriteField("userId", "uploader"))
	fw, err := mw.CreateFormFile("file", "hero.png")
	require.NoError(t, err)
	_, err = fw.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/assets", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := s.do(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/assets?path=/content/hero.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var asset models.Asset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &asset))
	assert.Equal(t, "image/png", asset.MimeType)
	orig, ok := asset.Rendition(models.OriginalRendition)
	require.True(t, ok)
	assert.Equal(t, "uploader", orig.Properties[models.PropLastModifiedBy])

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/assets?path=/content/none.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCredentialsRoute(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/credentials", strings.NewReader(`{"bucket":"media","region":"eu-west-1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	key := decode(t, rec)["access_key"].(string)

	creds, err := credentials.GetCredentials(key)
	require.NoError(t, err)
	assert.Equal(t, "media", creds["bucket"])

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/credentials", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFailureAndSuccessQueries(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, failures.StoreFailure(models.WorkItem{ID: "bad"}, job.FailureMissingAsset, errors.New("payload asset not found")))
	require.NoError(t, success.StoreSuccess(models.WorkItem{ID: "good"}, models.ExecutionReport{
		Pairs: []models.PairResult{{Outcome: models.OutcomeGenerated}},
	}))

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/failures?id=bad", nil))
	out := decode(t, rec)
	assert.Equal(t, "failed", out["status"])
	assert.Equal(t, job.FailureMissingAsset, out["kind"])

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/failures?id=good", nil))
	assert.Equal(t, "not_failed", decode(t, rec)["status"])

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/success?id=good", nil))
	out = decode(t, rec)
	assert.Equal(t, "success", out["status"])
	assert.EqualValues(t, 1, out["generated"])

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/failures/list", nil))
	assert.EqualValues(t, 1, decode(t, rec)["count"])
	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/success/list", nil))
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/success", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	assert.Equal(t, "healthy", out["status"])
	assert.Equal(t, "ok", out["checks"].(map[string]any)["assets"])

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dev", decode(t, rec)["version"])
}
