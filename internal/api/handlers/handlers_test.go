package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lifelog-api/lifelog/internal/api"
	"github.com/lifelog-api/lifelog/internal/blob"
	"github.com/lifelog-api/lifelog/internal/config"
	apperrors "github.com/lifelog-api/lifelog/internal/errors"
	"github.com/lifelog-api/lifelog/internal/store"
)

type testEnv struct {
	engine *gin.Engine
	events *store.MemoryEventStore
	blobs  *blob.MemoryStore
	cfg    *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	events := store.NewMemoryEventStore()
	blobs := blob.NewMemoryStore()
	cfg := &config.Config{
		Port: 0,
		Log:  config.LogConfig{File: filepath.Join(t.TempDir(), "app.log")},
	}
	srv := api.NewServer(cfg, events, blobs)
	return &testEnv{engine: srv.Engine(), events: events, blobs: blobs, cfg: cfg}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func eventPayload() []byte {
	b, _ := json.Marshal(map[string]any{
		"title":             "Trip to Rome",
		"date_of_event":     "2021-06-15",
		"location":          "Rome, Italy",
		"story_type":        "travel",
		"importance_rating": 8.5,
		"participants": []map[string]string{
			{"name": "Anna", "relationship": "sister"},
		},
		"summary": "A week wandering the old city",
		"tags":    []string{"travel", "italy"},
	})
	return b
}

func TestCreateEvent(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/events", eventPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	body := w.Body.String()
	assert.Equal(t, "Event stored", gjson.Get(body, "message").String())
	eventID := gjson.Get(body, "event_id").String()
	require.NotEmpty(t, eventID)
	_, err := primitive.ObjectIDFromHex(eventID)
	assert.NoError(t, err, "event_id must be a well-formed id string")
}

func TestGetEvent(t *testing.T) {
	env := newTestEnv(t)
	created := env.do(t, http.MethodPost, "/events", eventPayload())
	eventID := gjson.Get(created.Body.String(), "event_id").String()

	w := env.do(t, http.MethodGet, "/events/"+eventID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, eventID, gjson.Get(body, "id").String())
	assert.Equal(t, "Trip to Rome", gjson.Get(body, "title").String())
	assert.Equal(t, "Anna", gjson.Get(body, "participants.0.name").String())
	assert.True(t, gjson.Get(body, "q_and_a").IsArray())
	assert.Len(t, gjson.Get(body, "q_and_a").Array(), 0)
}

func TestGetEvent_AbsentAndMalformed(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/events/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, gjson.Get(w.Body.String(), "error").String())

	w = env.do(t, http.MethodGet, "/events/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "malformed id is 400, not 404")
}

func TestAppendConversationTurn(t *testing.T) {
	env := newTestEnv(t)
	created := env.do(t, http.MethodPost, "/events", eventPayload())
	eventID := gjson.Get(created.Body.String(), "event_id").String()

	for i := 1; i <= 3; i++ {
		payload, _ := json.Marshal(map[string]string{
			"question": "What happened next?",
			"response": "We found the fountain.",
		})
		w := env.do(t, http.MethodPost, "/events/"+eventID+"/conversation", payload)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Turn added", gjson.Get(w.Body.String(), "message").String())
		assert.Equal(t, int64(i), gjson.Get(w.Body.String(), "turn").Int())
	}

	w := env.do(t, http.MethodGet, "/events/"+eventID, nil)
	turns := gjson.Get(w.Body.String(), "q_and_a").Array()
	require.Len(t, turns, 3)
	for i, turn := range turns {
		assert.Equal(t, int64(i+1), turn.Get("turn").Int())
	}
}

func TestAppendConversationTurn_AbsentEvent(t *testing.T) {
	env := newTestEnv(t)
	payload, _ := json.Marshal(map[string]string{"question": "q", "response": "r"})
	w := env.do(t, http.MethodPost, "/events/"+primitive.NewObjectID().Hex()+"/conversation", payload)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchEvents(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPost, "/events", eventPayload())

	other, _ := json.Marshal(map[string]any{
		"title":   "Quiet weekend",
		"summary": "nothing related",
		"tags":    []string{"home"},
	})
	env.do(t, http.MethodPost, "/events", other)

	w := env.do(t, http.MethodGet, "/events/search?q=rome", nil)
	require.Equal(t, http.StatusOK, w.Code)
	results := gjson.Parse(w.Body.String()).Array()
	require.Len(t, results, 1)
	assert.Equal(t, "Trip to Rome", results[0].Get("title").String())
}

func TestSearchEvents_BlankKeyword(t *testing.T) {
	env := newTestEnv(t)
	for _, target := range []string{"/events/search", "/events/search?q=", "/events/search?q=%20%20"} {
		w := env.do(t, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "target %s", target)
	}
}

func multipartUpload(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadAndGetImage(t *testing.T) {
	env := newTestEnv(t)
	imgBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46}
	buf, contentType := multipartUpload(t, "file", "fountain.jpg", imgBytes)

	req := httptest.NewRequest(http.MethodPost, "/upload", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Image stored", gjson.Get(w.Body.String(), "message").String())
	fileID := gjson.Get(w.Body.String(), "file_id").String()
	require.NotEmpty(t, fileID)

	got := env.do(t, http.MethodGet, "/image/"+fileID, nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, imgBytes, got.Body.Bytes(), "stored bytes round-trip exactly")
	assert.Equal(t, "image/jpeg", got.Header().Get("Content-Type"))
}

func TestUploadImage_NoFile(t *testing.T) {
	env := newTestEnv(t)
	buf, contentType := multipartUpload(t, "wrong_field", "x.jpg", []byte{1})
	req := httptest.NewRequest(http.MethodPost, "/upload", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetImage_Absent(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/image/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetLogs(t *testing.T) {
	env := newTestEnv(t)
	lines := []string{
		`time="2026-08-29 10:00:00" level=info msg="event created"`,
		`time="2026-08-29 10:00:01" level=error msg="request failed"`,
		`time="2026-08-29 10:00:02" level=info msg="image uploaded"`,
	}
	require.NoError(t, os.WriteFile(env.cfg.Log.File, []byte(strings.Join(lines, "\n")+"\n"), 0o644))

	w := env.do(t, http.MethodGet, "/logs?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := gjson.Get(w.Body.String(), "logs").Array()
	require.Len(t, logs, 2)
	assert.Contains(t, logs[0].String(), "image uploaded", "newest line first")

	w = env.do(t, http.MethodGet, "/logs?level=error", nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs = gjson.Get(w.Body.String(), "logs").Array()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].String(), "request failed")
}

// failingEventStore simulates an unreachable backing store on every
// operation.
type failingEventStore struct{}

func (failingEventStore) Create(context.Context, *store.Event) (store.EventID, error) {
	return store.EventID{}, apperrors.StoreUnavailable("failed to store event", errors.New("connection refused"))
}

func (failingEventStore) Get(context.Context, store.EventID) (*store.Event, error) {
	return nil, apperrors.StoreUnavailable("failed to load event", errors.New("connection refused"))
}

func (failingEventStore) AppendTurn(context.Context, store.EventID, string, string) (int, error) {
	return 0, apperrors.StoreUnavailable("failed to append conversation turn", errors.New("connection refused"))
}

func (failingEventStore) Search(context.Context, string) ([]store.Event, error) {
	return nil, apperrors.StoreUnavailable("failed to search events", errors.New("connection refused"))
}

func TestStoreUnavailableAnswersOpaque500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Log: config.LogConfig{File: filepath.Join(t.TempDir(), "app.log")},
	}
	srv := api.NewServer(cfg, failingEventStore{}, blob.NewMemoryStore())
	env := &testEnv{engine: srv.Engine(), cfg: cfg}

	requests := []struct {
		name   string
		method string
		target string
		body   []byte
	}{
		{"create", http.MethodPost, "/events", eventPayload()},
		{"get", http.MethodGet, "/events/" + primitive.NewObjectID().Hex(), nil},
		{"append", http.MethodPost, "/events/" + primitive.NewObjectID().Hex() + "/conversation", []byte(`{"question":"q","response":"r"}`)},
		{"search", http.MethodGet, "/events/search?q=rome", nil},
	}
	for _, tt := range requests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, tt.method, tt.target, tt.body)
			require.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":"an unexpected error occurred"}`, w.Body.String(),
				"server errors carry an opaque message only")
			assert.NotContains(t, w.Body.String(), "connection refused",
				"store detail must never reach the client")
		})
	}
}

func TestGetLogs_ReadFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// A directory opens fine but fails on read, so the handler takes the
	// read-failure path rather than the missing-file one.
	cfg := &config.Config{
		Log: config.LogConfig{File: t.TempDir()},
	}
	srv := api.NewServer(cfg, store.NewMemoryEventStore(), blob.NewMemoryStore())
	env := &testEnv{engine: srv.Engine(), cfg: cfg}

	w := env.do(t, http.MethodGet, "/logs", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"an unexpected error occurred"}`, w.Body.String())
}

func TestGetImage_FilenameWithQuotesInDisposition(t *testing.T) {
	env := newTestEnv(t)
	name := `she said "ciao".jpg`
	buf, contentType := multipartUpload(t, "file", name, []byte{1, 2, 3})
	req := httptest.NewRequest(http.MethodPost, "/upload", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	fileID := gjson.Get(w.Body.String(), "file_id").String()

	got := env.do(t, http.MethodGet, "/image/"+fileID, nil)
	require.Equal(t, http.StatusOK, got.Code)
	mediatype, params, err := mime.ParseMediaType(got.Header().Get("Content-Disposition"))
	require.NoError(t, err, "header must stay parseable for any stored filename")
	assert.Equal(t, "inline", mediatype)
	assert.Equal(t, name, params["filename"])
}

func TestGetLogs_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/logs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
}
