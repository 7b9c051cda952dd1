package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/writelyhq/writely/internal/commentservice"
	"github.com/writelyhq/writely/internal/common"
	"github.com/writelyhq/writely/internal/dashboardservice"
	"github.com/writelyhq/writely/internal/notificationservice"
	"github.com/writelyhq/writely/internal/postservice"
	"github.com/writelyhq/writely/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../../migrations", t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rabbitURI := common.TestRabbitMQ(t)
	broker, err := common.NewMessageBroker(rabbitURI)
	assert.NoError(t, err)

	err = common.SetupUserExchange(broker)
	assert.NoError(t, err)

	err = common.SetupPostExchange(broker)
	assert.NoError(t, err)

	cfg := &Config{
		Port:        ":4000",
		Environment: "test",
		Version:     "test",
		UploadDir:   t.TempDir(),
	}

	cache := common.NewCache(0, 0)

	app := &application{
		config:              cfg,
		logger:              logger,
		files:               common.NewFileStore(cfg.UploadDir),
		broker:              broker,
		userService:         userservice.NewUserService(db, broker, cache),
		postService:         postservice.NewPostService(db, cache, broker),
		commentService:      commentservice.NewCommentService(db),
		notificationService: notificationservice.NewNotificationService(db, cache),
		dashboardService:    dashboardservice.NewDashboardService(db),
	}

	return app, db
}

func (ts *testServer) request(t *testing.T, method, path string, data any, token *string) (int, http.Header, envelope) {
	var body io.Reader
	if data != nil {
		jsonPayload, err := json.Marshal(data)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) post(t *testing.T, path string, data any, token *string) (int, http.Header, envelope) {
	return ts.request(t, http.MethodPost, path, data, token)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.request(t, http.MethodGet, path, nil, token)
}

func (ts *testServer) put(t *testing.T, path string, data any, token *string) (int, http.Header, envelope) {
	return ts.request(t, http.MethodPut, path, data, token)
}

// postRaw sends the body verbatim, without JSON marshalling.
func (ts *testServer) postRaw(t *testing.T, path string, body string) (int, http.Header, envelope) {
	req, err := http.NewRequest(http.MethodPost, ts.URL+path, bytes.NewReader([]byte(body)))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}
