package api

import (
	"bytes"
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeTransformer(t *testing.T) {
	tests := []struct {
		name   string
		status string
		input  any
		want   string
	}{
		{
			name:   "success",
			status: "200",
			input:  map[string]string{"title": "Dune"},
			want:   `{"v":1,"success":true,"data":{"title":"Dune"}}`,
		},
		{
			name:   "no content",
			status: "204",
			input:  nil,
			want:   `{"v":1,"success":true}`,
		},
		{
			name:   "plain error",
			status: "500",
			input:  errors.New("index offline"),
			want:   `{"v":1,"success":false,"error":"index offline"}`,
		},
		{
			name:   "uncoded api error",
			status: "404",
			input:  &APIError{Message: "book not found"},
			want:   `{"v":1,"success":false,"error":"book not found"}`,
		},
		{
			name:   "coded api error",
			status: "400",
			input: &APIError{
				Code:    "VALIDATION",
				Message: "invalid book",
				Details: map[string]string{"title": "required"},
			},
			want: `{"v":1,"success":false,"code":"VALIDATION","message":"invalid book","details":{"title":"required"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EnvelopeTransformer(nil, tt.status, tt.input)
			require.NoError(t, err)

			body, err := json.Marshal(out)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(body))
		})
	}
}

func TestEnvelope_EchoesRequestID(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books", "X-Request-Id: shelf-req-42")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.True(t, env.Success)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	assert.Equal(t, "shelf-req-42", raw["request_id"])
}

func TestEnvelope_ErrorsCarryVersion(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/book-missing")
	require.Equal(t, http.StatusNotFound, resp.Code)

	env := decodeEnvelope[any](t, resp.Body.Bytes())
	assert.Equal(t, EnvelopeVersion, env.Version)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Code+env.Error)
}

func TestRequestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	h := requestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, buf.String(), "health checks log at debug")

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))
	line := buf.String()
	assert.Contains(t, line, "path=/api/v1/books")
	assert.Contains(t, line, "status=418")
	assert.Contains(t, line, "bytes=15")
}
