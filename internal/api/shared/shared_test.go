package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := SetTraceID(context.Background())
	traceID := GetTraceID(ctx)

	assert.Len(t, traceID, 32)
	// A second context gets its own ID.
	other := GetTraceID(SetTraceID(context.Background()))
	assert.NotEqual(t, traceID, other)

	assert.Equal(t, "", GetTraceID(context.Background()))
}

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/progress", nil)

	RespondWithJSON(w, r, 200, map[string]string{"subject": "math"})

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"subject":"math"}`, w.Body.String())
}

func TestRespondWithErrorCarriesTraceID(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/progress", nil)
	r = r.WithContext(SetTraceID(r.Context()))

	RespondWithError(w, r, 404, "Progress not found")

	assert.Equal(t, 404, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Progress not found", resp.Error)
	assert.Equal(t, GetTraceID(r.Context()), resp.TraceID)
}

func TestRespondWithErrorAndLogHidesRawError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("POST", "/study-sessions", nil)

	internal := errors.New("dial postgres://studyhub:secret@db:5432 failed")
	RespondWithErrorAndLog(w, r, 500, "An unexpected error occurred", internal)

	assert.Equal(t, 500, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.Contains(t, w.Body.String(), "An unexpected error occurred")
}

func TestDecodeAndValidateRequest(t *testing.T) {
	t.Parallel()

	type payload struct {
		Subject string `json:"subject" validate:"required"`
	}

	r := httptest.NewRequest("POST", "/goal", strings.NewReader(`{"subject":"math"}`))
	var p payload
	require.NoError(t, DecodeJSON(r, &p))
	assert.Equal(t, "math", p.Subject)
	assert.NoError(t, ValidateRequest(&p))

	assert.Error(t, ValidateRequest(&payload{}))
}
