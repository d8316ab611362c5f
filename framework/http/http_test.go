package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gohttp "github.com/km-arc/go-extkit/framework/http"
	"github.com/km-arc/go-extkit/framework/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&m))
	return m
}

func newJSONRequest(t *testing.T, target, body string) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return gohttp.NewRequest(req)
}

// ── Response ─────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "val", decodeJSON(t, rr)["key"])
}

func TestResponse_Success(t *testing.T) {
	res, rr := newResponse(t)
	res.Success(map[string]any{"id": float64(1)})

	data, ok := decodeJSON(t, rr)["data"].(map[string]any)
	require.True(t, ok, "expected data envelope")
	assert.Equal(t, float64(1), data["id"])
}

func TestResponse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		send    func(*gohttp.Response)
		status  int
		message string
	}{
		{"bad request default", func(r *gohttp.Response) { r.BadRequest() }, http.StatusBadRequest, "Bad request."},
		{"not found default", func(r *gohttp.Response) { r.NotFound() }, http.StatusNotFound, "Not found."},
		{"not found custom", func(r *gohttp.Response) { r.NotFound("Gone.") }, http.StatusNotFound, "Gone."},
		{"server error", func(r *gohttp.Response) { r.ServerError() }, http.StatusInternalServerError, "Server Error."},
		{"error", func(r *gohttp.Response) { r.Error(http.StatusTeapot, "tea") }, http.StatusTeapot, "tea"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.send(res)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, decodeJSON(t, rr)["message"])
		})
	}
}

func TestResponse_ValidationError(t *testing.T) {
	v := validation.Make(map[string]string{}, validation.Rules{"name": "required"})
	require.True(t, v.Fails())

	res, rr := newResponse(t)
	res.ValidationError(v.Errors())

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	errs, ok := decodeJSON(t, rr)["errors"].(map[string]any)
	require.True(t, ok, "expected errors bag")
	assert.Contains(t, errs, "name")
}

// ── Request ──────────────────────────────────────────────────────────────────

func TestRequest_Bind(t *testing.T) {
	var u struct {
		Name string `json:"name"`
	}
	require.NoError(t, newJSONRequest(t, "/", `{"name":"Alice"}`).Bind(&u))
	assert.Equal(t, "Alice", u.Name)
}

func TestRequest_BindEmpty(t *testing.T) {
	var v map[string]string
	assert.ErrorIs(t, newJSONRequest(t, "/", "").Bind(&v), gohttp.ErrEmptyBody)
}

func TestRequest_Args(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		want   map[string]string
	}{
		{"body wins over query", "/?name=query&extra=1", `{"name":"body"}`, map[string]string{"name": "body", "extra": "1"}},
		{"empty body", "/", "", map[string]string{}},
		{"null body", "/", "null", map[string]string{}},
		{"null body with query", "/?name=Bob", "null", map[string]string{"name": "Bob"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args, err := newJSONRequest(t, tt.target, tt.body).Args()
			require.NoError(t, err)
			assert.Equal(t, tt.want, args)
		})
	}
}

func TestRequest_ArgsRejectsNonStrings(t *testing.T) {
	_, err := newJSONRequest(t, "/", `{"n":1}`).Args()
	assert.Error(t, err)
}
