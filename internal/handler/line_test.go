package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transit-map/backend/internal/domain"
	"github.com/pkordes/transit-map/backend/internal/handler"
	"github.com/pkordes/transit-map/backend/internal/middleware"
)

// mockLineServicer is a test double for handler.LineServicer.
// Set only the method fields your test needs.
type mockLineServicer struct {
	add    func(ctx context.Context, line domain.Line) (domain.Line, error)
	list   func(ctx context.Context) ([]domain.Line, error)
	get    func(ctx context.Context, id string) (domain.Line, error)
	remove func(ctx context.Context, id string) error
}

func (m *mockLineServicer) Add(ctx context.Context, l domain.Line) (domain.Line, error) {
	return m.add(ctx, l)
}
func (m *mockLineServicer) List(ctx context.Context) ([]domain.Line, error) {
	return m.list(ctx)
}
func (m *mockLineServicer) Get(ctx context.Context, id string) (domain.Line, error) {
	return m.get(ctx, id)
}
func (m *mockLineServicer) Remove(ctx context.Context, id string) error {
	return m.remove(ctx, id)
}

// compile-time check: mockLineServicer must satisfy handler.LineServicer.
var _ handler.LineServicer = (*mockLineServicer)(nil)

// ---- helpers ---------------------------------------------------------------

func newLineHandler(svc handler.LineServicer) http.Handler {
	return handler.NewServer(svc, nil, nil).Routes()
}

func lineFixture() domain.Line {
	return domain.Line{
		ID:   "U9",
		Name: "U9",
		Stops: []domain.Stop{
			{ID: "a", Name: "Osloer Straße", Lat: 52.557, Lng: 13.373},
			{ID: "b", Name: "Leopoldplatz", Lat: 52.546, Lng: 13.359},
		},
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

// ---- POST /api/lines -------------------------------------------------------

func TestCreateLine_201(t *testing.T) {
	fixture := lineFixture()
	var got domain.Line
	svc := &mockLineServicer{
		add: func(_ context.Context, l domain.Line) (domain.Line, error) {
			got = l
			return l, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/lines", jsonBody(t, fixture))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newLineHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, fixture, got)

	var resp domain.Line
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture, resp)
}

func TestCreateLine_422_ValidationError(t *testing.T) {
	svc := &mockLineServicer{
		add: func(_ context.Context, _ domain.Line) (domain.Line, error) {
			return domain.Line{}, fmt.Errorf("%w: name is required", domain.ErrValidation)
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/lines", jsonBody(t, map[string]any{"stops": []any{}}))
	rec := httptest.NewRecorder()

	newLineHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "validation_error", detail.Code)
	assert.Equal(t, "name is required", detail.Message)
}

func TestCreateLine_422_MalformedBody(t *testing.T) {
	svc := &mockLineServicer{
		add: func(_ context.Context, _ domain.Line) (domain.Line, error) {
			t.Fatal("service must not be called")
			return domain.Line{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/lines", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	newLineHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "validation_error", decodeError(t, rec).Code)
}

func TestCreateLine_413_BodyTooLarge(t *testing.T) {
	svc := &mockLineServicer{}
	h := middleware.NewMaxBodySizeHandler(64)(newLineHandler(svc))

	req := httptest.NewRequest(http.MethodPost, "/api/lines", jsonBody(t, lineFixture()))
	req.ContentLength = -1
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCreateLine_500_UnexpectedError(t *testing.T) {
	svc := &mockLineServicer{
		add: func(_ context.Context, _ domain.Line) (domain.Line, error) {
			return domain.Line{}, errors.New("boom")
		},
	}

	rec := httptest.NewRecorder()
	newLineHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/lines", jsonBody(t, lineFixture())))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeError(t, rec).Code)
}

// ---- GET /api/lines --------------------------------------------------------

func TestListLines_200(t *testing.T) {
	svc := &mockLineServicer{
		list: func(_ context.Context) ([]domain.Line, error) {
			return []domain.Line{lineFixture()}, nil
		},
	}

	rec := httptest.NewRecorder()
	newLineHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lines", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.LineList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "U9", resp.Data[0].ID)
}

func TestListLines_EmptyIsArray(t *testing.T) {
	svc := &mockLineServicer{
		list: func(_ context.Context) ([]domain.Line, error) { return nil, nil },
	}

	rec := httptest.NewRecorder()
	newLineHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lines", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

// ---- GET /api/lines/{id} ---------------------------------------------------

func TestGetLine_200(t *testing.T) {
	svc := &mockLineServicer{
		get: func(_ context.Context, id string) (domain.Line, error) {
			require.Equal(t, "U9", id)
			return lineFixture(), nil
		},
	}

	rec := httptest.NewRecorder()
	newLineHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lines/U9", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp domain.Line
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, lineFixture(), resp)
}

func TestGetLine_404(t *testing.T) {
	svc := &mockLineServicer{
		get: func(_ context.Context, _ string) (domain.Line, error) {
			return domain.Line{}, fmt.Errorf("service.LineService.Get: %w", domain.ErrNotFound)
		},
	}

	rec := httptest.NewRecorder()
	newLineHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/lines/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "not_found", detail.Code)
	assert.Equal(t, "line not found", detail.Message)
}

// ---- DELETE /api/lines/{id} ------------------------------------------------

func TestDeleteLine_204(t *testing.T) {
	var removed string
	svc := &mockLineServicer{
		remove: func(_ context.Context, id string) error {
			removed = id
			return nil
		},
	}

	rec := httptest.NewRecorder()
	newLineHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/lines/U9", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "U9", removed)
}

func TestDeleteLine_404(t *testing.T) {
	svc := &mockLineServicer{
		remove: func(_ context.Context, _ string) error {
			return fmt.Errorf("service.LineService.Remove: %w", domain.ErrNotFound)
		},
	}

	rec := httptest.NewRecorder()
	newLineHandler(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/lines/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
