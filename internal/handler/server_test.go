package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/horseshare/backend/internal/domain"
	"github.com/horseshare/backend/internal/handler"
	"github.com/horseshare/backend/internal/middleware"
)

// Test doubles for the servicer interfaces. Set only the method fields your
// test needs; an unset method panics, flagging an unexpected call.

type mockAvailabilityServicer struct {
	unavailableRanges func(ctx context.Context, horseID uuid.UUID) ([]domain.UnavailableRange, error)
	checkRange        func(ctx context.Context, horseID uuid.UUID, proposed domain.DateRange) (bool, []domain.UnavailableRange, error)
	calendar          func(ctx context.Context, horseID uuid.UUID, year int, month time.Month) (domain.CalendarMonth, error)
	listUnavailable   func(ctx context.Context, horseID uuid.UUID, params domain.PaginationParams) ([]domain.UnavailableRange, int, error)
}

func (m *mockAvailabilityServicer) UnavailableRanges(ctx context.Context, horseID uuid.UUID) ([]domain.UnavailableRange, error) {
	return m.unavailableRanges(ctx, horseID)
}
func (m *mockAvailabilityServicer) CheckRange(ctx context.Context, horseID uuid.UUID, proposed domain.DateRange) (bool, []domain.UnavailableRange, error) {
	return m.checkRange(ctx, horseID, proposed)
}
func (m *mockAvailabilityServicer) Calendar(ctx context.Context, horseID uuid.UUID, year int, month time.Month) (domain.CalendarMonth, error) {
	return m.calendar(ctx, horseID, year, month)
}
func (m *mockAvailabilityServicer) ListUnavailable(ctx context.Context, horseID uuid.UUID, params domain.PaginationParams) ([]domain.UnavailableRange, int, error) {
	return m.listUnavailable(ctx, horseID, params)
}

var _ handler.AvailabilityServicer = (*mockAvailabilityServicer)(nil)

type mockBlockServicer struct {
	create func(ctx context.Context, callerID, horseID uuid.UUID, r domain.DateRange, reason string) (domain.BlockedRange, []domain.UnavailableRange, error)
	list   func(ctx context.Context, callerID, horseID uuid.UUID) ([]domain.BlockedRange, error)
	delete func(ctx context.Context, callerID, horseID, blockID uuid.UUID) error
}

func (m *mockBlockServicer) Create(ctx context.Context, callerID, horseID uuid.UUID, r domain.DateRange, reason string) (domain.BlockedRange, []domain.UnavailableRange, error) {
	return m.create(ctx, callerID, horseID, r, reason)
}
func (m *mockBlockServicer) List(ctx context.Context, callerID, horseID uuid.UUID) ([]domain.BlockedRange, error) {
	return m.list(ctx, callerID, horseID)
}
func (m *mockBlockServicer) Delete(ctx context.Context, callerID, horseID, blockID uuid.UUID) error {
	return m.delete(ctx, callerID, horseID, blockID)
}

var _ handler.BlockServicer = (*mockBlockServicer)(nil)

type mockRequestServicer struct {
	create  func(ctx context.Context, borrowerID, horseID uuid.UUID, r domain.DateRange, message string) (domain.BorrowRequest, error)
	approve func(ctx context.Context, callerID, requestID uuid.UUID) (domain.BorrowRequest, error)
	reject  func(ctx context.Context, callerID, requestID uuid.UUID) (domain.BorrowRequest, error)
	delete  func(ctx context.Context, callerID, requestID uuid.UUID) error
	list    func(ctx context.Context, callerID, horseID uuid.UUID) ([]domain.BorrowRequest, error)
}

func (m *mockRequestServicer) Create(ctx context.Context, borrowerID, horseID uuid.UUID, r domain.DateRange, message string) (domain.BorrowRequest, error) {
	return m.create(ctx, borrowerID, horseID, r, message)
}
func (m *mockRequestServicer) Approve(ctx context.Context, callerID, requestID uuid.UUID) (domain.BorrowRequest, error) {
	return m.approve(ctx, callerID, requestID)
}
func (m *mockRequestServicer) Reject(ctx context.Context, callerID, requestID uuid.UUID) (domain.BorrowRequest, error) {
	return m.reject(ctx, callerID, requestID)
}
func (m *mockRequestServicer) Delete(ctx context.Context, callerID, requestID uuid.UUID) error {
	return m.delete(ctx, callerID, requestID)
}
func (m *mockRequestServicer) List(ctx context.Context, callerID, horseID uuid.UUID) ([]domain.BorrowRequest, error) {
	return m.list(ctx, callerID, horseID)
}

var _ handler.RequestServicer = (*mockRequestServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server into a chi router behind the real identity
// middleware, mirroring exactly how main.go wires it in production.
func newHTTPHandler(availability handler.AvailabilityServicer, blocks handler.BlockServicer, requests handler.RequestServicer) http.Handler {
	srv := handler.NewServer(availability, blocks, requests)
	router := chi.NewRouter()
	router.Get("/healthz", handler.Health)
	router.Group(func(r chi.Router) {
		r.Use(middleware.NewIdentityHandler())
		srv.Register(r)
	})
	return router
}

var (
	testCallerID = uuid.MustParse("0b5fca5e-2a31-4ab7-9be6-01a9ad6a4f01")
	testHorseID  = uuid.MustParse("cf1dd3a5-9d8a-4a34-bc37-d7f5e0a9df04")
)

// doRequest performs an authenticated request against h and returns the recorder.
func doRequest(t *testing.T, h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("X-User-ID", testCallerID.String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// doUnauthenticated performs a request with no X-User-ID header.
func doUnauthenticated(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func testDay(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func testRange(t *testing.T, start, end int) domain.DateRange {
	t.Helper()
	r, err := domain.NewDateRange(testDay(start), testDay(end))
	require.NoError(t, err)
	return r
}
