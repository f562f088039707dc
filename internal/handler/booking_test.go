package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/moviedesk/movie-ticket-booking/internal/model"
	"github.com/moviedesk/movie-ticket-booking/internal/queue"
	"github.com/moviedesk/movie-ticket-booking/internal/repository"
)

// Mock store and publisher

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) Create(ctx context.Context, b *model.Booking) error {
	args := m.Called(ctx, b)
	if b != nil {
		b.ID = 7 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockBookingStore) ListAll(ctx context.Context) ([]model.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *MockBookingStore) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingStore) ListByEmail(ctx context.Context, email string) ([]model.Booking, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *MockBookingStore) GetByReference(ctx context.Context, reference string) (*model.Booking, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingStore) Search(ctx context.Context, email, reference string) ([]model.Booking, error) {
	args := m.Called(ctx, email, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *MockBookingStore) Delete(ctx context.Context, id uint64) (*model.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Booking), args.Error(1)
}

func (m *MockBookingStore) BookedSeats(ctx context.Context, movieTitle, movieTime string) ([]string, error) {
	args := m.Called(ctx, movieTitle, movieTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishBookingEvent(ctx context.Context, ev queue.BookingEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

// Test helpers

func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sampleBooking() *model.Booking {
	return &model.Booking{
		ID:               7,
		CustomerName:     "John Doe",
		CustomerEmail:    "john@example.com",
		CustomerPhone:    "5551234567",
		MovieTitle:       "Inception",
		MovieTime:        "7:00 PM",
		Theater:          "Grand Cinema 1",
		Seats:            []string{"A1", "A2"},
		TotalAmount:      400,
		Status:           model.StatusConfirmed,
		BookingReference: "MOV1756380000000ABC12",
	}
}

// CreateBooking

func TestCreateBooking_Success(t *testing.T) {
	store := new(MockBookingStore)
	events := new(MockPublisher)
	h := NewBookingHandler(store, events)

	store.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Booking) bool {
		return b.CustomerEmail == "john@example.com" &&
			b.CustomerPhone == "5551234567" &&
			b.TotalAmount == 2*model.SeatPrice &&
			b.Status == model.StatusConfirmed &&
			strings.HasPrefix(b.BookingReference, "MOV")
	})).Return(nil)
	events.On("PublishBookingEvent", mock.Anything, mock.MatchedBy(func(ev queue.BookingEvent) bool {
		return ev.Type == queue.EventBookingCreated && ev.BookingID == 7
	})).Return(nil)

	body := `{"customerName":"John Doe","customerEmail":"John@Example.COM",
		"customerPhone":"(555) 123-4567","movieTitle":"Inception",
		"movieTime":"7:00 PM","theater":"Grand Cinema 1","seats":["A1","A2"]}`
	c, rec := newJSONContext(http.MethodPost, "/api/bookings", body)

	assert.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, "Booking created successfully!", resp["message"])
	booking := resp["booking"].(map[string]any)
	assert.Equal(t, float64(400), booking["totalAmount"])
	assert.Equal(t, "john@example.com", booking["customerEmail"])
	store.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCreateBooking_ValidationFailure(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)

	body := `{"customerName":"John Doe","customerEmail":"john@example.com",
		"customerPhone":"5551234567","movieTitle":"Inception",
		"movieTime":"7:00 PM","theater":"Grand Cinema 1","seats":[]}`
	c, rec := newJSONContext(http.MethodPost, "/api/bookings", body)

	assert.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, "Validation failed", resp["message"])
	assert.Contains(t, resp["errors"], "please select at least one seat")
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBooking_StoreError(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	body := `{"customerName":"John Doe","customerEmail":"john@example.com",
		"customerPhone":"5551234567","movieTitle":"Inception",
		"movieTime":"7:00 PM","theater":"Grand Cinema 1","seats":["A1"]}`
	c, rec := newJSONContext(http.MethodPost, "/api/bookings", body)

	assert.NoError(t, h.CreateBooking(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Server error. Please try again.", resp["message"])
}

// ListBookings

func TestListBookings(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("ListAll", mock.Anything).Return([]model.Booking{*sampleBooking(), *sampleBooking()}, nil)

	c, rec := newJSONContext(http.MethodGet, "/api/bookings", "")
	assert.NoError(t, h.ListBookings(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, float64(2), resp["totalBookings"])
	assert.Len(t, resp["bookings"], 2)
}

// GetBooking

func TestGetBooking_MalformedID(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)

	for _, raw := range []string{"abc", "0", "-1", "12x"} {
		c, rec := newJSONContext(http.MethodGet, "/api/bookings/"+raw, "")
		c.SetParamNames("id")
		c.SetParamValues(raw)
		assert.NoError(t, h.GetBooking(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "id=%s", raw)
		assert.Equal(t, "Invalid booking ID", decodeBody(t, rec)["message"])
	}
	store.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetBooking_NotFound(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("GetByID", mock.Anything, uint64(42)).Return(nil, repository.ErrBookingNotFound)

	c, rec := newJSONContext(http.MethodGet, "/api/bookings/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	assert.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Booking not found", decodeBody(t, rec)["message"])
}

func TestGetBooking_Success(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("GetByID", mock.Anything, uint64(7)).Return(sampleBooking(), nil)

	c, rec := newJSONContext(http.MethodGet, "/api/bookings/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	assert.NoError(t, h.GetBooking(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Inception", decodeBody(t, rec)["movieTitle"])
}

// GetBookingsByEmail

func TestGetBookingsByEmail_CaseInsensitive(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("ListByEmail", mock.Anything, "john@example.com").
		Return([]model.Booking{*sampleBooking()}, nil).Twice()

	for _, raw := range []string{"John@Example.com", "john@example.com"} {
		c, rec := newJSONContext(http.MethodGet, "/api/bookings/email/x", "")
		c.SetParamNames("email")
		c.SetParamValues(raw)
		assert.NoError(t, h.GetBookingsByEmail(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		resp := decodeBody(t, rec)
		assert.Equal(t, "john@example.com", resp["customerEmail"])
		assert.Equal(t, float64(1), resp["total"])
	}
	store.AssertExpectations(t)
}

func TestGetBookingsByEmail_DecodesEscapedSegment(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("ListByEmail", mock.Anything, "john@example.com").
		Return([]model.Booking{*sampleBooking()}, nil)

	// Go through the router so the escaped segment takes the real path,
	// the way an encoding client sends it.
	e := echo.New()
	e.GET("/api/bookings/email/:email", h.GetBookingsByEmail)
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/email/john%40example.com", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "john@example.com", resp["customerEmail"])
	assert.Equal(t, float64(1), resp["total"])
	store.AssertExpectations(t)
}

// GetBookingByReference

func TestGetBookingByReference_UppercasesInput(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("GetByReference", mock.Anything, "MOV1756380000000ABC12").
		Return(sampleBooking(), nil)

	c, rec := newJSONContext(http.MethodGet, "/api/bookings/reference/x", "")
	c.SetParamNames("reference")
	c.SetParamValues("mov1756380000000abc12")
	assert.NoError(t, h.GetBookingByReference(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, "Booking found successfully", resp["message"])
	store.AssertExpectations(t)
}

func TestGetBookingByReference_NotFound(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("GetByReference", mock.Anything, mock.Anything).
		Return(nil, repository.ErrBookingNotFound)

	c, rec := newJSONContext(http.MethodGet, "/api/bookings/reference/x", "")
	c.SetParamNames("reference")
	c.SetParamValues("MOVDOESNOTEXIST")
	assert.NoError(t, h.GetBookingByReference(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No booking found with this reference number", decodeBody(t, rec)["message"])
}

// SearchBookings

func TestSearchBookings_NormalizesCriteria(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("Search", mock.Anything, "john@example.com", "MOV123").
		Return([]model.Booking{*sampleBooking()}, nil)

	c, rec := newJSONContext(http.MethodGet,
		"/api/bookings/search/all?email=John@Example.com&reference=mov123", "")
	assert.NoError(t, h.SearchBookings(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, float64(1), resp["total"])
	criteria := resp["searchCriteria"].(map[string]any)
	assert.Equal(t, "John@Example.com", criteria["email"])
	assert.Equal(t, "mov123", criteria["reference"])
	store.AssertExpectations(t)
}

func TestSearchBookings_NoCriteriaReturnsAll(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("Search", mock.Anything, "", "").Return([]model.Booking{}, nil)

	c, rec := newJSONContext(http.MethodGet, "/api/bookings/search/all", "")
	assert.NoError(t, h.SearchBookings(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total"])
}

// DeleteBooking

func TestDeleteBooking_Success(t *testing.T) {
	store := new(MockBookingStore)
	events := new(MockPublisher)
	h := NewBookingHandler(store, events)
	store.On("Delete", mock.Anything, uint64(7)).Return(sampleBooking(), nil)
	events.On("PublishBookingEvent", mock.Anything, mock.MatchedBy(func(ev queue.BookingEvent) bool {
		return ev.Type == queue.EventBookingCancelled && ev.BookingID == 7
	})).Return(nil)

	c, rec := newJSONContext(http.MethodDelete, "/api/bookings/7", "")
	c.SetParamNames("id")
	c.SetParamValues("7")
	assert.NoError(t, h.DeleteBooking(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, "Booking cancelled successfully", resp["message"])
	cancelled := resp["cancelledBooking"].(map[string]any)
	assert.Equal(t, float64(7), cancelled["id"])
	store.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestDeleteBooking_NotFound(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("Delete", mock.Anything, uint64(42)).Return(nil, repository.ErrBookingNotFound)

	c, rec := newJSONContext(http.MethodDelete, "/api/bookings/42", "")
	c.SetParamNames("id")
	c.SetParamValues("42")
	assert.NoError(t, h.DeleteBooking(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// GetAvailability

func TestGetAvailability_FlattensSeats(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("BookedSeats", mock.Anything, "Inception", "7:00 PM").
		Return([]string{"A1", "A2", "B1"}, nil)

	c, rec := newJSONContext(http.MethodGet, "/api/bookings/availability/x/y", "")
	c.SetParamNames("movie", "time")
	c.SetParamValues("Inception", "7:00 PM")
	assert.NoError(t, h.GetAvailability(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, float64(3), resp["totalBooked"])
	assert.ElementsMatch(t, []any{"A1", "A2", "B1"}, resp["bookedSeats"])
}

func TestGetAvailability_DecodesEscapedSegments(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("BookedSeats", mock.Anything, "Spider-Man: No Way Home", "7:00 PM").
		Return([]string{"A1"}, nil)

	e := echo.New()
	e.GET("/api/bookings/availability/:movie/:time", h.GetAvailability)
	req := httptest.NewRequest(http.MethodGet,
		"/api/bookings/availability/Spider-Man%3A%20No%20Way%20Home/7%3A00%20PM", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(1), resp["totalBooked"])
	store.AssertExpectations(t)
}

func TestGetAvailability_NoBookings(t *testing.T) {
	store := new(MockBookingStore)
	h := NewBookingHandler(store, nil)
	store.On("BookedSeats", mock.Anything, "Inception", "9:30 PM").Return(nil, nil)

	c, rec := newJSONContext(http.MethodGet, "/api/bookings/availability/x/y", "")
	c.SetParamNames("movie", "time")
	c.SetParamValues("Inception", "9:30 PM")
	assert.NoError(t, h.GetAvailability(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody(t, rec)
	assert.Equal(t, float64(0), resp["totalBooked"])
	assert.Equal(t, []any{}, resp["bookedSeats"])
}
