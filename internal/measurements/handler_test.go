package measurements

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type measurementsServiceMock struct {
	added       []Measurement
	listed      []Measurement
	progress    *Progress
	addErr      error
	listErr     error
	progressErr error
}

func (m *measurementsServiceMock) Add(_ context.Context, measurement Measurement) (Measurement, error) {
	if m.addErr != nil {
		return Measurement{}, m.addErr
	}
	m.added = append(m.added, measurement)
	return measurement, nil
}

func (m *measurementsServiceMock) List(_ context.Context, _ string, _ int) ([]Measurement, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listed, nil
}

func (m *measurementsServiceMock) UserProgress(_ context.Context, _ string) (*Progress, error) {
	if m.progressErr != nil {
		return nil, m.progressErr
	}
	return m.progress, nil
}

func testRouter(serviceMock *measurementsServiceMock) *mux.Router {
	handler := NewHandler(serviceMock)
	r := mux.NewRouter()
	r.HandleFunc("/measurements", handler.HandleAdd).Methods("POST")
	r.HandleFunc("/measurements/{userId}", handler.HandleList).Methods("GET")
	r.HandleFunc("/measurements/{userId}/progress", handler.HandleProgress).Methods("GET")
	return r
}

func TestHandler_Add(t *testing.T) {
	serviceMock := &measurementsServiceMock{}
	r := testRouter(serviceMock)

	req := httptest.NewRequest(
		"POST", "/measurements",
		strings.NewReader(`{"userId":"a","weightKg":48.5,"muscleMassKg":22,"bodyFatPercentage":18,"visceralFatLevel":2}`),
	)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, serviceMock.added, 1)
	assert.Equal(t, 48.5, serviceMock.added[0].WeightKg)
}

func TestHandler_Add_InvalidContentType(t *testing.T) {
	serviceMock := &measurementsServiceMock{}
	r := testRouter(serviceMock)

	req := httptest.NewRequest("POST", "/measurements", strings.NewReader(`{"userId":"a"}`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, serviceMock.added)
}

func TestHandler_Add_MissingUser(t *testing.T) {
	serviceMock := &measurementsServiceMock{}
	r := testRouter(serviceMock)

	req := httptest.NewRequest("POST", "/measurements", strings.NewReader(`{"weightKg":48.5}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_List(t *testing.T) {
	serviceMock := &measurementsServiceMock{
		listed: []Measurement{
			{UserID: "a", MeasurementDate: "2024-03-01", WeightKg: 48.5},
			{UserID: "a", MeasurementDate: "2024-02-01", WeightKg: 49},
		},
	}
	r := testRouter(serviceMock)

	req := httptest.NewRequest("GET", "/measurements/a", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"measurementDate":"2024-03-01"`)
}

func TestHandler_List_InvalidLimit(t *testing.T) {
	r := testRouter(&measurementsServiceMock{})

	req := httptest.NewRequest("GET", "/measurements/a?limit=nope", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Progress(t *testing.T) {
	serviceMock := &measurementsServiceMock{
		progress: &Progress{
			Weight: Metric{Current: "48.5kg", Change: "-0.5kg", Trend: "down", History: []float64{50, 49, 48.5}},
		},
	}
	r := testRouter(serviceMock)

	req := httptest.NewRequest("GET", "/measurements/a/progress", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"trend":"down"`)
}

func TestHandler_Progress_NoMeasurements(t *testing.T) {
	r := testRouter(&measurementsServiceMock{})

	req := httptest.NewRequest("GET", "/measurements/a/progress", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Progress_ServiceError(t *testing.T) {
	r := testRouter(&measurementsServiceMock{progressErr: errors.New("sheet down")})

	req := httptest.NewRequest("GET", "/measurements/a/progress", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
