package poi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tripcraft/go-travel-planner/internal/types"
)

func TestGetPOIsClassifiesInterests(t *testing.T) {
	client := new(MockPlacesClient)
	svc := NewServiceImpl(client, testLogger())
	handler := NewPOIHandler(svc, testLogger())

	// "Food & Dining" classifies to foods/cafes/restaurants kinds, which
	// translate to the catering categories.
	wantCategories := []string{"catering.restaurant", "catering.fast_food", "catering.cafe"}
	client.On("GetPlaces", mock.Anything, 48.85, 2.35, wantCategories, defaultPOIRadius, defaultPOILimit).
		Return([]types.POIDetail{{Name: "Chez Marie"}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pois?lat=48.85&lon=2.35&interests=Food+%26+Dining", nil)
	rec := httptest.NewRecorder()
	handler.GetPOIs(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	client.AssertExpectations(t)
}

func TestGetPOIsExplicitKindsBeatInterests(t *testing.T) {
	client := new(MockPlacesClient)
	svc := NewServiceImpl(client, testLogger())
	handler := NewPOIHandler(svc, testLogger())

	client.On("GetPlaces", mock.Anything, 48.85, 2.35, []string{"entertainment.museum"}, defaultPOIRadius, defaultPOILimit).
		Return([]types.POIDetail{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/pois?lat=48.85&lon=2.35&kinds=museums&interests=Food+%26+Dining", nil)
	rec := httptest.NewRecorder()
	handler.GetPOIs(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	client.AssertExpectations(t)
}

func TestGetPOIsRejectsMissingCoordinates(t *testing.T) {
	handler := NewPOIHandler(NewServiceImpl(new(MockPlacesClient), testLogger()), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/pois?kinds=museums", nil)
	rec := httptest.NewRecorder()
	handler.GetPOIs(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
