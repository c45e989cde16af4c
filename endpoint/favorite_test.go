package endpoint_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veterinary-salons/backend/endpoint"
	"github.com/veterinary-salons/backend/model"
)

func TestFavorites(t *testing.T) {
	env := newTestEnv(t)
	supplier := env.newSupplier("groomer@example.com", model.CategoryGrooming)
	customer := env.newCustomer("owner@example.com")
	service := env.createService(supplier, groomingService())
	path := customerPath(customer, "/favorites")

	list := func() []endpoint.FavoriteEntry {
		t.Helper()
		w, resp := env.do(http.MethodGet, path, nil, customer.access)
		require.Equal(t, http.StatusOK, w.Code, resp.Msg)
		var out []endpoint.FavoriteEntry
		decode(t, resp, &out)
		return out
	}
	assert.Empty(t, list())

	w, resp := env.do(http.MethodPost, path, map[string]interface{}{"service_id": service.ID}, customer.access)
	require.Equal(t, http.StatusCreated, w.Code, resp.Msg)

	w, resp = env.do(http.MethodPost, path, map[string]interface{}{"service_id": service.ID}, customer.access)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "service is already in favorites", resp.Msg)

	w, resp = env.do(http.MethodPost, path, map[string]interface{}{"service_id": 999}, customer.access)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Service not found", resp.Msg)

	favorites := list()
	require.Len(t, favorites, 1)
	assert.Equal(t, service.ID, favorites[0].Service.ID)
	assert.Len(t, favorites[0].Service.Prices, 2)
	require.NotNil(t, favorites[0].Service.Supplier)
	assert.Equal(t, "Ivan", favorites[0].Service.Supplier.FirstName)
	assert.Empty(t, favorites[0].Reviews)

	stranger := env.newCustomer("stranger@example.com")
	w, _ = env.do(http.MethodGet, path, nil, stranger.access)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = env.do(http.MethodPost, path, map[string]interface{}{"service_id": service.ID}, supplier.access)
	assert.Equal(t, http.StatusForbidden, w.Code)

	removePath := customerPath(customer, fmt.Sprintf("/favorites/%d", service.ID))
	w, resp = env.do(http.MethodDelete, removePath, nil, customer.access)
	require.Equal(t, http.StatusOK, w.Code, resp.Msg)
	assert.Empty(t, list())

	w, resp = env.do(http.MethodDelete, removePath, nil, customer.access)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "service is not in favorites", resp.Msg)
}

func TestFavoritesCarryReviews(t *testing.T) {
	f := newBookingFixture(t)
	env := f.env
	booked := env.mustBook(f.customer, f.supplier.profileID, []uint{f.haircut}, tomorrowAt(10))
	w, resp := env.do(http.MethodPatch, fmt.Sprintf("/suppliers/%d/bookings/%d/done", f.supplier.profileID, booked[0].ID), nil, f.supplier.access)
	require.Equal(t, http.StatusOK, w.Code, resp.Msg)
	w, resp = env.do(http.MethodPost, customerPath(f.customer, fmt.Sprintf("/reviews/%d", f.haircut)),
		map[string]interface{}{"text": "Lovely", "rating": 5}, f.customer.access)
	require.Equal(t, http.StatusCreated, w.Code, resp.Msg)

	w, resp = env.do(http.MethodPost, customerPath(f.customer, "/favorites"), map[string]interface{}{"service_id": f.service.ID}, f.customer.access)
	require.Equal(t, http.StatusCreated, w.Code, resp.Msg)

	w, resp = env.do(http.MethodGet, customerPath(f.customer, "/favorites"), nil, f.customer.access)
	require.Equal(t, http.StatusOK, w.Code, resp.Msg)
	var favorites []endpoint.FavoriteEntry
	decode(t, resp, &favorites)
	require.Len(t, favorites, 1)
	require.Len(t, favorites[0].Reviews, 1)
	assert.Equal(t, "Lovely", favorites[0].Reviews[0].Text)
}
