package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightdays/holiday-club-booking/internal/model"
)

func doJSON(t *testing.T, f *fixture, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"club_id":           1,
		"booking_option_id": 12,
		"selected_dates":    []string{"2026-08-03", "2026-08-04"},
		"parent_name":       "Jo Bloggs",
		"parent_email":      "jo@example.com",
		"parent_phone":      "07700900000",
		"num_children":      2,
	}
}

func createBooking(t *testing.T, f *fixture) (reference, checkoutURL string) {
	t.Helper()
	rec := doJSON(t, f, http.MethodPost, "/v1/bookings", validCreateBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp struct {
		Booking struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
		} `json:"booking"`
		CheckoutURL string `json:"checkout_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Booking.Reference, resp.CheckoutURL
}

func TestCreateBooking(t *testing.T) {
	t.Run("returns pending booking and checkout url", func(t *testing.T) {
		f := newFixture()
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings", validCreateBody())
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var resp struct {
			Booking     bookingResponse `json:"booking"`
			CheckoutURL string          `json:"checkout_url"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, model.BookingPending, resp.Booking.Status)
		assert.NotEmpty(t, resp.Booking.Reference)
		assert.Contains(t, resp.CheckoutURL, "https://checkout.test/")
		// 2 days x 2000p x 2 children
		assert.Equal(t, uint32(8000), resp.Booking.TotalPence)
	})

	t.Run("missing parent email is rejected", func(t *testing.T) {
		f := newFixture()
		body := validCreateBody()
		delete(body, "parent_email")
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown club is a 404", func(t *testing.T) {
		f := newFixture()
		body := validCreateBody()
		body["club_id"] = 99
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings", body)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("closed club is a 403", func(t *testing.T) {
		f := newFixture()
		f.catalog.clubs[1].BookingsOpen = false
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings", validCreateBody())
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("rejected promo code degrades to full price", func(t *testing.T) {
		f := newFixture()
		body := validCreateBody()
		body["promo_code"] = "NOPE"
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var resp struct {
			Booking    bookingResponse `json:"booking"`
			PromoError string          `json:"promo_error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, uint32(8000), resp.Booking.TotalPence)
		assert.NotEmpty(t, resp.PromoError)
	})
}

func TestGetBooking(t *testing.T) {
	f := newFixture()
	ref, _ := createBooking(t, f)

	rec := doJSON(t, f, http.MethodGet, "/v1/bookings/"+ref, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Booking bookingResponse `json:"booking"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ref, resp.Booking.Reference)

	rec = doJSON(t, f, http.MethodGet, "/v1/bookings/not-a-reference", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyPayment(t *testing.T) {
	t.Run("unpaid session reports unpaid with checkout url", func(t *testing.T) {
		f := newFixture()
		ref, url := createBooking(t, f)

		rec := doJSON(t, f, http.MethodPost, "/v1/bookings/"+ref+"/verify-payment", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Outcome     string `json:"outcome"`
			CheckoutURL string `json:"checkout_url"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "unpaid", resp.Outcome)
		assert.Equal(t, url, resp.CheckoutURL)
	})

	t.Run("paid session verifies and replays as already paid", func(t *testing.T) {
		f := newFixture()
		ref, _ := createBooking(t, f)
		b, err := f.store.ByReference(context.Background(), ref)
		require.NoError(t, err)
		f.gateway.pay(*b.StripeCheckoutSessionID, "pi_123")

		rec := doJSON(t, f, http.MethodPost, "/v1/bookings/"+ref+"/verify-payment", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Outcome string          `json:"outcome"`
			Booking bookingResponse `json:"booking"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "verified", resp.Outcome)
		assert.Equal(t, model.BookingPaid, resp.Booking.Status)

		rec = doJSON(t, f, http.MethodPost, "/v1/bookings/"+ref+"/verify-payment", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "already_paid", resp.Outcome)
	})
}

func TestSubmitChildren(t *testing.T) {
	child := func(first string) map[string]interface{} {
		return map[string]interface{}{
			"first_name":              first,
			"last_name":               "Bloggs",
			"date_of_birth":           "2019-02-14",
			"emergency_contact_name":  "Jo Bloggs",
			"emergency_contact_phone": "07700900000",
			"photo_consent":           true,
		}
	}

	payFor := func(t *testing.T, f *fixture, ref string) {
		t.Helper()
		b, err := f.store.ByReference(context.Background(), ref)
		require.NoError(t, err)
		f.gateway.pay(*b.StripeCheckoutSessionID, "pi_123")
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings/"+ref+"/verify-payment", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	t.Run("completes a paid booking", func(t *testing.T) {
		f := newFixture()
		ref, _ := createBooking(t, f)
		payFor(t, f, ref)

		body := map[string]interface{}{"children": []interface{}{child("Ada"), child("Grace")}}
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings/"+ref+"/children", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Booking bookingResponse `json:"booking"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, model.BookingComplete, resp.Booking.Status)

		// second submission is rejected
		rec = doJSON(t, f, http.MethodPost, "/v1/bookings/"+ref+"/children", body)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("pending booking cannot submit children", func(t *testing.T) {
		f := newFixture()
		ref, _ := createBooking(t, f)
		body := map[string]interface{}{"children": []interface{}{child("Ada"), child("Grace")}}
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings/"+ref+"/children", body)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("count mismatch is a 400", func(t *testing.T) {
		f := newFixture()
		ref, _ := createBooking(t, f)
		payFor(t, f, ref)
		body := map[string]interface{}{"children": []interface{}{child("Ada")}}
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings/"+ref+"/children", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed date of birth is a 400", func(t *testing.T) {
		f := newFixture()
		ref, _ := createBooking(t, f)
		payFor(t, f, ref)
		bad := child("Ada")
		bad["date_of_birth"] = "14/02/2019"
		body := map[string]interface{}{"children": []interface{}{bad, child("Grace")}}
		rec := doJSON(t, f, http.MethodPost, "/v1/bookings/"+ref+"/children", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestValidatePromo(t *testing.T) {
	f := newFixture()
	f.promos.byCode["SUMMER10"] = &model.PromoCode{
		ID: 5, Code: "SUMMER10", DiscountPercent: 10,
		ValidFrom:  time.Now().Add(-time.Hour),
		ValidUntil: time.Now().Add(time.Hour),
		IsActive:   true,
	}

	t.Run("valid code reports its discount", func(t *testing.T) {
		rec := doJSON(t, f, http.MethodPost, "/v1/promo-codes/validate", map[string]interface{}{
			"code": "summer10", "club_id": 1,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp struct {
			Valid           bool  `json:"valid"`
			DiscountPercent uint8 `json:"discount_percent"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Valid)
		assert.Equal(t, uint8(10), resp.DiscountPercent)
	})

	t.Run("unknown code is a 404", func(t *testing.T) {
		rec := doJSON(t, f, http.MethodPost, "/v1/promo-codes/validate", map[string]interface{}{
			"code": "NOPE", "club_id": 1,
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("expired code is invalid but not a 404", func(t *testing.T) {
		f.promos.byCode["OLD"] = &model.PromoCode{
			ID: 6, Code: "OLD", DiscountPercent: 10,
			ValidFrom:  time.Now().Add(-2 * time.Hour),
			ValidUntil: time.Now().Add(-time.Hour),
			IsActive:   true,
		}
		rec := doJSON(t, f, http.MethodPost, "/v1/promo-codes/validate", map[string]interface{}{
			"code": "OLD", "club_id": 1,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Valid bool `json:"valid"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Valid)
	})
}
