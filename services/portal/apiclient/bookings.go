package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"carenest/services/portal/models"
)

// Bookings wraps the bookings/ endpoints. Every call is authenticated.
type Bookings struct {
	c *Client
}

func NewBookings(c *Client) *Bookings {
	return &Bookings{c: c}
}

// ListCaregivers queries the verified caregiver directory. Empty filters are
// not sent.
func (b *Bookings) ListCaregivers(ctx context.Context, ts oauth2.TokenSource, location, gender string) ([]models.Caregiver, error) {
	q := url.Values{}
	if location != "" {
		q.Set("location", location)
	}
	if gender != "" {
		q.Set("gender", gender)
	}
	var out []models.Caregiver
	if err := b.c.Do(ctx, ts, Request{Method: http.MethodGet, Path: "caregivers/", Query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bookings) CreateBooking(ctx context.Context, ts oauth2.TokenSource, req models.CreateBookingRequest) error {
	return b.c.Do(ctx, ts, Request{Method: http.MethodPost, Path: "", Body: req}, nil)
}

func (b *Bookings) ListBookings(ctx context.Context, ts oauth2.TokenSource) ([]models.Booking, error) {
	var out []models.Booking
	if err := b.c.Do(ctx, ts, Request{Method: http.MethodGet, Path: "list/"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bookings) RespondBooking(ctx context.Context, ts oauth2.TokenSource, id int64, status models.BookingStatus) error {
	return b.c.Do(ctx, ts, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("%d/respond/", id),
		Body:   models.RespondBookingRequest{Status: status},
	}, nil)
}
