package grpc

import "time"

type GetAvailableDatesRequest struct {
	StartDate string `json:"start_date,omitempty"`
	N         int32  `json:"n"`
}

type GetAvailableDatesResponse struct {
	AvailableDates []string `json:"available_dates"`
}

type CreateReservationRequest struct {
	Date     string `json:"date"`
	Attendee string `json:"attendee"`
}

type CreateReservationResponse struct {
	Reservation *Reservation `json:"reservation"`
}

type CancelReservationRequest struct {
	ConfirmationCode string `json:"confirmation_code"`
}

type CancelReservationResponse struct {
	Cancelled bool `json:"cancelled"`
}

type LookupReservationsRequest struct {
	Attendee string `json:"attendee"`
}

type LookupReservationsResponse struct {
	Reservations []*Reservation `json:"reservations"`
}

type Reservation struct {
	ID               int64     `json:"id"`
	ConfirmationCode string    `json:"confirmation_code"`
	Date             string    `json:"date"`
	StartsAt         time.Time `json:"starts_at"`
	Attendee         string    `json:"attendee"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}
