package model

import (
	"time"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = DateLayout + " " + TimeLayout
)

// ReservationInput is what a caller submits for a new or amended reservation.
type ReservationInput struct {
	Name string `json:"name" form:"name" validate:"required,notblank,trimmax=50"`
	Date string `json:"date" form:"date" validate:"required,datetime=2006-01-02"`
	Time string `json:"time" form:"time" validate:"required,datetime=15:04"`
}

type Reservation struct {
	ID   int64   `json:"id" db:"id"`
	Name string  `json:"name" db:"name"`
	Date string  `json:"date" db:"date"`
	Time string  `json:"time" db:"time"`
	Menu *string `json:"menu,omitempty" db:"menu"`
	Note *string `json:"note,omitempty" db:"note"`
}

type ListReservations struct {
	TotalElements int           `json:"totalElements"`
	Items         []Reservation `json:"items"`
}

type EventType string

const (
	EventCreated EventType = "CREATED"
	EventAmended EventType = "AMENDED"
	EventRemoved EventType = "REMOVED"
)

type ReservationEvent struct {
	Type          EventType `json:"type"`
	ReservationID int64     `json:"reservationId"`
	Name          string    `json:"name,omitempty"`
	Date          string    `json:"date,omitempty"`
	Time          string    `json:"time,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type CalendarEntry struct {
	ID   int64  `json:"id"`
	Time string `json:"time"`
	Name string `json:"name"`
}

type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Calendar is a Sunday-first month grid. Days outside the month are 0.
type Calendar struct {
	Year         int                        `json:"year"`
	Month        int                        `json:"month"`
	Weeks        [][7]int                   `json:"weeks"`
	Reservations map[string][]CalendarEntry `json:"reservations"`
	Prev         YearMonth                  `json:"prev"`
	Next         YearMonth                  `json:"next"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type LoginResponse struct {
	Username  string     `json:"username"`
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}
