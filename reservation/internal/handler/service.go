package handler

import (
	"context"

	"github.com/Astemirdum/booking-service/reservation/internal/model"
	"github.com/Astemirdum/booking-service/reservation/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type ReservationService interface {
	Check(ctx context.Context, in model.ReservationInput) error
	Submit(ctx context.Context, in model.ReservationInput) (model.Reservation, error)
	Amend(ctx context.Context, id int64, in model.ReservationInput) (model.Reservation, error)
	Remove(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	ListForDate(ctx context.Context, date string) ([]model.Reservation, error)
	SearchByName(ctx context.Context, query string) ([]model.Reservation, error)
	Calendar(ctx context.Context, year, month int) (model.Calendar, error)
	Today() model.YearMonth
}

var _ ReservationService = (*service.Service)(nil)
