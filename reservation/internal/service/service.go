package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/reservation/internal/calendar"
	"github.com/Astemirdum/booking-service/reservation/internal/errs"
	"github.com/Astemirdum/booking-service/reservation/internal/events"
	"github.com/Astemirdum/booking-service/reservation/internal/model"
	"github.com/Astemirdum/booking-service/reservation/internal/repository"
)

type Service struct {
	log       *zap.Logger
	repo      repository.Repository
	validator *Validator
	publisher events.Publisher
	clock     Clock
}

type Option func(s *Service)

func WithValidator(v *Validator) Option {
	return func(s *Service) {
		s.validator = v
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithClock(c Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func NewService(repo repository.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		publisher: events.NewNop(),
		clock:     RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = NewValidator(nil, s.clock)
	}
	return s
}

// Check runs validation only, the preview step before a submission.
func (s *Service) Check(_ context.Context, in model.ReservationInput) error {
	return s.validator.Validate(in, false)
}

func (s *Service) Submit(ctx context.Context, in model.ReservationInput) (model.Reservation, error) {
	if err := s.validator.Validate(in, false); err != nil {
		return model.Reservation{}, err
	}
	in.Name = strings.TrimSpace(in.Name)

	taken, err := s.repo.HasConflict(ctx, in.Date, in.Time, nil)
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, "conflict check")
	}
	if taken {
		return model.Reservation{}, errs.ErrDuplicateSlot
	}

	id, err := s.repo.CreateReservation(ctx, in)
	if err != nil {
		return model.Reservation{}, err
	}
	rsv := model.Reservation{ID: id, Name: in.Name, Date: in.Date, Time: in.Time}
	s.publish(ctx, model.EventCreated, rsv)
	return rsv, nil
}

func (s *Service) Amend(ctx context.Context, id int64, in model.ReservationInput) (model.Reservation, error) {
	if err := s.validator.Validate(in, false); err != nil {
		return model.Reservation{}, err
	}
	in.Name = strings.TrimSpace(in.Name)

	taken, err := s.repo.HasConflict(ctx, in.Date, in.Time, &id)
	if err != nil {
		return model.Reservation{}, errors.Wrap(err, "conflict check")
	}
	if taken {
		return model.Reservation{}, errs.ErrDuplicateSlot
	}

	if err = s.repo.UpdateReservation(ctx, id, in); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Reservation{}, errs.ErrRecordMissing
		}
		return model.Reservation{}, err
	}
	rsv := model.Reservation{ID: id, Name: in.Name, Date: in.Date, Time: in.Time}
	s.publish(ctx, model.EventAmended, rsv)
	return rsv, nil
}

// Remove succeeds whether or not id exists.
func (s *Service) Remove(ctx context.Context, id int64) error {
	if err := s.repo.DeleteReservation(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, model.EventRemoved, model.Reservation{ID: id})
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.Reservation, error) {
	rsv, err := s.repo.GetReservation(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Reservation{}, errs.ErrRecordMissing
		}
		return model.Reservation{}, err
	}
	return rsv, nil
}

func (s *Service) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListForDate(ctx context.Context, date string) ([]model.Reservation, error) {
	return s.repo.ListByDate(ctx, date)
}

func (s *Service) SearchByName(ctx context.Context, query string) ([]model.Reservation, error) {
	return s.repo.SearchByName(ctx, query)
}

func (s *Service) Calendar(ctx context.Context, year, month int) (model.Calendar, error) {
	from, to, err := calendar.Bounds(year, month)
	if err != nil {
		return model.Calendar{}, errors.Wrap(errs.ErrMalformedDateTime, err.Error())
	}
	list, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return model.Calendar{}, err
	}
	return calendar.Build(year, month, list)
}

// Today is the current year and month on the service clock.
func (s *Service) Today() model.YearMonth {
	now := s.clock.Now().In(s.validator.loc)
	return model.YearMonth{Year: now.Year(), Month: int(now.Month())}
}

func (s *Service) publish(ctx context.Context, typ model.EventType, rsv model.Reservation) {
	event := model.ReservationEvent{
		Type:          typ,
		ReservationID: rsv.ID,
		Name:          rsv.Name,
		Date:          rsv.Date,
		Time:          rsv.Time,
		Timestamp:     s.clock.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("publish", zap.String("type", string(typ)), zap.Int64("id", rsv.ID), zap.Error(err))
	}
}
