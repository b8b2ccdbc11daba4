package service

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Astemirdum/booking-service/pkg/validate"
	"github.com/Astemirdum/booking-service/reservation/internal/errs"
	"github.com/Astemirdum/booking-service/reservation/internal/model"
)

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

type Validator struct {
	validate *validator.Validate
	loc      *time.Location
	clock    Clock
}

// NewValidator interprets submitted dates and times in loc.
func NewValidator(loc *time.Location, clock Clock) *Validator {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Validator{
		validate: validate.New(),
		loc:      loc,
		clock:    clock,
	}
}

// tag -> rejection, most significant first
var tagPriority = []struct {
	tag string
	err error
}{
	{"required", errs.ErrMissingField},
	{"notblank", errs.ErrBlankName},
	{"trimmax", errs.ErrNameTooLong},
	{"datetime", errs.ErrMalformedDateTime},
}

// Validate checks a submission. With allowPast a slot earlier than now passes.
func (v *Validator) Validate(in model.ReservationInput, allowPast bool) error {
	if err := v.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		return rejection(fieldErrs)
	}

	at, err := time.ParseInLocation(model.DateTimeLayout, in.Date+" "+in.Time, v.loc)
	if err != nil {
		return errs.ErrMalformedDateTime
	}
	// the layout accepts a one-digit hour; slots are compared as exact HH:MM strings
	if at.Format(model.DateLayout) != in.Date || at.Format(model.TimeLayout) != in.Time {
		return errs.ErrMalformedDateTime
	}
	if !allowPast && at.Before(v.clock.Now()) {
		return errs.ErrPastDateTime
	}
	return nil
}

func rejection(fieldErrs validator.ValidationErrors) error {
	for _, p := range tagPriority {
		for _, fe := range fieldErrs {
			if fe.Tag() == p.tag {
				return p.err
			}
		}
	}
	return errs.ErrMalformedDateTime
}
