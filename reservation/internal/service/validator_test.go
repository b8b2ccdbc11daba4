package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/booking-service/reservation/internal/errs"
	"github.com/Astemirdum/booking-service/reservation/internal/model"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var testNow = time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

func TestValidator_Validate(t *testing.T) {
	t.Parallel()
	v := NewValidator(time.UTC, fixedClock(testNow))

	tests := []struct {
		name      string
		in        model.ReservationInput
		allowPast bool
		want      error
	}{
		{
			name: "ok",
			in:   model.ReservationInput{Name: "Taro", Date: "2030-01-02", Time: "12:00"},
		},
		{
			name: "fifty code points",
			in:   model.ReservationInput{Name: strings.Repeat("あ", 50), Date: "2030-01-02", Time: "12:00"},
		},
		{
			name: "fifty one code points",
			in:   model.ReservationInput{Name: strings.Repeat("あ", 51), Date: "2030-01-02", Time: "12:00"},
			want: errs.ErrNameTooLong,
		},
		{
			name: "surrounding spaces do not count",
			in:   model.ReservationInput{Name: "  " + strings.Repeat("a", 50) + "  ", Date: "2030-01-02", Time: "12:00"},
		},
		{
			name: "whitespace name",
			in:   model.ReservationInput{Name: "   ", Date: "2030-01-02", Time: "12:00"},
			want: errs.ErrBlankName,
		},
		{
			name: "missing name",
			in:   model.ReservationInput{Date: "2030-01-02", Time: "12:00"},
			want: errs.ErrMissingField,
		},
		{
			name: "missing time wins over long name",
			in:   model.ReservationInput{Name: strings.Repeat("a", 60), Date: "2030-01-02"},
			want: errs.ErrMissingField,
		},
		{
			name: "bad month",
			in:   model.ReservationInput{Name: "Taro", Date: "2030-13-01", Time: "12:00"},
			want: errs.ErrMalformedDateTime,
		},
		{
			name: "bad hour",
			in:   model.ReservationInput{Name: "Taro", Date: "2030-01-02", Time: "25:00"},
			want: errs.ErrMalformedDateTime,
		},
		{
			name: "one-digit hour",
			in:   model.ReservationInput{Name: "Taro", Date: "2030-01-02", Time: "9:00"},
			want: errs.ErrMalformedDateTime,
		},
		{
			name: "one-digit minute",
			in:   model.ReservationInput{Name: "Taro", Date: "2030-01-02", Time: "09:5"},
			want: errs.ErrMalformedDateTime,
		},
		{
			name: "day out of range",
			in:   model.ReservationInput{Name: "Taro", Date: "2030-02-30", Time: "12:00"},
			want: errs.ErrMalformedDateTime,
		},
		{
			name: "one minute ago",
			in:   model.ReservationInput{Name: "Taro", Date: "2030-01-01", Time: "11:59"},
			want: errs.ErrPastDateTime,
		},
		{
			name:      "one minute ago allowed",
			in:        model.ReservationInput{Name: "Taro", Date: "2030-01-01", Time: "11:59"},
			allowPast: true,
		},
		{
			name: "exactly now",
			in:   model.ReservationInput{Name: "Taro", Date: "2030-01-01", Time: "12:00"},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(tt.in, tt.allowPast)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidator_Location(t *testing.T) {
	t.Parallel()
	tokyo := time.FixedZone("JST", 9*60*60)
	v := NewValidator(tokyo, fixedClock(testNow))

	// 12:00 UTC is 21:00 in Tokyo.
	err := v.Validate(model.ReservationInput{Name: "Taro", Date: "2030-01-01", Time: "20:59"}, false)
	require.ErrorIs(t, err, errs.ErrPastDateTime)
	require.NoError(t, v.Validate(model.ReservationInput{Name: "Taro", Date: "2030-01-01", Time: "21:00"}, false))
}
