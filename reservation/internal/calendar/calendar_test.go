package calendar

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/booking-service/reservation/internal/model"
)

func TestWeeks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		year, month int
		want        [][7]int
		wantErr     bool
	}{
		{
			name: "starts on tuesday",
			year: 2030, month: 1,
			want: [][7]int{
				{0, 0, 1, 2, 3, 4, 5},
				{6, 7, 8, 9, 10, 11, 12},
				{13, 14, 15, 16, 17, 18, 19},
				{20, 21, 22, 23, 24, 25, 26},
				{27, 28, 29, 30, 31, 0, 0},
			},
		},
		{
			name: "february starting sunday fills four rows",
			year: 2026, month: 2,
			want: [][7]int{
				{1, 2, 3, 4, 5, 6, 7},
				{8, 9, 10, 11, 12, 13, 14},
				{15, 16, 17, 18, 19, 20, 21},
				{22, 23, 24, 25, 26, 27, 28},
			},
		},
		{name: "month 13", year: 2030, month: 13, wantErr: true},
		{name: "month 0", year: 2030, month: 0, wantErr: true},
		{name: "year 0", year: 0, month: 5, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Weeks(tt.year, tt.month)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMonth)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAdjacent(t *testing.T) {
	t.Parallel()
	prev, next := Adjacent(2030, 1)
	require.Equal(t, model.YearMonth{Year: 2029, Month: 12}, prev)
	require.Equal(t, model.YearMonth{Year: 2030, Month: 2}, next)

	prev, next = Adjacent(2030, 12)
	require.Equal(t, model.YearMonth{Year: 2030, Month: 11}, prev)
	require.Equal(t, model.YearMonth{Year: 2031, Month: 1}, next)
}

func TestBounds(t *testing.T) {
	t.Parallel()
	from, to, err := Bounds(2028, 2)
	require.NoError(t, err)
	require.Equal(t, "2028-02-01", from)
	require.Equal(t, "2028-02-29", to)
}

func TestBuild(t *testing.T) {
	t.Parallel()
	cal, err := Build(2030, 1, []model.Reservation{
		{ID: 3, Name: "Jiro", Date: "2030-01-01", Time: "18:00"},
		{ID: 1, Name: "Taro", Date: "2030-01-01", Time: "12:00"},
		{ID: 2, Name: "Hanako", Date: "2030-01-15", Time: "09:30"},
		{ID: 4, Name: "Saburo", Date: "2030-02-01", Time: "10:00"},
	})
	require.NoError(t, err)
	require.Equal(t, 2030, cal.Year)
	require.Equal(t, 1, cal.Month)
	require.Len(t, cal.Weeks, 5)
	require.Equal(t, map[string][]model.CalendarEntry{
		"2030-01-01": {
			{ID: 1, Time: "12:00", Name: "Taro"},
			{ID: 3, Time: "18:00", Name: "Jiro"},
		},
		"2030-01-15": {
			{ID: 2, Time: "09:30", Name: "Hanako"},
		},
	}, cal.Reservations)
	require.Equal(t, model.YearMonth{Year: 2029, Month: 12}, cal.Prev)
	require.Equal(t, model.YearMonth{Year: 2030, Month: 2}, cal.Next)
}
