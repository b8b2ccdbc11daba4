package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/pkg/database"
	"github.com/Astemirdum/booking-service/reservation/internal/errs"
	"github.com/Astemirdum/booking-service/reservation/internal/model"
	"github.com/Astemirdum/booking-service/reservation/internal/repository"
	"github.com/Astemirdum/booking-service/reservation/migrations"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.ReservationEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e model.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func newTestService(t *testing.T) (*Service, *recordingPublisher) {
	t.Helper()
	cfg := &database.DB{
		Driver: database.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "reservations.db"),
	}
	db, err := database.NewDB(context.Background(), cfg, migrations.MigrationFiles)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := repository.NewRepository(db, zap.NewNop())
	require.NoError(t, err)

	pub := &recordingPublisher{}
	clock := fixedClock(testNow)
	svc := NewService(repo, zap.NewNop(),
		WithClock(clock),
		WithValidator(NewValidator(time.UTC, clock)),
		WithPublisher(pub),
	)
	return svc, pub
}

func TestService_SubmitConflict(t *testing.T) {
	t.Parallel()
	svc, pub := newTestService(t)
	ctx := context.Background()

	taro, err := svc.Submit(ctx, model.ReservationInput{Name: "Taro", Date: "2030-01-01", Time: "12:00"})
	require.NoError(t, err)
	require.Equal(t, "Taro", taro.Name)
	require.NotZero(t, taro.ID)

	_, err = svc.Submit(ctx, model.ReservationInput{Name: "Hanako", Date: "2030-01-01", Time: "12:00"})
	require.ErrorIs(t, err, errs.ErrDuplicateSlot)

	hanako, err := svc.Submit(ctx, model.ReservationInput{Name: "Hanako", Date: "2030-01-01", Time: "13:00"})
	require.NoError(t, err)

	list, err := svc.ListForDate(ctx, "2030-01-01")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, taro.ID, list[0].ID)
	require.Equal(t, hanako.ID, list[1].ID)

	require.Equal(t, []model.EventType{model.EventCreated, model.EventCreated}, pub.types())
}

func TestService_SubmitRejected(t *testing.T) {
	t.Parallel()
	svc, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, model.ReservationInput{Name: "   ", Date: "2030-01-01", Time: "12:00"})
	require.ErrorIs(t, err, errs.ErrBlankName)

	_, err = svc.Submit(ctx, model.ReservationInput{Name: "Taro", Date: "2029-12-31", Time: "12:00"})
	require.ErrorIs(t, err, errs.ErrPastDateTime)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
	require.Empty(t, pub.types())
}

func TestService_SubmitTrimsName(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	rsv, err := svc.Submit(ctx, model.ReservationInput{Name: "  Taro ", Date: "2030-01-01", Time: "12:00"})
	require.NoError(t, err)
	require.Equal(t, "Taro", rsv.Name)

	got, err := svc.Get(ctx, rsv.ID)
	require.NoError(t, err)
	require.Equal(t, "Taro", got.Name)
}

func TestService_Amend(t *testing.T) {
	t.Parallel()
	svc, pub := newTestService(t)
	ctx := context.Background()

	taro, err := svc.Submit(ctx, model.ReservationInput{Name: "Taro", Date: "2030-01-01", Time: "12:00"})
	require.NoError(t, err)
	hanako, err := svc.Submit(ctx, model.ReservationInput{Name: "Hanako", Date: "2030-01-01", Time: "13:00"})
	require.NoError(t, err)

	// keeping its own slot is not a conflict
	amended, err := svc.Amend(ctx, taro.ID, model.ReservationInput{Name: "Taro Yamada", Date: "2030-01-01", Time: "12:00"})
	require.NoError(t, err)
	require.Equal(t, model.Reservation{ID: taro.ID, Name: "Taro Yamada", Date: "2030-01-01", Time: "12:00"}, amended)

	_, err = svc.Amend(ctx, hanako.ID, model.ReservationInput{Name: "Hanako", Date: "2030-01-01", Time: "12:00"})
	require.ErrorIs(t, err, errs.ErrDuplicateSlot)

	_, err = svc.Amend(ctx, 9999, model.ReservationInput{Name: "Ghost", Date: "2030-02-01", Time: "12:00"})
	require.ErrorIs(t, err, errs.ErrRecordMissing)

	_, err = svc.Amend(ctx, taro.ID, model.ReservationInput{Name: "Taro", Date: "2020-01-01", Time: "12:00"})
	require.ErrorIs(t, err, errs.ErrPastDateTime)

	got, err := svc.Get(ctx, taro.ID)
	require.NoError(t, err)
	require.Equal(t, "Taro Yamada", got.Name)

	require.Equal(t, []model.EventType{model.EventCreated, model.EventCreated, model.EventAmended}, pub.types())
}

func TestService_Remove(t *testing.T) {
	t.Parallel()
	svc, pub := newTestService(t)
	ctx := context.Background()

	rsv, err := svc.Submit(ctx, model.ReservationInput{Name: "Taro", Date: "2030-01-01", Time: "12:00"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, rsv.ID))
	require.NoError(t, svc.Remove(ctx, rsv.ID))

	_, err = svc.Get(ctx, rsv.ID)
	require.ErrorIs(t, err, errs.ErrRecordMissing)

	// the slot is free again
	_, err = svc.Submit(ctx, model.ReservationInput{Name: "Hanako", Date: "2030-01-01", Time: "12:00"})
	require.NoError(t, err)

	require.Equal(t, []model.EventType{
		model.EventCreated, model.EventRemoved, model.EventRemoved, model.EventCreated,
	}, pub.types())
}

func TestService_SearchAndCalendar(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, in := range []model.ReservationInput{
		{Name: "Hanako", Date: "2030-01-15", Time: "09:30"},
		{Name: "Taro", Date: "2030-01-01", Time: "18:00"},
		{Name: "Taro Jr", Date: "2030-01-01", Time: "12:00"},
		{Name: "Jiro", Date: "2030-02-01", Time: "10:00"},
	} {
		_, err := svc.Submit(ctx, in)
		require.NoError(t, err)
	}

	found, err := svc.SearchByName(ctx, "Taro")
	require.NoError(t, err)
	require.Len(t, found, 2)
	require.Equal(t, "12:00", found[0].Time)
	require.Equal(t, "18:00", found[1].Time)

	cal, err := svc.Calendar(ctx, 2030, 1)
	require.NoError(t, err)
	require.Len(t, cal.Reservations, 2)
	require.Equal(t, []string{"Taro Jr", "Taro"}, []string{
		cal.Reservations["2030-01-01"][0].Name,
		cal.Reservations["2030-01-01"][1].Name,
	})
	require.Equal(t, model.YearMonth{Year: 2030, Month: 2}, cal.Next)

	_, err = svc.Calendar(ctx, 2030, 13)
	require.ErrorIs(t, err, errs.ErrMalformedDateTime)

	require.Equal(t, model.YearMonth{Year: 2030, Month: 1}, svc.Today())
}

func TestService_SubmitUnpaddedHour(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, model.ReservationInput{Name: "Taro", Date: "2030-01-02", Time: "09:00"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, model.ReservationInput{Name: "Hanako", Date: "2030-01-02", Time: "9:00"})
	require.ErrorIs(t, err, errs.ErrMalformedDateTime)

	list, err := svc.ListForDate(ctx, "2030-01-02")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "09:00", list[0].Time)
}
