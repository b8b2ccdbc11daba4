package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/booking-service/pkg/database"
	"github.com/Astemirdum/booking-service/reservation/internal/errs"
	"github.com/Astemirdum/booking-service/reservation/internal/model"
)

type Repository interface {
	CreateReservation(ctx context.Context, in model.ReservationInput) (int64, error)
	GetReservation(ctx context.Context, id int64) (model.Reservation, error)
	ListByDate(ctx context.Context, date string) ([]model.Reservation, error)
	SearchByName(ctx context.Context, query string) ([]model.Reservation, error)
	ListAll(ctx context.Context) ([]model.Reservation, error)
	ListBetween(ctx context.Context, from, to string) ([]model.Reservation, error)
	UpdateReservation(ctx context.Context, id int64, in model.ReservationInput) error
	DeleteReservation(ctx context.Context, id int64) error
	HasConflict(ctx context.Context, date, time string, excludeID *int64) (bool, error)
}

type repository struct {
	db  *sqlx.DB
	qb  sq.StatementBuilderType
	log *zap.Logger
	// mysql has no insert ... returning
	returning bool
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	var placeholder sq.PlaceholderFormat = sq.Question
	if db.DriverName() == "pgx" || db.DriverName() == database.DriverPostgres {
		placeholder = sq.Dollar
	}
	return &repository{
		db:        db,
		qb:        sq.StatementBuilder.PlaceholderFormat(placeholder),
		log:       log.Named("repo"),
		returning: db.DriverName() != database.DriverMySQL,
	}, nil
}

const (
	reservationTableName = `reservations`
)

var reservationColumns = []string{"id", "name", "date", "time", "menu", "note"}

func (r *repository) CreateReservation(ctx context.Context, in model.ReservationInput) (int64, error) {
	b := r.qb.Insert(reservationTableName).
		Columns("name", "date", "time").
		Values(in.Name, in.Date, in.Time)
	if r.returning {
		b = b.Suffix("returning id")
	}
	q, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}

	var id int64
	if r.returning {
		err = r.db.QueryRowxContext(ctx, q, args...).Scan(&id)
	} else {
		var res sql.Result
		if res, err = r.db.ExecContext(ctx, q, args...); err == nil {
			id, err = res.LastInsertId()
		}
	}
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, errs.ErrDuplicateSlot
		}
		r.log.Error("CreateReservation", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return 0, errors.Wrap(err, "insert reservation")
	}
	return id, nil
}

func (r *repository) GetReservation(ctx context.Context, id int64) (model.Reservation, error) {
	q, args, err := r.qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}
	var res model.Reservation
	if err := r.db.GetContext(ctx, &res, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, errors.Wrap(err, "get reservation")
	}
	return res, nil
}

func (r *repository) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	return r.list(ctx, r.qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.Eq{"date": date}).
		OrderBy("time", "id"))
}

func (r *repository) SearchByName(ctx context.Context, query string) ([]model.Reservation, error) {
	return r.list(ctx, r.qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.Like{"name": "%" + query + "%"}).
		OrderBy("date", "time", "id"))
}

func (r *repository) ListAll(ctx context.Context) ([]model.Reservation, error) {
	return r.list(ctx, r.qb.Select(reservationColumns...).
		From(reservationTableName).
		OrderBy("date", "time", "id"))
}

// ListBetween returns reservations with from <= date <= to. Dates are stored
// as YYYY-MM-DD text so lexical order is calendar order.
func (r *repository) ListBetween(ctx context.Context, from, to string) ([]model.Reservation, error) {
	return r.list(ctx, r.qb.Select(reservationColumns...).
		From(reservationTableName).
		Where(sq.GtOrEq{"date": from}).
		Where(sq.LtOrEq{"date": to}).
		OrderBy("date", "time", "id"))
}

func (r *repository) list(ctx context.Context, b sq.SelectBuilder) ([]model.Reservation, error) {
	q, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("list", zap.String("query", q), zap.Any("args", args))

	items := make([]model.Reservation, 0)
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, errors.Wrap(err, "select reservations")
	}
	return items, nil
}

func (r *repository) UpdateReservation(ctx context.Context, id int64, in model.ReservationInput) error {
	q, args, err := r.qb.Update(reservationTableName).
		Set("name", in.Name).
		Set("date", in.Date).
		Set("time", in.Time).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errs.ErrDuplicateSlot
		}
		r.log.Error("UpdateReservation", zap.String("q", q), zap.Any("args", args), zap.Error(err))
		return errors.Wrap(err, "update reservation")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// DeleteReservation does not report missing ids.
func (r *repository) DeleteReservation(ctx context.Context, id int64) error {
	q, args, err := r.qb.Delete(reservationTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "delete reservation")
	}
	return nil
}

func (r *repository) HasConflict(ctx context.Context, date, time string, excludeID *int64) (bool, error) {
	b := r.qb.Select("1").
		From(reservationTableName).
		Where(sq.Eq{"date": date, "time": time})
	if excludeID != nil {
		b = b.Where(sq.NotEq{"id": *excludeID})
	}
	q, args, err := b.Limit(1).ToSql()
	if err != nil {
		return false, err
	}
	var one int
	if err := r.db.QueryRowxContext(ctx, q, args...).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, errors.Wrap(err, "conflict check")
	}
	return true, nil
}
