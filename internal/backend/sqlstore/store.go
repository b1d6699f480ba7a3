// Package sqlstore implements the backend facade on a database the
// application owns. SQLite serves local development and tests, Postgres a
// self-hosted deployment. Authentication uses local accounts and access
// tokens signed with the application secret.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/db"
)

const (
	defaultAccessTTL  = time.Hour
	defaultRefreshTTL = 30 * 24 * time.Hour
)

var errMissingSecret = errors.New("sqlstore: signing secret is required")

type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Store struct {
	backend.Broadcaster

	database   *db.DB
	gorm       *gorm.DB
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

var _ backend.Client = (*Store)(nil)

func New(database *db.DB, cfg Config) (*Store, error) {
	if database == nil || database.Gorm == nil {
		return nil, errors.New("sqlstore: database is required")
	}
	if cfg.Secret == "" {
		return nil, errMissingSecret
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = defaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = defaultRefreshTTL
	}

	return &Store{
		database:   database,
		gorm:       database.Gorm,
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}, nil
}

func (s *Store) Close() error {
	return s.database.Close()
}

func (s *Store) Select(ctx context.Context, q backend.Query, dst any) error {
	if err := s.scoped(ctx, q).Find(dst).Error; err != nil {
		return s.fail(ctx, "select", q.Collection, err)
	}
	return nil
}

func (s *Store) SelectSingle(ctx context.Context, q backend.Query, dst any) error {
	var count int64
	if err := s.scoped(ctx, q).Count(&count).Error; err != nil {
		return s.fail(ctx, "select_single", q.Collection, err)
	}
	switch {
	case count == 0:
		return &backend.Error{
			Op:         "select_single",
			Collection: q.Collection,
			Status:     http.StatusNotAcceptable,
			Message:    "no rows returned",
			Err:        backend.ErrNotFound,
		}
	case count > 1:
		return &backend.Error{
			Op:         "select_single",
			Collection: q.Collection,
			Status:     http.StatusNotAcceptable,
			Message:    fmt.Sprintf("%d rows returned", count),
			Err:        backend.ErrMultipleRows,
		}
	}

	if err := s.scoped(ctx, q).Take(dst).Error; err != nil {
		return s.fail(ctx, "select_single", q.Collection, err)
	}
	return nil
}

type idAssigner interface {
	AssignID(id string)
}

type ownedRecord interface {
	OwnerID() string
}

func (s *Store) Insert(ctx context.Context, collection backend.Collection, record any) error {
	if err := s.authorizeWrite(ctx, "insert", collection, record); err != nil {
		return err
	}
	if assigner, ok := record.(idAssigner); ok {
		assigner.AssignID(uuid.NewString())
	}

	if err := s.gorm.WithContext(ctx).Table(string(collection)).Create(record).Error; err != nil {
		return s.fail(ctx, "insert", collection, err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, collection backend.Collection, record any) error {
	if err := s.authorizeWrite(ctx, "upsert", collection, record); err != nil {
		return err
	}
	if assigner, ok := record.(idAssigner); ok {
		assigner.AssignID(uuid.NewString())
	}

	conflict, err := s.mergeClause(ctx, record)
	if err != nil {
		return s.fail(ctx, "upsert", collection, err)
	}

	err = s.gorm.WithContext(ctx).
		Table(string(collection)).
		Clauses(conflict).
		Create(record).Error
	if err != nil {
		return s.fail(ctx, "upsert", collection, err)
	}
	return nil
}

// mergeClause updates only the columns record carries on conflict. Nil
// pointer fields were not sent and keep their stored value, as the hosted
// backend's merge-duplicates resolution does.
func (s *Store) mergeClause(ctx context.Context, record any) (clause.OnConflict, error) {
	stmt := &gorm.Statement{DB: s.gorm}
	if err := stmt.Parse(record); err != nil {
		return clause.OnConflict{}, err
	}

	value := reflect.Indirect(reflect.ValueOf(record))
	var columns []string
	for _, field := range stmt.Schema.Fields {
		if field.DBName == "" || field.PrimaryKey || field.AutoCreateTime > 0 {
			continue
		}
		if _, zero := field.ValueOf(ctx, value); zero && field.FieldType.Kind() == reflect.Ptr {
			continue
		}
		columns = append(columns, field.DBName)
	}

	conflict := clause.OnConflict{}
	for _, field := range stmt.Schema.PrimaryFields {
		conflict.Columns = append(conflict.Columns, clause.Column{Name: field.DBName})
	}
	if len(columns) == 0 {
		conflict.DoNothing = true
		return conflict, nil
	}
	conflict.DoUpdates = clause.AssignmentColumns(columns)
	return conflict, nil
}

// authorizeWrite mirrors the hosted row-level policies: writes need a valid
// access token whose subject owns the record.
func (s *Store) authorizeWrite(ctx context.Context, op string, collection backend.Collection, record any) error {
	token := backend.AccessTokenFromContext(ctx)
	identity, err := s.GetSession(ctx, token)
	if err != nil {
		return &backend.Error{
			Op:         op,
			Collection: collection,
			Status:     http.StatusUnauthorized,
			Code:       "42501",
			Message:    "permission denied: no authenticated user",
		}
	}

	owned, ok := record.(ownedRecord)
	if ok && owned.OwnerID() != identity.ID {
		return &backend.Error{
			Op:         op,
			Collection: collection,
			Status:     http.StatusForbidden,
			Code:       "42501",
			Message:    "new row violates row-level security policy",
		}
	}
	return nil
}

func (s *Store) scoped(ctx context.Context, q backend.Query) *gorm.DB {
	tx := s.gorm.WithContext(ctx).Table(string(q.Collection))
	for _, filter := range q.Filters {
		column := clause.Column{Name: string(filter.Column)}
		switch filter.Op {
		case backend.OpEq:
			value := ""
			if len(filter.Values) > 0 {
				value = filter.Values[0]
			}
			tx = tx.Where(clause.Eq{Column: column, Value: value})
		case backend.OpIn:
			values := make([]any, len(filter.Values))
			for i, value := range filter.Values {
				values[i] = value
			}
			tx = tx.Where(clause.IN{Column: column, Values: values})
		}
	}
	if q.Order != nil {
		tx = tx.Order(clause.OrderByColumn{
			Column: clause.Column{Name: string(q.Order.Column)},
			Desc:   q.Order.Direction == backend.Descending,
		})
	}
	return tx
}

func (s *Store) fail(ctx context.Context, op string, collection backend.Collection, err error) error {
	backendErr := &backend.Error{Op: op, Collection: collection, Err: err}
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		backendErr.Status = http.StatusConflict
		backendErr.Code = "23505"
		backendErr.Message = "duplicate key value violates unique constraint"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		backendErr.Status = http.StatusConflict
		backendErr.Code = "23503"
		backendErr.Message = "insert or update violates foreign key constraint"
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		backendErr.Status = http.StatusBadRequest
		backendErr.Code = "23514"
		backendErr.Message = "new row violates check constraint"
	}

	log.Ctx(ctx).Debug().
		Err(err).
		Str("op", op).
		Str("collection", string(collection)).
		Msg("Store operation failed")
	return backendErr
}
