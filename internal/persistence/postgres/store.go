package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/lodge-manager/internal/persistence"
)

const migrateLockID int64 = 50730731

// Store implements persistence.Store using GORM + Postgres.
type Store struct {
	db           *gorm.DB
	rooms        *RoomRepository
	availability *AvailabilityRepository
}

// Open connects to Postgres. Call Migrate before use.
func Open(dsn string) (*Store, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return newStore(db), nil
}

func newStore(db *gorm.DB) *Store {
	return &Store{
		db:           db,
		rooms:        &RoomRepository{db: db},
		availability: &AvailabilityRepository{db: db},
	}
}

// Rooms returns the room repository.
func (s *Store) Rooms() persistence.RoomRepository {
	return s.rooms
}

// Availability returns the availability repository.
func (s *Store) Availability() persistence.AvailabilityRepository {
	return s.availability
}

// Migrate creates or updates the schema. An advisory lock serialises concurrent starters.
func (s *Store) Migrate(ctx context.Context) error {
	return withMigrationLock(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(&RoomModel{}, &AvailabilityModel{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	})
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	return sqlDB.Close()
}

func withMigrationLock(ctx context.Context, db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()

	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db.WithContext(ctx))
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// mapError translates GORM's normalised errors into persistence sentinels.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return persistence.ErrNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", persistence.ErrForeignKey, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated), errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", persistence.ErrConstraintViolation, err)
	}
	return err
}

var _ persistence.Store = (*Store)(nil)
