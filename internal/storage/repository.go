package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	upsertReadingSQL = `INSERT INTO fng_readings (
        reading_day,
        score,
        classification,
        band,
        synthetic_price
    ) VALUES (
        $1,$2,$3,$4,$5
    )
    ON CONFLICT (reading_day) DO UPDATE
    SET
        score           = EXCLUDED.score,
        classification  = EXCLUDED.classification,
        band            = EXCLUDED.band,
        synthetic_price = EXCLUDED.synthetic_price;`

	listReadingsBetweenSQL = `SELECT
        reading_day,
        score,
        classification,
        band,
        synthetic_price::text,
        created_at
    FROM fng_readings
    WHERE reading_day >= $1
      AND reading_day < $2
    ORDER BY reading_day
    LIMIT $3;`

	listRecentReadingsSQL = `SELECT
        reading_day,
        score,
        classification,
        band,
        synthetic_price::text,
        created_at
    FROM fng_readings
    ORDER BY reading_day DESC
    LIMIT $1;`

	countReadingsSQL = `SELECT COUNT(*) FROM fng_readings;`

	insertAlertSQL = `INSERT INTO band_alerts (
        reading_day,
        score,
        from_band,
        to_band,
        channels
    ) VALUES (
        $1,$2,$3,$4,$5
    )
    ON CONFLICT (reading_day) DO NOTHING
    RETURNING id, reading_day, score, from_band, to_band, channels, created_at;`

	listRecentAlertsSQL = `SELECT
        id,
        reading_day,
        score,
        from_band,
        to_band,
        channels,
        created_at
    FROM band_alerts
    ORDER BY created_at DESC
    LIMIT $1;`

	deleteAlertSQL = `DELETE FROM band_alerts WHERE reading_day = $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// ReadingStore defines operations for archived index readings.
type ReadingStore interface {
	UpsertReadings(ctx context.Context, readings []Reading) error
	ListReadingsBetween(ctx context.Context, from, to time.Time, limit int) ([]Reading, error)
	ListRecentReadings(ctx context.Context, limit int) ([]Reading, error)
	CountReadings(ctx context.Context) (int64, error)
}

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	// InsertAlert returns false when an alert for the same day already exists.
	InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, bool, error)
	// DeleteAlert releases the day's record so a failed send can be retried.
	DeleteAlert(ctx context.Context, day time.Time) error
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to readings and alerts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// a failed unlock is released with the session anyway
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// UpsertReadings persists a batch of readings in one round trip.
func (s *Store) UpsertReadings(ctx context.Context, readings []Reading) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if len(readings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range readings {
		batch.Queue(upsertReadingSQL,
			r.Day,
			r.Score,
			r.Classification,
			r.Band,
			r.SyntheticPrice.StringFixed(2),
		)
	}

	results := pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := range readings {
		if _, execErr := results.Exec(); execErr != nil {
			return fmt.Errorf("upsert reading %s: %w", readings[i].Day.Format("2006-01-02"), execErr)
		}
	}
	return nil
}

// ListReadingsBetween lists readings in [from, to) ordered by day.
func (s *Store) ListReadingsBetween(ctx context.Context, from, to time.Time, limit int) ([]Reading, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listReadingsBetweenSQL, from, to, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list readings between: %w", queryErr)
	}
	return collectReadings(rows)
}

// ListRecentReadings lists the most recent readings, newest first.
func (s *Store) ListRecentReadings(ctx context.Context, limit int) ([]Reading, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentReadingsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent readings: %w", queryErr)
	}
	return collectReadings(rows)
}

// CountReadings counts archived readings.
func (s *Store) CountReadings(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countReadingsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count readings: %w", scanErr)
	}
	return count, nil
}

// InsertAlert persists an alert emission once per day.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertRecord{}, false, err
	}

	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.Day,
		alert.Score,
		alert.FromBand,
		alert.ToBand,
		alert.Channels,
	)

	rec, scanErr := scanAlert(row)
	if errors.Is(scanErr, pgx.ErrNoRows) {
		return AlertRecord{}, false, nil
	}
	if scanErr != nil {
		return AlertRecord{}, false, fmt.Errorf("insert alert: %w", scanErr)
	}
	return rec, true, nil
}

// DeleteAlert removes the alert record for day.
func (s *Store) DeleteAlert(ctx context.Context, day time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteAlertSQL, day); execErr != nil {
		return fmt.Errorf("delete alert: %w", execErr)
	}
	return nil
}

// ListRecentAlerts lists most recent alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		rec, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

func scanAlert(row pgx.Row) (AlertRecord, error) {
	var rec AlertRecord
	err := row.Scan(
		&rec.ID,
		&rec.Day,
		&rec.Score,
		&rec.FromBand,
		&rec.ToBand,
		&rec.Channels,
		&rec.CreatedAt,
	)
	return rec, err
}

func collectReadings(rows pgx.Rows) ([]Reading, error) {
	defer rows.Close()

	readings := make([]Reading, 0)
	for rows.Next() {
		reading, scanErr := scanReading(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		readings = append(readings, reading)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return readings, nil
}

func scanReading(rows pgx.Rows) (Reading, error) {
	var (
		r        Reading
		priceStr string
	)
	if err := rows.Scan(
		&r.Day,
		&r.Score,
		&r.Classification,
		&r.Band,
		&priceStr,
		&r.CreatedAt,
	); err != nil {
		return Reading{}, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return Reading{}, fmt.Errorf("parse synthetic price: %w", err)
	}
	r.SyntheticPrice = price
	return r, nil
}

var (
	_ ReadingStore   = (*Store)(nil)
	_ AlertStore     = (*Store)(nil)
	_ AdvisoryLocker = (*Store)(nil)
)
