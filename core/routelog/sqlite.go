package routelog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS routes (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	ts              INTEGER NOT NULL,
	request_id      TEXT NOT NULL,
	channel         TEXT NOT NULL,
	vehicle         TEXT NOT NULL,
	source          INTEGER NOT NULL,
	target          INTEGER NOT NULL,
	stops           INTEGER NOT NULL,
	parks           TEXT NOT NULL,
	length_m        REAL NOT NULL,
	travel_time_s   REAL NOT NULL,
	charging_time_s REAL NOT NULL,
	consumption_kwh REAL NOT NULL,
	remaining_kwh   REAL NOT NULL,
	fail            INTEGER NOT NULL,
	duration_ms     REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS routes_ts ON routes (ts);`

const sqliteColumns = `ts, request_id, channel, vehicle, source, target, stops, parks,
	length_m, travel_time_s, charging_time_s, consumption_kwh, remaining_kwh, fail, duration_ms`

// SQLiteStore keeps one row per planned route.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, errors.Join(fmt.Errorf("create schema: %w", err), db.Close())
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	parks, err := json.Marshal(rec.Parks)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO routes (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.UnixNano(), rec.RequestID, rec.Channel, rec.Vehicle, rec.Source, rec.Target,
		rec.Stops, string(parks), rec.LengthMeters, rec.TravelTimeSec, rec.ChargingTimeSec,
		rec.ConsumptionKWh, rec.RemainingKWh, rec.Fail, rec.DurationMs)
	return err
}

// Query returns the records matching q, oldest first. With a Limit the
// newest rows are selected.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if !q.Start.IsZero() {
		where = append(where, "ts >= ?")
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		where = append(where, "ts <= ?")
		args = append(args, q.End.UnixNano())
	}
	if q.Vehicle != "" {
		where = append(where, "vehicle = ?")
		args = append(args, q.Vehicle)
	}
	if q.Fail != nil {
		where = append(where, "fail = ?")
		args = append(args, *q.Fail)
	}
	stmt := `SELECT ` + sqliteColumns + ` FROM routes`
	if len(where) > 0 {
		stmt += ` WHERE ` + strings.Join(where, " AND ")
	}
	stmt += ` ORDER BY ts DESC, id DESC`
	if q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var (
			r     Record
			ts    int64
			parks string
		)
		if err := rows.Scan(&ts, &r.RequestID, &r.Channel, &r.Vehicle, &r.Source, &r.Target, &r.Stops, &parks,
			&r.LengthMeters, &r.TravelTimeSec, &r.ChargingTimeSec, &r.ConsumptionKWh, &r.RemainingKWh,
			&r.Fail, &r.DurationMs); err != nil {
			return nil, err
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		if err := json.Unmarshal([]byte(parks), &r.Parks); err != nil {
			return nil, fmt.Errorf("route %s parks: %w", r.RequestID, err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(res)
	return res, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
