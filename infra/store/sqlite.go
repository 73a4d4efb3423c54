// Package store provides SQLite-backed persistence for inventory and
// simulation reports.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ombralis/packdispatch/core/inventory"
	"github.com/ombralis/packdispatch/core/model"
)

// SQLiteInventory persists locations and units in a SQLite database. Claim,
// commit and capacity-checked insert each run inside one transaction, which
// gives the atomic critical sections the dispatch and receive paths require.
type SQLiteInventory struct {
	db *sql.DB
}

// NewSQLiteInventory opens or creates the database and ensures schema.
func NewSQLiteInventory(path string) (*SQLiteInventory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; serializing in the pool keeps
	// transactions from failing with SQLITE_BUSY under racing dispatches.
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS storage_locations (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        max_capacity INTEGER NOT NULL
    );
    CREATE TABLE IF NOT EXISTS stored_units (
        id TEXT PRIMARY KEY,
        location_id TEXT NOT NULL REFERENCES storage_locations(id),
        payload TEXT,
        dispatched INTEGER NOT NULL DEFAULT 0,
        claimed INTEGER NOT NULL DEFAULT 0,
        created_at INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_units_undispatched
        ON stored_units(location_id, dispatched, claimed);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	// Claim tickets only live as long as the process that took them. A crash
	// between Claim and CommitDispatch would otherwise strand the unit: still
	// counted against capacity but invisible to every future dispatch.
	if _, err := db.Exec(`UPDATE stored_units SET claimed = 0 WHERE claimed = 1`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteInventory{db: db}, nil
}

func (s *SQLiteInventory) AddLocation(ctx context.Context, loc model.StorageLocation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO storage_locations (id, name, max_capacity) VALUES (?, ?, ?)`,
		loc.ID, loc.Name, loc.MaxCapacity)
	return err
}

func (s *SQLiteInventory) GetLocation(ctx context.Context, id string) (model.StorageLocation, error) {
	var loc model.StorageLocation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, max_capacity FROM storage_locations WHERE id = ?`, id).
		Scan(&loc.ID, &loc.Name, &loc.MaxCapacity)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StorageLocation{}, inventory.ErrLocationNotFound
	}
	return loc, err
}

func (s *SQLiteInventory) ListLocations(ctx context.Context) ([]model.StorageLocation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, max_capacity FROM storage_locations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.StorageLocation
	for rows.Next() {
		var loc model.StorageLocation
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.MaxCapacity); err != nil {
			return nil, err
		}
		res = append(res, loc)
	}
	return res, rows.Err()
}

func (s *SQLiteInventory) ListUnits(ctx context.Context, locationID string) ([]model.StoredUnit, error) {
	if _, err := s.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}
	return s.queryUnits(ctx,
		`SELECT id, location_id, payload, dispatched, claimed, created_at
         FROM stored_units WHERE location_id = ? ORDER BY rowid`, locationID)
}

func (s *SQLiteInventory) FindUndispatched(ctx context.Context, locationID string, limit int) ([]model.StoredUnit, error) {
	q := `SELECT id, location_id, payload, dispatched, claimed, created_at
          FROM stored_units WHERE dispatched = 0 AND claimed = 0`
	args := []any{}
	if locationID != "" {
		q += ` AND location_id = ?`
		args = append(args, locationID)
	}
	q += ` ORDER BY rowid LIMIT ?`
	args = append(args, limit)
	return s.queryUnits(ctx, q, args...)
}

func (s *SQLiteInventory) CountUndispatched(ctx context.Context, locationID string) (int, error) {
	q := `SELECT COUNT(*) FROM stored_units WHERE dispatched = 0`
	args := []any{}
	if locationID != "" {
		q += ` AND location_id = ?`
		args = append(args, locationID)
	}
	var n int
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

func (s *SQLiteInventory) Insert(ctx context.Context, unit model.StoredUnit, enforceCapacity bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var maxCapacity int
	err = tx.QueryRowContext(ctx,
		`SELECT max_capacity FROM storage_locations WHERE id = ?`, unit.LocationID).
		Scan(&maxCapacity)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.ErrLocationNotFound
	}
	if err != nil {
		return err
	}
	if enforceCapacity {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM stored_units WHERE location_id = ? AND dispatched = 0`,
			unit.LocationID).Scan(&n); err != nil {
			return err
		}
		if n >= maxCapacity {
			return &inventory.CapacityExceededError{LocationID: unit.LocationID, Current: n, Max: maxCapacity}
		}
	}
	var payload any
	if len(unit.Payload) > 0 {
		payload = string(unit.Payload)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stored_units (id, location_id, payload, dispatched, claimed, created_at)
         VALUES (?, ?, ?, 0, 0, ?)`,
		unit.ID, unit.LocationID, payload, unit.CreatedAt.UnixNano()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteInventory) Claim(ctx context.Context, locationID string, limit int) ([]model.StoredUnit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	q := `SELECT id, location_id, payload, dispatched, claimed, created_at
          FROM stored_units WHERE dispatched = 0 AND claimed = 0`
	args := []any{}
	if locationID != "" {
		q += ` AND location_id = ?`
		args = append(args, locationID)
	}
	q += ` ORDER BY rowid LIMIT ?`
	args = append(args, limit)

	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	units, err := scanUnits(rows)
	if err != nil {
		return nil, err
	}
	for i := range units {
		if _, err := tx.ExecContext(ctx,
			`UPDATE stored_units SET claimed = 1 WHERE id = ?`, units[i].ID); err != nil {
			return nil, err
		}
		units[i].Claimed = true
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return units, nil
}

func (s *SQLiteInventory) CommitDispatch(ctx context.Context, unitID string) error {
	return s.flip(ctx, unitID)
}

func (s *SQLiteInventory) Release(ctx context.Context, unitID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE stored_units SET claimed = 0 WHERE id = ?`, unitID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return inventory.ErrUnitNotFound
	}
	return nil
}

func (s *SQLiteInventory) MarkDispatched(ctx context.Context, unitID string) error {
	return s.flip(ctx, unitID)
}

// flip transitions dispatched 0 -> 1 exactly once.
func (s *SQLiteInventory) flip(ctx context.Context, unitID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE stored_units SET dispatched = 1, claimed = 0 WHERE id = ? AND dispatched = 0`, unitID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var dispatched int
	err = s.db.QueryRowContext(ctx,
		`SELECT dispatched FROM stored_units WHERE id = ?`, unitID).Scan(&dispatched)
	if errors.Is(err, sql.ErrNoRows) {
		return inventory.ErrUnitNotFound
	}
	if err != nil {
		return err
	}
	if dispatched == 1 {
		return inventory.ErrAlreadyDispatched
	}
	return fmt.Errorf("unit %s in unexpected state", unitID)
}

func (s *SQLiteInventory) queryUnits(ctx context.Context, q string, args ...any) ([]model.StoredUnit, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return scanUnits(rows)
}

func scanUnits(rows *sql.Rows) ([]model.StoredUnit, error) {
	defer func() { _ = rows.Close() }()
	var res []model.StoredUnit
	for rows.Next() {
		var (
			u          model.StoredUnit
			payload    sql.NullString
			dispatched int
			claimed    int
			createdAt  int64
		)
		if err := rows.Scan(&u.ID, &u.LocationID, &payload, &dispatched, &claimed, &createdAt); err != nil {
			return nil, err
		}
		if payload.Valid {
			u.Payload = json.RawMessage(payload.String)
		}
		u.Dispatched = dispatched == 1
		u.Claimed = claimed == 1
		u.CreatedAt = time.Unix(0, createdAt).UTC()
		res = append(res, u)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteInventory) Close() error { return s.db.Close() }
