package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ombralis/packdispatch/core/model"
	"github.com/ombralis/packdispatch/core/report"
)

// SQLiteReports persists simulation reports in a SQLite database.
type SQLiteReports struct {
	db *sql.DB
}

// NewSQLiteReports opens or creates the database and ensures schema.
func NewSQLiteReports(path string) (*SQLiteReports, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS simulation_reports (
        id TEXT PRIMARY KEY,
        strategy TEXT NOT NULL,
        workload_size INTEGER NOT NULL,
        units_per_round INTEGER NOT NULL,
        delay_per_round REAL NOT NULL,
        total_rounds INTEGER NOT NULL,
        total_time REAL NOT NULL,
        throughput REAL NOT NULL,
        conclusion TEXT NOT NULL,
        created_at INTEGER NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteReports{db: db}, nil
}

func (s *SQLiteReports) Save(ctx context.Context, rep model.SimulationReport) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO simulation_reports
         (id, strategy, workload_size, units_per_round, delay_per_round,
          total_rounds, total_time, throughput, conclusion, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.Strategy, rep.WorkloadSize, rep.UnitsPerRound, rep.DelayPerRoundSeconds,
		rep.TotalRounds, rep.TotalTimeSeconds, rep.Throughput, rep.Conclusion, rep.CreatedAt.UnixNano())
	return err
}

func (s *SQLiteReports) List(ctx context.Context) ([]model.SimulationReport, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, strategy, workload_size, units_per_round, delay_per_round,
                total_rounds, total_time, throughput, conclusion, created_at
         FROM simulation_reports ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.SimulationReport
	for rows.Next() {
		rep, err := scanReport(rows.Scan)
		if err != nil {
			return nil, err
		}
		res = append(res, rep)
	}
	return res, rows.Err()
}

func (s *SQLiteReports) Get(ctx context.Context, id string) (model.SimulationReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, strategy, workload_size, units_per_round, delay_per_round,
                total_rounds, total_time, throughput, conclusion, created_at
         FROM simulation_reports WHERE id = ?`, id)
	rep, err := scanReport(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SimulationReport{}, report.ErrReportNotFound
	}
	return rep, err
}

func scanReport(scan func(...any) error) (model.SimulationReport, error) {
	var (
		rep       model.SimulationReport
		createdAt int64
	)
	err := scan(&rep.ID, &rep.Strategy, &rep.WorkloadSize, &rep.UnitsPerRound,
		&rep.DelayPerRoundSeconds, &rep.TotalRounds, &rep.TotalTimeSeconds,
		&rep.Throughput, &rep.Conclusion, &createdAt)
	if err != nil {
		return model.SimulationReport{}, err
	}
	rep.CreatedAt = time.Unix(0, createdAt).UTC()
	return rep, nil
}

// Close closes the underlying database.
func (s *SQLiteReports) Close() error { return s.db.Close() }
