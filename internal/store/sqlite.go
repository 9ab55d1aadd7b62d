package store

import (
	"context"
	"fmt"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/fieldsense/irrigation-control/internal/irrigation"
)

const schema = `
	CREATE TABLE IF NOT EXISTS irrigation_data (
		id                    TEXT PRIMARY KEY,
		timestamp             TEXT NOT NULL,
		prediction            INTEGER NOT NULL,
		soil_moisture_surface REAL NOT NULL,
		soil_moisture_depth   REAL NOT NULL,
		soil_temp             REAL NOT NULL,
		api_temp              REAL NOT NULL,
		env_moisture_api      REAL NOT NULL,
		api_precip_mm         REAL NOT NULL,
		et0                   REAL NOT NULL,
		api_last_update       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_irrigation_data_time ON irrigation_data(timestamp);

	CREATE TABLE IF NOT EXISTS relay_command (
		slot      INTEGER PRIMARY KEY CHECK (slot = 0),
		command   TEXT NOT NULL,
		timestamp TEXT NOT NULL
	);
`

// SQLiteStore is the durable Store implementation. The decision log only
// ever sees INSERTs; the relay command is one row replaced in place.
type SQLiteStore struct {
	pool *sqlitex.Pool
}

// OpenSQLite opens (and creates if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{PoolSize: 2})
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}

	conn, err := pool.Take(context.Background())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	defer pool.Put(conn)

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &SQLiteStore{pool: pool}, nil
}

func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

func (s *SQLiteStore) AppendDecision(ctx context.Context, d irrigation.Decision) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("append decision: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `INSERT INTO irrigation_data
		(id, timestamp, prediction, soil_moisture_surface, soil_moisture_depth,
		 soil_temp, api_temp, env_moisture_api, api_precip_mm, et0, api_last_update)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				d.ID,
				d.ProducedAt.UTC().Format(time.RFC3339),
				int(d.Class),
				d.Reading.SoilMoistureSurface,
				d.Reading.SoilMoistureDepth,
				d.Reading.SoilTemperature,
				d.Reading.AirTemperature,
				d.Reading.AirHumidity,
				d.Reading.Precipitation,
				d.Reading.ET0,
				d.Reading.WeatherLastUpdate,
			},
		})
	if err != nil {
		return fmt.Errorf("append decision: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LatestDecision(ctx context.Context) (irrigation.Decision, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return irrigation.Decision{}, fmt.Errorf("latest decision: %w", err)
	}
	defer s.pool.Put(conn)

	var decision irrigation.Decision
	found := false

	err = sqlitex.Execute(conn, selectDecisionColumns+` ORDER BY timestamp DESC LIMIT 1`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				d, err := scanDecision(stmt)
				if err != nil {
					return err
				}
				decision = d
				found = true
				return nil
			},
		})
	if err != nil {
		return irrigation.Decision{}, fmt.Errorf("latest decision: %w", err)
	}
	if !found {
		return irrigation.Decision{}, ErrNotFound
	}
	return decision, nil
}

func (s *SQLiteStore) DecisionsInRange(ctx context.Context, from, to time.Time) ([]irrigation.Decision, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("decisions in range: %w", err)
	}
	defer s.pool.Put(conn)

	var decisions []irrigation.Decision
	err = sqlitex.Execute(conn, selectDecisionColumns+` WHERE timestamp >= ? AND timestamp <= ? ORDER BY timestamp ASC`,
		&sqlitex.ExecOptions{
			Args: []any{
				from.UTC().Format(time.RFC3339),
				to.UTC().Format(time.RFC3339),
			},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				d, err := scanDecision(stmt)
				if err != nil {
					return err
				}
				decisions = append(decisions, d)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("decisions in range: %w", err)
	}
	if len(decisions) == 0 {
		return nil, ErrNotFound
	}
	return decisions, nil
}

func (s *SQLiteStore) SetRelayCommand(ctx context.Context, c irrigation.Command) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("set relay command: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT OR REPLACE INTO relay_command (slot, command, timestamp) VALUES (0, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				string(c.State),
				c.IssuedAt.UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return fmt.Errorf("set relay command: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RelayCommand(ctx context.Context) (irrigation.Command, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return irrigation.Command{}, fmt.Errorf("relay command: %w", err)
	}
	defer s.pool.Put(conn)

	var command irrigation.Command
	found := false

	err = sqlitex.Execute(conn, `SELECT command, timestamp FROM relay_command WHERE slot = 0`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				issuedAt, err := time.Parse(time.RFC3339, stmt.ColumnText(1))
				if err != nil {
					return fmt.Errorf("parse relay timestamp: %w", err)
				}
				command = irrigation.Command{
					State:    irrigation.RelayState(stmt.ColumnText(0)),
					IssuedAt: issuedAt,
				}
				found = true
				return nil
			},
		})
	if err != nil {
		return irrigation.Command{}, fmt.Errorf("relay command: %w", err)
	}
	if !found {
		return irrigation.Command{}, ErrNotFound
	}
	return command, nil
}

const selectDecisionColumns = `SELECT id, timestamp, prediction,
	soil_moisture_surface, soil_moisture_depth, soil_temp, api_temp,
	env_moisture_api, api_precip_mm, et0, api_last_update FROM irrigation_data`

func scanDecision(stmt *sqlite.Stmt) (irrigation.Decision, error) {
	producedAt, err := time.Parse(time.RFC3339, stmt.ColumnText(1))
	if err != nil {
		return irrigation.Decision{}, fmt.Errorf("parse decision timestamp: %w", err)
	}

	return irrigation.Decision{
		ID:         stmt.ColumnText(0),
		Class:      irrigation.DecisionClass(stmt.ColumnInt(2)),
		ProducedAt: producedAt,
		Reading: irrigation.Reading{
			GeneratedAt:         producedAt,
			SoilMoistureSurface: stmt.ColumnFloat(3),
			SoilMoistureDepth:   stmt.ColumnFloat(4),
			SoilTemperature:     stmt.ColumnFloat(5),
			AirTemperature:      stmt.ColumnFloat(6),
			AirHumidity:         stmt.ColumnFloat(7),
			Precipitation:       stmt.ColumnFloat(8),
			ET0:                 stmt.ColumnFloat(9),
			WeatherLastUpdate:   stmt.ColumnText(10),
		},
	}, nil
}
