package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
// The whole snapshot is replaced in one transaction per save; position and
// lot ordering is preserved through an explicit ord column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, positions []model.Position) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM position_lots`); err != nil {
		return fmt.Errorf("clear lots: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM positions`); err != nil {
		return fmt.Errorf("clear positions: %w", err)
	}

	for ord, p := range positions {
		_, err := tx.Exec(ctx,
			`INSERT INTO positions (id, ord, kind, display_name, owner_account_ref,
			                        quantity, unit_cost, value, performance, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC, $9::NUMERIC, $10, $11)`,
			p.ID, ord, string(p.Kind), p.DisplayName, p.OwnerAccountRef,
			p.Quantity.String(), p.UnitCost.String(), p.Value.String(), p.Performance.String(),
			p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert position %s: %w", p.ID, err)
		}

		for lotOrd, lot := range p.Transactions {
			_, err := tx.Exec(ctx,
				`INSERT INTO position_lots (id, position_id, ord, date, direction,
				                            quantity, unit_price, total)
				 VALUES ($1, $2, $3, $4, $5, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC)`,
				lot.ID, p.ID, lotOrd, lot.Date, string(lot.Direction),
				lot.Quantity.String(), lot.UnitPrice.String(), lot.Total.String(),
			)
			if err != nil {
				return fmt.Errorf("insert lot %s: %w", lot.ID, err)
			}
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) LoadSnapshot(ctx context.Context) ([]model.Position, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, display_name, owner_account_ref,
		        quantity::TEXT, unit_cost::TEXT, value::TEXT, performance::TEXT,
		        created_at, updated_at
		 FROM positions ORDER BY ord`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := []model.Position{}
	index := make(map[string]int)

	for rows.Next() {
		var p model.Position
		var kind, qty, unitCost, value, performance string

		if err := rows.Scan(&p.ID, &kind, &p.DisplayName, &p.OwnerAccountRef,
			&qty, &unitCost, &value, &performance,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}

		p.Kind = model.Kind(kind)
		p.Quantity, _ = decimal.NewFromString(qty)
		p.UnitCost, _ = decimal.NewFromString(unitCost)
		p.Value, _ = decimal.NewFromString(value)
		p.Performance, _ = decimal.NewFromString(performance)

		index[p.ID] = len(positions)
		positions = append(positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadLots(ctx, positions, index); err != nil {
		return nil, err
	}
	return positions, nil
}

// loadLots attaches transaction histories to the loaded positions.
func (s *PostgresStore) loadLots(ctx context.Context, positions []model.Position, index map[string]int) error {
	rows, err := s.pool.Query(ctx,
		`SELECT id, position_id, date, direction,
		        quantity::TEXT, unit_price::TEXT, total::TEXT
		 FROM position_lots ORDER BY position_id, ord`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var lot model.Lot
		var positionID, direction, qty, unitPrice, total string

		if err := rows.Scan(&lot.ID, &positionID, &lot.Date, &direction,
			&qty, &unitPrice, &total); err != nil {
			return err
		}

		lot.Direction = model.Direction(direction)
		lot.Quantity, _ = decimal.NewFromString(qty)
		lot.UnitPrice, _ = decimal.NewFromString(unitPrice)
		lot.Total, _ = decimal.NewFromString(total)

		if i, ok := index[positionID]; ok {
			positions[i].Transactions = append(positions[i].Transactions, lot)
		}
	}
	return rows.Err()
}

// EnsureSchema creates the snapshot tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS positions (
			id                TEXT PRIMARY KEY,
			ord               INT NOT NULL,
			kind              TEXT NOT NULL,
			display_name      TEXT NOT NULL,
			owner_account_ref TEXT NOT NULL DEFAULT '',
			quantity          NUMERIC NOT NULL DEFAULT 0,
			unit_cost         NUMERIC NOT NULL DEFAULT 0,
			value             NUMERIC NOT NULL DEFAULT 0,
			performance       NUMERIC NOT NULL DEFAULT 0,
			created_at        TIMESTAMPTZ NOT NULL,
			updated_at        TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS position_lots (
			id          TEXT PRIMARY KEY,
			position_id TEXT NOT NULL REFERENCES positions(id) ON DELETE CASCADE,
			ord         INT NOT NULL,
			date        TIMESTAMPTZ NOT NULL,
			direction   TEXT NOT NULL,
			quantity    NUMERIC NOT NULL,
			unit_price  NUMERIC NOT NULL,
			total       NUMERIC NOT NULL
		);
	`)
	return err
}
