package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/hedgeshield/riskdesk/internal/model"
)

//go:embed schema.sql
var schema string

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateContract(ctx context.Context, c *model.ContractRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO contracts (id, company, base_ccy, quote_ccy, notional, due_date, status, created_at)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6, $7, $8)`,
		c.ID, c.Company, c.BaseCcy, c.QuoteCcy,
		c.Notional.String(), c.DueDate, c.Status, c.CreatedAt,
	)
	return err
}

const contractColumns = `id, company, base_ccy, quote_ccy, notional::TEXT, due_date, status, created_at`

func (s *PostgresStore) GetContract(ctx context.Context, company, id string) (*model.ContractRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE id = $1 AND company = $2`, id, company)

	c, err := scanContract(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("contract %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get contract %s: %w", id, err)
	}
	return &c, nil
}

func (s *PostgresStore) ListContracts(ctx context.Context, company string) ([]model.ContractRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE company = $1 ORDER BY created_at DESC`, company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contracts := []model.ContractRecord{}
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (s *PostgresStore) InsertOrder(ctx context.Context, o *model.OrderRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO orders (id, company, contract_id, side, executed_price, scenario_pct, created_at)
		 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6::NUMERIC, $7)`,
		o.ID, o.Company, o.ContractID, string(o.Side),
		o.ExecutedPrice.String(), o.ScenarioPct.String(), o.CreatedAt,
	)
	return err
}

func (s *PostgresStore) ListOrders(ctx context.Context, company string) ([]model.OrderEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT o.id, o.company, o.contract_id, o.side,
		        o.executed_price::TEXT, o.scenario_pct::TEXT, o.created_at,
		        c.base_ccy || '/' || c.quote_ccy AS pair
		 FROM orders o
		 JOIN contracts c ON c.id = o.contract_id
		 WHERE o.company = $1
		 ORDER BY o.created_at DESC
		 LIMIT $2`, company, OrdersLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []model.OrderEntry{}
	for rows.Next() {
		var e model.OrderEntry
		var side, priceS, pctS string
		if err := rows.Scan(&e.ID, &e.Company, &e.ContractID, &side,
			&priceS, &pctS, &e.CreatedAt, &e.Pair); err != nil {
			return nil, err
		}
		e.Side = model.Side(side)
		e.ExecutedPrice, _ = decimal.NewFromString(priceS)
		e.ScenarioPct, _ = decimal.NewFromString(pctS)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Portfolio(ctx context.Context, company string) ([]model.PortfolioRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT base_ccy || '/' || quote_ccy AS pair,
		        COUNT(*)::INT AS count,
		        SUM(notional)::TEXT AS total_notional
		 FROM contracts
		 WHERE company = $1
		 GROUP BY base_ccy, quote_ccy
		 ORDER BY SUM(notional) DESC, pair`, company)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []model.PortfolioRow{}
	for rows.Next() {
		var r model.PortfolioRow
		var (
			count  int
			totalS string
		)
		if err := rows.Scan(&r.Pair, &count, &totalS); err != nil {
			return nil, err
		}
		r.Count = model.Int(count)
		total, _ := decimal.NewFromString(totalS)
		r.TotalNotional = model.Num(total)
		result = append(result, r)
	}
	return result, rows.Err()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func scanContract(row pgx.Row) (model.ContractRecord, error) {
	var c model.ContractRecord
	var notionalS string
	if err := row.Scan(&c.ID, &c.Company, &c.BaseCcy, &c.QuoteCcy,
		&notionalS, &c.DueDate, &c.Status, &c.CreatedAt); err != nil {
		return c, err
	}
	c.Notional, _ = decimal.NewFromString(notionalS)
	return c, nil
}
