package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stellar/go/xdr"

	"governorIndexer/internal/model"
	"governorIndexer/internal/storage"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// Store provides Postgres persistence for governance records.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Migrate applies the embedded schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Acquire checks a connection out of the pool for the duration of one ledger.
func (s *Store) Acquire(ctx context.Context) (storage.Session, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &session{writer: writer{q: conn}, conn: conn}, nil
}

// LoadState returns last_processed_ledger for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint32, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ledger int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ledger FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&ledger); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint32(ledger), true, nil
}

// SaveState upserts last_processed_ledger for a name.
func (s *Store) SaveState(ctx context.Context, name string, ledger uint32) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_ledger, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ledger = EXCLUDED.last_processed_ledger, updated_at = now()
	`, name, int64(ledger))
	return err
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type session struct {
	writer
	conn *pgxpool.Conn
}

func (s *session) Release() {
	s.conn.Release()
}

type writer struct {
	q querier
}

func (w writer) WriteVote(ctx context.Context, vote model.Vote) error {
	row, err := storage.VoteRow(vote)
	if err != nil {
		return err
	}
	_, err = w.q.Exec(ctx, `
		INSERT INTO votes (id, contract_id, proposal_number, voter, support, amount, ledger, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`,
		row.ID,
		row.Contract,
		int64(row.ProposalNumber),
		row.Voter,
		int64(row.Support),
		row.Amount,
		int64(row.Ledger),
	)
	return err
}

func (w writer) CreateProposal(ctx context.Context, proposal model.Proposal) error {
	row, err := storage.ProposalRow(proposal)
	if err != nil {
		return err
	}
	_, err = w.q.Exec(ctx, `
		INSERT INTO proposals (
			contract_id, proposal_number, title, description, action, creator, status, ledger, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 0, $7, now(), now())
	`,
		row.Contract,
		int64(row.ProposalNumber),
		row.Title,
		row.Description,
		row.Action,
		row.Creator,
		int64(row.Ledger),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s/%d: %w", row.Contract, row.ProposalNumber, storage.ErrProposalExists)
	}
	return err
}

func (w writer) UpdateProposalStatus(ctx context.Context, status xdr.ScVal, contract xdr.Hash, proposalNumber xdr.ScVal) error {
	update, err := storage.StatusUpdateRow(status, contract, proposalNumber)
	if err != nil {
		return err
	}
	tag, err := w.q.Exec(ctx, `
		UPDATE proposals SET status = $1, updated_at = now()
		WHERE contract_id = $2 AND proposal_number = $3
	`, int64(update.Status), update.Contract, int64(update.ProposalNumber))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s/%d: %w", update.Contract, update.ProposalNumber, storage.ErrProposalNotFound)
	}
	return nil
}
