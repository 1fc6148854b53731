package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/stellar/go/xdr"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"governorIndexer/internal/model"
	"governorIndexer/internal/storage"
)

//go:embed schema.sql
var schema string

// Store persists governance records in a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: SQLite has a single writer and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate applies the embedded schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Acquire pins the connection for the duration of one ledger.
func (s *Store) Acquire(ctx context.Context) (storage.Session, error) {
	conn, err := s.db.Conn(ctx)
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
	err := s.db.QueryRowContext(ctx, `SELECT last_processed_ledger FROM indexer_state WHERE name = ?`, name).Scan(&ledger)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return uint32(ledger), true, nil
}

// SaveState upserts last_processed_ledger for a name.
func (s *Store) SaveState(ctx context.Context, name string, ledger uint32) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indexer_state (name, last_processed_ledger, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ledger = excluded.last_processed_ledger, updated_at = CURRENT_TIMESTAMP
	`, name, int64(ledger))
	return err
}

// Proposal returns the proposal stored under a key.
func (s *Store) Proposal(ctx context.Context, contract string, number uint32) (model.ProposalRow, bool, error) {
	var row model.ProposalRow
	var num, status, ledger int64
	err := s.db.QueryRowContext(ctx, `
		SELECT contract_id, proposal_number, title, description, action, creator, status, ledger
		FROM proposals
		WHERE contract_id = ? AND proposal_number = ?
	`, contract, int64(number)).Scan(
		&row.Contract, &num, &row.Title, &row.Description, &row.Action, &row.Creator, &status, &ledger,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProposalRow{}, false, nil
	}
	if err != nil {
		return model.ProposalRow{}, false, err
	}
	row.ProposalNumber = uint32(num)
	row.Status = uint32(status)
	row.Ledger = uint32(ledger)
	return row, true, nil
}

// Votes returns the votes for a proposal in write order.
func (s *Store) Votes(ctx context.Context, contract string, number uint32) ([]model.VoteRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, proposal_number, voter, support, amount, ledger
		FROM votes
		WHERE contract_id = ? AND proposal_number = ?
		ORDER BY seq
	`, contract, int64(number))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.VoteRow
	for rows.Next() {
		var row model.VoteRow
		var num, support, ledger int64
		if err := rows.Scan(&row.ID, &row.Contract, &num, &row.Voter, &support, &row.Amount, &ledger); err != nil {
			return nil, err
		}
		row.ProposalNumber = uint32(num)
		row.Support = uint32(support)
		row.Ledger = uint32(ledger)
		out = append(out, row)
	}
	return out, rows.Err()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type session struct {
	writer
	conn *sql.Conn
}

func (s *session) Release() {
	_ = s.conn.Close()
}

type writer struct {
	q querier
}

func (w writer) WriteVote(ctx context.Context, vote model.Vote) error {
	row, err := storage.VoteRow(vote)
	if err != nil {
		return err
	}
	_, err = w.q.ExecContext(ctx, `
		INSERT INTO votes (id, contract_id, proposal_number, voter, support, amount, ledger)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, row.ID, row.Contract, int64(row.ProposalNumber), row.Voter, int64(row.Support), row.Amount, int64(row.Ledger))
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

func (w writer) CreateProposal(ctx context.Context, proposal model.Proposal) error {
	row, err := storage.ProposalRow(proposal)
	if err != nil {
		return err
	}
	_, err = w.q.ExecContext(ctx, `
		INSERT INTO proposals (contract_id, proposal_number, title, description, action, creator, status, ledger)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?)
	`, row.Contract, int64(row.ProposalNumber), row.Title, row.Description, row.Action, row.Creator, int64(row.Ledger))
	if isConstraint(err) {
		return fmt.Errorf("%s/%d: %w", row.Contract, row.ProposalNumber, storage.ErrProposalExists)
	}
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

func (w writer) UpdateProposalStatus(ctx context.Context, status xdr.ScVal, contract xdr.Hash, proposalNumber xdr.ScVal) error {
	update, err := storage.StatusUpdateRow(status, contract, proposalNumber)
	if err != nil {
		return err
	}
	res, err := w.q.ExecContext(ctx, `
		UPDATE proposals SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE contract_id = ? AND proposal_number = ?
	`, int64(update.Status), update.Contract, int64(update.ProposalNumber))
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s/%d: %w", update.Contract, update.ProposalNumber, storage.ErrProposalNotFound)
	}
	return nil
}

func isConstraint(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
