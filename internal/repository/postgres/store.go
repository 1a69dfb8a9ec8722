package postgres

import (
	"context"
	"database/sql"

	"dossierapi/internal/database"
	"dossierapi/internal/repository"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Entity stores run against it so the same code serves pooled and
// transactional access.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the PostgreSQL implementation of repository.Store. The zero-value
// view runs each call on the pool; WithinTx yields a view bound to one
// transaction.
type Store struct {
	db *sql.DB
	q  querier
}

// NewStore creates a pool-bound Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Dossiers() repository.DossierRepository  { return &DossierStore{q: s.q} }
func (s *Store) Documents() repository.DocumentRepository { return &DocumentStore{q: s.q} }
func (s *Store) Versions() repository.VersionRepository  { return &VersionStore{q: s.q} }
func (s *Store) Files() repository.FileRepository        { return &FileStore{q: s.q} }

// WithinTx runs fn against a transaction-bound view. Nested calls reuse the
// surrounding transaction instead of opening a second one.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if _, ok := s.q.(*sql.Tx); ok {
		return fn(s)
	}
	return database.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&Store{db: s.db, q: tx})
	})
}
