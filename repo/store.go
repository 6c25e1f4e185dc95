package repo

import (
	"github.com/Skryldev/userdb/db"
)

// Store is a UserRepository that owns its database handle for its whole
// lifetime. There is no reconnect logic; Close releases the handle.
type Store struct {
	UserRepository
	db *db.DB
}

// Connect opens the database described by conn (see db.ConnectionConfig.Open
// for how cfg is applied) and returns a repository owning the handle.
// Connect failures are returned as *db.ConnectionError.
func Connect(conn db.ConnectionConfig, cfg db.Config, opts ...Option) (*Store, error) {
	d, err := conn.Open(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{UserRepository: NewUserRepo(d, opts...), db: d}, nil
}

// DB returns the owned handle.
func (s *Store) DB() *db.DB { return s.db }

// Close closes the owned handle.
func (s *Store) Close() error { return s.db.Close() }
