package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type PostgresInfo struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
}

func (pi PostgresInfo) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", pi.Host, pi.Port, pi.User, pi.Password, pi.Database)
}

type Postgres struct {
	*sqlStore
}

func OpenPostgres(pi PostgresInfo) (*Postgres, error) {
	db, err := sql.Open("postgres", pi.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgres(db)
}

func NewPostgres(db *sql.DB) (*Postgres, error) {
	p := &Postgres{&sqlStore{db: db, rebind: dollarRebind}}
	if err := p.migrate(pgMigration, `CREATE TABLE IF NOT EXISTS migration
("id" SERIAL PRIMARY KEY, "query" TEXT)`); err != nil {
		return &Postgres{}, err
	}

	return p, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
