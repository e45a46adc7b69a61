package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
	"github.com/ecole-ece/vitrine/storage/database/inmem"
	"github.com/ecole-ece/vitrine/storage/database/sqlboiler"
	"github.com/ecole-ece/vitrine/storage/database/sqlx"
)

// Driver names (core.DatabaseConfig.Driver).
const (
	DriverSQLBoiler = "sqlboiler"
	DriverSQLX      = "sqlx"
	DriverInMem     = "inmem"
)

var errUnknownDriver = errors.New("unknown database driver")

// Setup creates the database if needed, connects to it then applies the migrations.
func Setup(ctx context.Context, conf *core.Config) (*sql.DB, error) {
	if err := CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := Open(conf)
	if err != nil {
		return nil, err
	}

	if err = Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenContentRepository returns the content repository of conf.Database.Driver.
// The returned close func releases the underlying connection.
func OpenContentRepository(ctx context.Context, conf *core.Config) (content.Repository, func() error, error) {
	switch conf.Database.Driver {
	case DriverInMem:
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, err
		}
		return inmemdb.NewContentRepository(db), func() error { return nil }, nil

	case DriverSQLBoiler, DriverSQLX, "":
		db, err := Setup(ctx, conf)
		if err != nil {
			return nil, nil, errors.Wrap(err, "setting up database")
		}
		return NewContentRepository(db, conf.Database.Driver), db.Close, nil
	}
	return nil, nil, errors.Wrapf(errUnknownDriver, "%q", conf.Database.Driver)
}

// NewContentRepository returns the SQL content repository of driver (sqlboiler unless sqlx).
func NewContentRepository(db *sql.DB, driver string) content.Repository {
	if driver == DriverSQLX {
		return sqlxrepos.NewContentRepository(db)
	}
	return boiledrepos.NewContentRepository(db)
}
