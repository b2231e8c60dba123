package dbutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ts4z/shortlist/config"
)

func connectWithConnector() (*sql.DB, error) {
	cs := config.CloudSQL()
	if missing := cs.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("cloudsqlconn: unset settings: %v", missing)
	}

	dsn := fmt.Sprintf("user=%s password=%s database=%s", cs.User, cs.Password, cs.Database)
	pgxConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	opts := []cloudsqlconn.Option{cloudsqlconn.WithLazyRefresh()}
	if cs.PrivateIP {
		opts = append(opts, cloudsqlconn.WithDefaultDialOptions(cloudsqlconn.WithPrivateIP()))
	}
	d, err := cloudsqlconn.NewDialer(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	pgxConfig.DialFunc = func(ctx context.Context, network, instance string) (net.Conn, error) {
		return d.Dial(ctx, cs.Instance)
	}
	db, err := sql.Open("pgx", stdlib.RegisterConnConfig(pgxConfig))
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	return db, nil
}

func connectWithPgx() (*sql.DB, error) {
	url := config.DBURL()
	if url == "" {
		return nil, errors.New("database URL is empty")
	}
	log.Printf("connecting to database with pgx")
	return sql.Open("pgx", url)
}

// Connect opens the database named by the configuration, either directly
// through pgx or through the Cloud SQL connector.
func Connect() (*sql.DB, error) {
	factories := map[string]func() (*sql.DB, error){
		"connector": connectWithConnector,
		"pgx":       connectWithPgx,
	}
	factory, ok := factories[config.SQLConnector()]
	if !ok {
		return nil, fmt.Errorf("unknown sql_connector %q", config.SQLConnector())
	}
	db, err := factory()
	if err != nil {
		return nil, err
	}
	if n := config.MaxOpenConns(); n > 0 {
		db.SetMaxOpenConns(n)
	}
	return db, nil
}
