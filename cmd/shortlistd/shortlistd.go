package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ts4z/shortlist/builtins"
	"github.com/ts4z/shortlist/config"
	"github.com/ts4z/shortlist/dbcache"
	"github.com/ts4z/shortlist/dbnotify"
	"github.com/ts4z/shortlist/dbutil"
	"github.com/ts4z/shortlist/permission"
	"github.com/ts4z/shortlist/reportcache"
	"github.com/ts4z/shortlist/round"
	"github.com/ts4z/shortlist/state"
	"github.com/ts4z/shortlist/ts"
	"github.com/ts4z/shortlist/webapp"
)

// newStorage returns the configured storage, and the database handle behind
// it if there is one.
func newStorage(ctx context.Context) (state.Storage, *sql.DB, error) {
	switch config.Storage() {
	case "memory":
		log.Printf("using in-memory storage with the demo round")
		return state.NewMemStorage(builtins.DemoRound()), nil, nil
	case "db":
		db, err := dbutil.Connect()
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			return nil, nil, fmt.Errorf("can't reach database: %w", err)
		}
		return state.NewDBStorageFromDB(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage %q", config.Storage())
	}
}

func newReportCache(ctx context.Context) (reportcache.Cache, error) {
	switch config.ReportCache() {
	case "none":
		return reportcache.Nop{}, nil
	case "lru":
		return reportcache.NewLRU(config.CacheSize(), config.ReportCacheTTL()), nil
	case "redis":
		rs := config.Redis()
		c, err := reportcache.NewRedis(ctx, rs.Addr, rs.Password, rs.DB, config.ReportCacheTTL())
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown report_cache %q", config.ReportCache())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	config.Init()

	clock := ts.NewRealClock()

	unprotectedStorage, db, err := newStorage(ctx)
	if err != nil {
		log.Fatalf("can't configure storage: %v", err)
	}
	defer unprotectedStorage.Close()

	reports, err := newReportCache(ctx)
	if err != nil {
		log.Fatalf("can't configure report cache: %v", err)
	}

	cached := dbcache.NewStorage(config.CacheSize(), config.ReportCacheTTL(), unprotectedStorage)
	storage := permission.NewSelectionGate(cached)

	if db != nil {
		listener, err := dbnotify.NewDBNotifyListener(db,
			dbnotify.NewInvalidator("rounds", cached, reports),
			dbnotify.NewInvalidator("answers", cached, reports),
			dbnotify.NewInvalidator("finalizations", reports))
		if err != nil {
			log.Fatalf("can't set up db notifications: %v", err)
		}
		go listener.ListenForever(ctx)
	}

	rm := round.NewManager(clock, storage, state.NewDefaultPaytableStorage(), reports, config.DefaultPaytable())

	app := webapp.New(&webapp.Config{
		Manager:        rm,
		Clock:          clock,
		IdentityHeader: config.IdentityHeader(),
		AdminUsers:     config.AdminUsers(),
		CORSOrigins:    config.CORSOrigins(),
		ReportMaxAge:   config.ReportCacheTTL(),
	})

	log.Printf("listening on %s", config.ListenAddress())
	if err := app.Serve(ctx, config.ListenAddress()); err != nil && ctx.Err() == nil {
		log.Fatalf("can't serve: %v", err)
	}
	log.Printf("shut down")
}
