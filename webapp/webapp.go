package webapp

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/ts4z/shortlist/app/handlers"
	"github.com/ts4z/shortlist/dep"
	"github.com/ts4z/shortlist/he"
	"github.com/ts4z/shortlist/middleware"
	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/permission"
	"github.com/ts4z/shortlist/round"
	"github.com/ts4z/shortlist/varz"
)

var (
	requestsRejected = varz.NewInt("requestsRejected")
	internalErrors   = varz.NewInt("internalErrors")
	errorsByStatus   = varz.NewMap("errorsByStatus")
)

const maxBodyBytes = 1 << 20

type nower interface {
	Now() time.Time
}

// Config holds the configuration for creating a new App.
type Config struct {
	Manager *round.Manager
	Clock   nower

	// IdentityHeader names the header set by the authenticating proxy.
	IdentityHeader string
	AdminUsers     []string
	CORSOrigins    []string

	// ReportMaxAge is how long browsers may keep a report.
	ReportMaxAge time.Duration
}

// App is the JSON API.
type App struct {
	rm    *round.Manager
	clock nower

	reportMaxAge time.Duration

	mux     *http.ServeMux
	handler http.Handler
}

func New(config *Config) *App {
	app := &App{
		rm:           dep.Required(config.Manager),
		clock:        dep.Required(config.Clock),
		reportMaxAge: config.ReportMaxAge,
		mux:          http.NewServeMux(),
	}

	// Stack the handlers together.
	logger := middleware.NewRequestLogger(app.mux, app.clock)
	h2c := middleware.NewHeaderToContext(&middleware.IdentityConfig{
		Header: config.IdentityHeader,
		Admins: config.AdminUsers,
		Next:   logger,
	})
	for _, origin := range config.CORSOrigins {
		log.Printf("CORS allowing origin %s", origin)
	}
	corsMW := cors.New(cors.Options{
		AllowedOrigins:   config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders:   []string{"Content-Type", config.IdentityHeader},
		AllowCredentials: true,
	})
	app.handler = corsMW.Handler(h2c)

	app.InstallHandlers()
	return app
}

// Handler returns the configured HTTP handler.
func (app *App) Handler() http.Handler {
	return app.handler
}

func (app *App) handleFunc(pattern string, handler func(context.Context, http.ResponseWriter, *http.Request)) {
	app.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		handler(r.Context(), w, r)
	})
}

func (app *App) requiringUserHandleFunc(pattern string, handler func(context.Context, *permission.Identity, http.ResponseWriter, *http.Request)) {
	app.handleFunc(pattern, func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		id := permission.IdentityFromContext(ctx)
		if id == nil {
			sendError(w, "authorize", permission.ErrNoUser)
			return
		}
		handler(ctx, id, w, r)
	})
}

func (app *App) requiringAdminHandleFunc(pattern string, handler func(context.Context, http.ResponseWriter, *http.Request)) {
	app.handleFunc(pattern, func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		if !permission.IsAdmin(ctx) {
			err := permission.ErrPermissionDenied
			if permission.IdentityFromContext(ctx) == nil {
				err = permission.ErrNoUser
			}
			sendError(w, "authorize", err)
			return
		}
		handler(ctx, w, r)
	})
}

// reportHandleFunc serves a report that browsers may cache.
func (app *App) reportHandleFunc(pattern string, handler func(context.Context, http.ResponseWriter, *http.Request)) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(r.Context(), w, r)
	})
	app.mux.Handle(pattern, middleware.NewCacheHeaderAdder(h, app.reportMaxAge, false))
}

func sendError(w http.ResponseWriter, while string, err error) {
	ce := classify(err)
	if ce.Code() >= 500 {
		internalErrors.Add(1)
	} else {
		requestsRejected.Add(1)
	}
	varz.AddCode(errorsByStatus, ce.Code())
	he.SendErrorToHTTPClient(w, while, ce)
}

func sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return he.HTTPCodedErrorf(http.StatusBadRequest, "can't decode request: %v", err)
	}
	return nil
}

// actingUser is the user whose selections a request touches: the caller,
// or for admins whoever ?user= names.
func actingUser(id *permission.Identity, r *http.Request) model.UserID {
	if u := r.URL.Query().Get("user"); u != "" {
		return model.UserID(u)
	}
	return id.User
}

// InstallHandlers registers all HTTP routes.
func (app *App) InstallHandlers() {
	app.mux.HandleFunc("GET /robots.txt", handlers.HandleRobotsTXT)

	app.handleFunc("GET /api/rounds", app.handleListRounds)
	app.handleFunc("GET /api/rounds/{round}", app.handleRound)

	app.requiringUserHandleFunc("GET /api/rounds/{round}/categories/{category}/selections", app.handleSelections)
	app.requiringUserHandleFunc("POST /api/rounds/{round}/categories/{category}/rank", app.handleAssignRank)
	app.requiringUserHandleFunc("POST /api/rounds/{round}/categories/{category}/clear", app.handleClearRank)
	app.requiringUserHandleFunc("POST /api/rounds/{round}/categories/{category}/select", app.handleSelect)
	app.requiringUserHandleFunc("POST /api/rounds/{round}/categories/{category}/deselect", app.handleDeselect)
	app.requiringUserHandleFunc("POST /api/rounds/{round}/categories/{category}/reorder", app.handleReorder)
	app.requiringUserHandleFunc("POST /api/rounds/{round}/finalize", app.handleFinalize)

	app.reportHandleFunc("GET /api/rounds/{round}/leaderboard", app.handlePickLeaderboard)
	app.reportHandleFunc("GET /api/rounds/{round}/prizes", app.handlePrizeLeaderboard)
	app.reportHandleFunc("GET /api/rounds/{round}/earnings/{user}", app.handleEarnings)
	app.reportHandleFunc("GET /api/rounds/{round}/preferences", app.handlePreferences)
	app.reportHandleFunc("GET /api/rounds/{round}/stats", app.handleStats)

	app.requiringAdminHandleFunc("PUT /api/rounds", app.handleLoadRound)
	app.requiringAdminHandleFunc("POST /api/rounds/{round}/categories/{category}/answers", app.handleRevealAnswers)
	app.requiringAdminHandleFunc("GET /debug/vars", func(_ context.Context, w http.ResponseWriter, r *http.Request) {
		expvar.Handler().ServeHTTP(w, r)
	})
}

// Wrapper to just return the input context.
func contextualizer(ctx context.Context) func(net.Listener) context.Context {
	return func(_ net.Listener) context.Context {
		return ctx
	}
}

// Serve runs the HTTP server until ctx is done.
func (app *App) Serve(ctx context.Context, listenAddress string) error {
	server := &http.Server{
		Addr:         listenAddress,
		Handler:      app.handler,
		BaseContext:  contextualizer(ctx),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return fmt.Errorf("server exited: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return ctx.Err()
	}
}
