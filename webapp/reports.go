package webapp

import (
	"context"
	"net/http"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/report"
	"github.com/ts4z/shortlist/urlpath"
)

// reportHandler serves whatever build makes for the round in the url.
func reportHandler[T any](while string, build func(context.Context, model.RoundID) (*T, error)) func(context.Context, http.ResponseWriter, *http.Request) {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		id, err := urlpath.RoundPathValue(r)
		if err != nil {
			sendError(w, "parse url", err)
			return
		}
		rep, err := build(ctx, id)
		if err != nil {
			sendError(w, while, err)
			return
		}
		sendJSON(w, rep)
	}
}

func (app *App) handlePickLeaderboard(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	reportHandler("build leaderboard", app.rm.PickLeaderboard)(ctx, w, r)
}

func (app *App) handlePrizeLeaderboard(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	reportHandler("build prize leaderboard", app.rm.PrizeLeaderboard)(ctx, w, r)
}

func (app *App) handleEarnings(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	user := model.UserID(r.PathValue("user"))
	reportHandler("build earnings", func(ctx context.Context, id model.RoundID) (*report.UserEarnings, error) {
		return app.rm.Earnings(ctx, id, user)
	})(ctx, w, r)
}

func (app *App) handlePreferences(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	reportHandler("build preferences", app.rm.Preferences)(ctx, w, r)
}

func (app *App) handleStats(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	reportHandler("build stats", app.rm.Stats)(ctx, w, r)
}
