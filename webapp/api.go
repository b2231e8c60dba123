package webapp

import (
	"context"
	"net/http"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/permission"
	"github.com/ts4z/shortlist/ranking"
	"github.com/ts4z/shortlist/urlpath"
)

// rankMapView is what the client renders a scope from.
type rankMapView struct {
	User        model.UserID            `json:"user"`
	Scope       model.RankScope         `json:"scope"`
	Slots       int                     `json:"slots"`
	Selections  []model.RankedSelection `json:"selections"`
	VisualOrder []model.CandidateID     `json:"visualOrder"`
	Complete    bool                    `json:"complete"`
}

func newRankMapView(user model.UserID, rm *ranking.RankMap) *rankMapView {
	return &rankMapView{
		User:        user,
		Scope:       rm.Scope(),
		Slots:       rm.K(),
		Selections:  rm.Selections(user),
		VisualOrder: rm.VisualOrder(),
		Complete:    rm.Complete(),
	}
}

type candidateRequest struct {
	Candidate model.CandidateID `json:"candidate"`
	Rank      model.Rank        `json:"rank,omitempty"`
}

type reorderRequest struct {
	Order []model.CandidateID `json:"order"`
	From  int                 `json:"from"`
	To    int                 `json:"to"`
}

type reorderResponse struct {
	rankMapView
	// Order is the order after the move, which is what the client shows
	// until it next re-derives VisualOrder.
	Order []model.CandidateID `json:"order"`
}

type answersRequest struct {
	Candidates []model.CandidateID `json:"candidates"`
}

func (app *App) handleListRounds(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	slugs, err := app.rm.ListRounds(ctx)
	if err != nil {
		sendError(w, "list rounds", err)
		return
	}
	sendJSON(w, slugs)
}

func (app *App) handleRound(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	id, err := urlpath.RoundPathValue(r)
	if err != nil {
		sendError(w, "parse url", err)
		return
	}
	rd, err := app.rm.Round(ctx, id)
	if err != nil {
		sendError(w, "fetch round", err)
		return
	}
	sendJSON(w, rd)
}

func (app *App) handleSelections(ctx context.Context, id *permission.Identity, w http.ResponseWriter, r *http.Request) {
	scope, err := urlpath.ScopePathValue(r)
	if err != nil {
		sendError(w, "parse url", err)
		return
	}
	user := actingUser(id, r)
	if user != id.User && !id.Admin {
		sendError(w, "fetch selections", permission.ErrPermissionDenied)
		return
	}
	rm, err := app.rm.RankMap(ctx, user, scope)
	if err != nil {
		sendError(w, "fetch selections", err)
		return
	}
	sendJSON(w, newRankMapView(user, rm))
}

// candidateOp decodes a candidateRequest and runs op for the acting user.
func (app *App) candidateOp(while string, op func(ctx context.Context, user model.UserID, scope model.RankScope, req *candidateRequest) (*ranking.RankMap, error)) func(context.Context, *permission.Identity, http.ResponseWriter, *http.Request) {
	return func(ctx context.Context, id *permission.Identity, w http.ResponseWriter, r *http.Request) {
		scope, err := urlpath.ScopePathValue(r)
		if err != nil {
			sendError(w, "parse url", err)
			return
		}
		req := &candidateRequest{}
		if err := decodeBody(w, r, req); err != nil {
			sendError(w, while, err)
			return
		}
		user := actingUser(id, r)
		rm, err := op(ctx, user, scope, req)
		if err != nil {
			sendError(w, while, err)
			return
		}
		sendJSON(w, newRankMapView(user, rm))
	}
}

func (app *App) handleAssignRank(ctx context.Context, id *permission.Identity, w http.ResponseWriter, r *http.Request) {
	app.candidateOp("assign rank", func(ctx context.Context, user model.UserID, scope model.RankScope, req *candidateRequest) (*ranking.RankMap, error) {
		return app.rm.AssignRank(ctx, user, scope, req.Candidate, req.Rank)
	})(ctx, id, w, r)
}

func (app *App) handleClearRank(ctx context.Context, id *permission.Identity, w http.ResponseWriter, r *http.Request) {
	app.candidateOp("clear rank", func(ctx context.Context, user model.UserID, scope model.RankScope, req *candidateRequest) (*ranking.RankMap, error) {
		return app.rm.ClearRank(ctx, user, scope, req.Candidate)
	})(ctx, id, w, r)
}

func (app *App) handleSelect(ctx context.Context, id *permission.Identity, w http.ResponseWriter, r *http.Request) {
	app.candidateOp("select", func(ctx context.Context, user model.UserID, scope model.RankScope, req *candidateRequest) (*ranking.RankMap, error) {
		return app.rm.Select(ctx, user, scope, req.Candidate)
	})(ctx, id, w, r)
}

func (app *App) handleDeselect(ctx context.Context, id *permission.Identity, w http.ResponseWriter, r *http.Request) {
	app.candidateOp("deselect", func(ctx context.Context, user model.UserID, scope model.RankScope, req *candidateRequest) (*ranking.RankMap, error) {
		return app.rm.Deselect(ctx, user, scope, req.Candidate)
	})(ctx, id, w, r)
}

func (app *App) handleReorder(ctx context.Context, id *permission.Identity, w http.ResponseWriter, r *http.Request) {
	scope, err := urlpath.ScopePathValue(r)
	if err != nil {
		sendError(w, "parse url", err)
		return
	}
	req := &reorderRequest{}
	if err := decodeBody(w, r, req); err != nil {
		sendError(w, "reorder", err)
		return
	}
	user := actingUser(id, r)
	order, rm, err := app.rm.Reorder(ctx, user, scope, req.Order, req.From, req.To)
	if err != nil {
		sendError(w, "reorder", err)
		return
	}
	sendJSON(w, &reorderResponse{rankMapView: *newRankMapView(user, rm), Order: order})
}

func (app *App) handleFinalize(ctx context.Context, id *permission.Identity, w http.ResponseWriter, r *http.Request) {
	rid, err := urlpath.RoundPathValue(r)
	if err != nil {
		sendError(w, "parse url", err)
		return
	}
	user := actingUser(id, r)
	if err := app.rm.Finalize(ctx, user, rid); err != nil {
		sendError(w, "finalize", err)
		return
	}
	sendJSON(w, map[string]any{"user": user, "round": rid, "finalized": true})
}

func (app *App) handleLoadRound(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	rd := &model.Round{}
	if err := decodeBody(w, r, rd); err != nil {
		sendError(w, "load round", err)
		return
	}
	if err := app.rm.LoadRound(ctx, rd); err != nil {
		sendError(w, "load round", err)
		return
	}
	sendJSON(w, &model.RoundSlug{ID: rd.ID, Name: rd.Name})
}

func (app *App) handleRevealAnswers(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	scope, err := urlpath.ScopePathValue(r)
	if err != nil {
		sendError(w, "parse url", err)
		return
	}
	req := &answersRequest{}
	if err := decodeBody(w, r, req); err != nil {
		sendError(w, "reveal answers", err)
		return
	}
	as := model.NewAnswerSet(req.Candidates...)
	if err := app.rm.RevealAnswers(ctx, scope.Round, scope.Category, as); err != nil {
		sendError(w, "reveal answers", err)
		return
	}
	sendJSON(w, map[string]any{"scope": scope, "answers": as.IDs()})
}
