package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/ts4z/shortlist/dep"
	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/permission"
)

// HeaderToContext reads the user set by the authenticating proxy and puts an
// identity in the request context, so not every level of the app has to know
// about headers.  Requests without the header go through anonymous.
type HeaderToContext struct {
	header string
	admins map[model.UserID]bool
	next   http.Handler
}

type IdentityConfig struct {
	// Header names the request header carrying the user id.
	Header string
	// Admins may act on anyone's selections and reveal answers.
	Admins []string
	Next   http.Handler
}

func NewHeaderToContext(cf *IdentityConfig) *HeaderToContext {
	admins := make(map[model.UserID]bool, len(cf.Admins))
	for _, a := range cf.Admins {
		admins[model.UserID(a)] = true
	}
	return &HeaderToContext{
		header: dep.Required(cf.Header),
		admins: admins,
		next:   dep.Required(cf.Next),
	}
}

func (h *HeaderToContext) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user := strings.TrimSpace(r.Header.Get(h.header))
	if user != "" {
		if strings.ContainsAny(user, "/ \t") {
			log.Printf("ignoring malformed %s header %q", h.header, user)
		} else {
			uid := model.UserID(user)
			ctx := permission.IdentityInContext(r.Context(), &permission.Identity{User: uid, Admin: h.admins[uid]})
			r = r.WithContext(ctx)
		}
	}
	h.next.ServeHTTP(w, r)
}
