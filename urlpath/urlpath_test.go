package urlpath

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ts4z/shortlist/he"
	"github.com/ts4z/shortlist/model"
)

func TestScopePathValue(t *testing.T) {
	tests := []struct {
		path     string
		want     model.RankScope
		wantCode int
	}{
		{"/r/demo/c/2", model.RankScope{Round: "demo", Category: 2}, 0},
		{"/r/demo/c/picture", model.RankScope{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		mux := http.NewServeMux()
		var got model.RankScope
		var err error
		mux.HandleFunc("/r/{round}/c/{category}", func(w http.ResponseWriter, r *http.Request) {
			got, err = ScopePathValue(r)
		})
		mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))
		if tt.wantCode != 0 {
			if he.Code(err) != tt.wantCode {
				t.Errorf("%s: error %v, want code %d", tt.path, err, tt.wantCode)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: got %v, %v; want %v", tt.path, got, err, tt.want)
		}
	}
}
