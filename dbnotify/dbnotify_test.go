package dbnotify

import (
	"context"
	"reflect"
	"testing"

	"github.com/ts4z/shortlist/model"
)

type recorder struct {
	rounds []model.RoundID
}

func (r *recorder) CacheInvalidate(_ context.Context, round model.RoundID) {
	r.rounds = append(r.rounds, round)
}

func TestDispatch(t *testing.T) {
	answers, reports := &recorder{}, &recorder{}
	l, err := NewDBNotifyListener(nil,
		NewInvalidator("answers", answers, reports),
		NewInvalidator("finalizations", reports))
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	l.Dispatch(ctx, &NotificationEvent{Table: "answers", Round: "2025"})
	l.Dispatch(ctx, &NotificationEvent{Table: "finalizations", Round: "2026"})
	l.Dispatch(ctx, &NotificationEvent{Table: "rounds", Round: "2027"})

	if want := []model.RoundID{"2025"}; !reflect.DeepEqual(answers.rounds, want) {
		t.Errorf("answer cache invalidated for %v, want %v", answers.rounds, want)
	}
	if want := []model.RoundID{"2025", "2026"}; !reflect.DeepEqual(reports.rounds, want) {
		t.Errorf("report cache invalidated for %v, want %v", reports.rounds, want)
	}
}

func TestDuplicateConsumer(t *testing.T) {
	if _, err := NewDBNotifyListener(nil, NewInvalidator("answers"), NewInvalidator("answers")); err == nil {
		t.Error("two consumers for one table were accepted")
	}
}
