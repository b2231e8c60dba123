package report

import (
	"time"

	"github.com/ts4z/shortlist/model"
	"github.com/ts4z/shortlist/preference"
)

type PreferenceEntry struct {
	preference.Standing
	Name string `json:"name"`
}

type PreferenceReport struct {
	Round       model.RoundID     `json:"round"`
	Users       int               `json:"users"`
	Entries     []PreferenceEntry `json:"entries"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// BuildPreferences totals the top lists of finalized users.  It doesn't
// depend on any answers.
func BuildPreferences(s *Snapshot) (*PreferenceReport, error) {
	top, err := s.topList()
	if err != nil {
		return nil, err
	}
	stats := preference.Aggregate(top.PoolIDs(), top.Slots, s.topListPicks(top))
	standings := preference.Standings(stats)
	rep := &PreferenceReport{
		Round:       s.Round.ID,
		Users:       len(s.Users),
		Entries:     make([]PreferenceEntry, len(standings)),
		GeneratedAt: s.AsOf,
	}
	for i, st := range standings {
		rep.Entries[i] = PreferenceEntry{Standing: st, Name: candidateName(top, st.Candidate)}
	}
	return rep, nil
}
