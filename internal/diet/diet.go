package diet

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/careloop/medassist/internal/refdata"
)

// defaultSeed keeps the default recommender reproducible run to run.
const defaultSeed = 1

// ChronicConditions is the fixed list matched against predicted
// condition labels to bias diet selection.
var ChronicConditions = []string{"Diabetes", "Hypertension", "Heart Disease", "Obesity"}

// ChronicHint returns the chronic condition whose name occurs in the
// given label, compared case-insensitively, or "" when none does.
func ChronicHint(label string) string {
	lower := strings.ToLower(label)
	for _, c := range ChronicConditions {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return ""
}

// Chooser selects an index in [0, n). Injectable so tests and
// deployments can pin a deterministic policy.
type Chooser func(n int) int

// SeededChooser returns a chooser backed by a PRNG with a fixed seed.
// The recommender is shared across concurrent sessions and *rand.Rand
// is not goroutine-safe, so calls are serialized here.
func SeededChooser(seed int64) Chooser {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rng.Intn(n)
	}
}

// FirstMatch always picks the first profile. Fully deterministic.
func FirstMatch(int) int { return 0 }

// Recommender selects a diet profile, preferring profiles tagged with
// a matching chronic condition.
type Recommender struct {
	profiles []refdata.DietProfile
	choose   Chooser
}

// Option configures a Recommender.
type Option func(*Recommender)

// WithChooser overrides the selection policy.
func WithChooser(c Chooser) Option {
	return func(r *Recommender) { r.choose = c }
}

// New creates a recommender over the given profiles.
func New(profiles []refdata.DietProfile, opts ...Option) *Recommender {
	r := &Recommender{
		profiles: profiles,
		choose:   SeededChooser(defaultSeed),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recommend picks a profile. When hint is non-empty, profiles whose
// chronic-condition tag contains it (case-insensitive) are preferred;
// if none match, selection falls back to the full table. Returns false
// only when the table is empty.
func (r *Recommender) Recommend(hint string) (refdata.DietProfile, bool) {
	if len(r.profiles) == 0 {
		return refdata.DietProfile{}, false
	}

	pool := r.profiles
	if hint != "" {
		var filtered []refdata.DietProfile
		lower := strings.ToLower(hint)
		for _, p := range r.profiles {
			if strings.Contains(strings.ToLower(p.ChronicCondition), lower) {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}

	return pool[r.choose(len(pool))], true
}
