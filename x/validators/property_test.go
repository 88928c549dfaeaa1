package validators

import (
	"math/rand"
	"testing"

	"github.com/iov-one/valman"
)

// TestRandomOperations drives random sequences of registrations,
// removals and session changes and checks the properties that must hold
// after every step.
func TestRandomOperations(t *testing.T) {
	for _, order := range []string{RemovalsFirst, AdditionsFirst} {
		t.Run(order, func(t *testing.T) {
			rnd := rand.New(rand.NewSource(42))
			conf := DefaultConfiguration()
			conf.MinAuthorities = 3
			conf.MergeOrder = order

			pool := newIDs(12)
			f := newFixture(t, conf, pool[:4]...)
			f.withKeys(t, pool[:9]...)

			session := uint32(2)
			for step := 0; step < 400; step++ {
				active, err := f.active.ActiveSet(f.db)
				if err != nil {
					t.Fatalf("step %d: active set: %+v", step, err)
				}
				additions := f.pending(t, Additions)
				removals := f.pending(t, Removals)

				switch op := rnd.Intn(10); {
				case op < 4:
					n := 1 + rnd.Intn(3)
					ids := make([]valman.ValidatorID, n)
					for i := range ids {
						ids[i] = pool[rnd.Intn(len(pool))]
					}
					err := f.register(ids...)
					if err == nil {
						assertRegistered(t, step, ids, additions)
					}
				case op < 8:
					id := pool[rnd.Intn(len(pool))]
					err := f.remove(id)
					projected := ProjectedCount(len(active), len(additions), len(removals))
					if err == nil && projected < int(conf.MinAuthorities) {
						t.Fatalf("step %d: removal accepted with %d validators left", step, projected)
					}
					if err == nil && !valman.ContainsValidator(active, id) {
						t.Fatalf("step %d: removal of a non validator accepted", step)
					}
				default:
					next := f.reconcile(t, session)
					session++
					if len(next) < int(conf.MinAuthorities) {
						t.Fatalf("step %d: set of %d validators", step, len(next))
					}
					if len(valman.DedupValidators(next)) != len(next) {
						t.Fatalf("step %d: duplicated validator in %v", step, next)
					}
					for _, id := range additions {
						if order == RemovalsFirst && !valman.SameValidators(next, active) && !valman.ContainsValidator(next, id) {
							t.Fatalf("step %d: queued validator %s missing", step, id)
						}
					}
					if len(f.pending(t, Additions)) != 0 || len(f.pending(t, Removals)) != 0 {
						t.Fatalf("step %d: queues not drained", step)
					}
				}

				for _, kind := range []QueueKind{Additions, Removals} {
					q := f.pending(t, kind)
					if len(valman.DedupValidators(q)) != len(q) {
						t.Fatalf("step %d: duplicate in %s queue: %v", step, kind, q)
					}
				}
			}
		})
	}
}

func assertRegistered(t *testing.T, step int, ids, before []valman.ValidatorID) {
	t.Helper()
	for i, id := range ids {
		if valman.ContainsValidator(before, id) || valman.ContainsValidator(ids[:i], id) {
			t.Fatalf("step %d: %s registered twice", step, id)
		}
	}
}

func TestProjectedCount(t *testing.T) {
	cases := map[string]struct {
		active, additions, removals int
		want                        int
	}{
		"no queued changes":     {active: 3, want: 2},
		"queued addition":       {active: 2, additions: 1, want: 2},
		"queued removals":       {active: 3, removals: 1, want: 1},
		"saturates at zero":     {active: 1, removals: 4, want: 0},
		"empty set":             {want: 0},
		"additions and removal": {active: 4, additions: 2, removals: 3, want: 2},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := ProjectedCount(tc.active, tc.additions, tc.removals); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}
