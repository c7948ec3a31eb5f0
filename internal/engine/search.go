package engine

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yossefc/school-scheduler-parallel-sub000/internal/models"
)

const deadlineCheckInterval = 256

// candidate is one complete, hard-feasible assignment found by a worker.
// Versions are unique per worker stream so the holder's ordering is total:
// higher score wins, ties go to the lower version.
type candidate struct {
	score   float64
	version uint64
	picks   [][]int
}

func betterCandidate(a, b *candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.version < b.version
}

// bestHolder is the single aggregation point between search workers. It is
// updated via compare-and-swap on the (score, version) pair; workers never
// share mutable state behind locks.
type bestHolder struct {
	ptr atomic.Pointer[candidate]
}

func (h *bestHolder) offer(c *candidate) bool {
	for {
		cur := h.ptr.Load()
		if cur != nil && !betterCandidate(c, cur) {
			return false
		}
		if h.ptr.CompareAndSwap(cur, c) {
			return true
		}
	}
}

func (h *bestHolder) best() *candidate {
	return h.ptr.Load()
}

type searchOutcome struct {
	status models.SolutionStatus
	best   *candidate
	nodes  int64
}

// searchDriver runs the bounded, parallel-worker search over one immutable
// compiled model. Worker 0 is a deterministic exhaustive searcher that can
// prove optimality or infeasibility; the remaining workers run seeded
// randomized construction for fast feasible candidates. The time budget is
// checked cooperatively between discrete steps.
type searchDriver struct {
	m      *compiledModel
	cfg    Config
	logger *zap.Logger
}

func newSearchDriver(m *compiledModel, cfg Config, logger *zap.Logger) *searchDriver {
	return &searchDriver{m: m, cfg: cfg, logger: logger}
}

func (d *searchDriver) run(ctx context.Context) searchOutcome {
	deadline := time.Now().Add(d.cfg.Budget)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	holder := &bestHolder{}
	var stop atomic.Bool
	var exhausted atomic.Bool
	var nodes atomic.Int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		s := newExhaustiveSearcher(d.m, holder, deadline, &stop, ctx)
		n, complete := s.search()
		nodes.Add(n)
		if complete {
			exhausted.Store(true)
			stop.Store(true)
		}
	}()

	for w := 1; w < d.cfg.Workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			g := newGreedySearcher(d.m, holder, deadline, &stop, ctx, id, d.cfg.Seed+int64(id))
			nodes.Add(g.run())
		}(w)
	}

	wg.Wait()

	best := holder.best()
	outcome := searchOutcome{best: best, nodes: nodes.Load()}
	switch {
	case exhausted.Load() && best != nil:
		outcome.status = models.StatusOptimal
	case exhausted.Load():
		outcome.status = models.StatusInfeasible
	default:
		outcome.status = models.StatusTimeout
	}
	d.logger.Debug("search finished",
		zap.String("status", string(outcome.status)),
		zap.Int64("nodes", outcome.nodes),
		zap.Bool("candidate", best != nil),
	)
	return outcome
}

// --- Exhaustive searcher (worker 0) ---

type exhaustiveSearcher struct {
	m        *compiledModel
	state    *placementState
	eval     *evaluator
	order    []int
	holder   *bestHolder
	deadline time.Time
	stop     *atomic.Bool
	ctx      context.Context

	nodes   int64
	aborted bool
	version uint64
}

func newExhaustiveSearcher(m *compiledModel, holder *bestHolder, deadline time.Time, stop *atomic.Bool, ctx context.Context) *exhaustiveSearcher {
	return &exhaustiveSearcher{
		m:        m,
		state:    newPlacementState(m),
		eval:     &evaluator{m: m},
		order:    constrainedOrder(m, nil),
		holder:   holder,
		deadline: deadline,
		stop:     stop,
		ctx:      ctx,
	}
}

// search enumerates every hard-feasible assignment depth-first. It returns
// the node count and whether the space was fully explored; a full
// exploration is a proof of optimality (or of infeasibility when no
// candidate was ever offered).
func (s *exhaustiveSearcher) search() (int64, bool) {
	s.descend(0, 0)
	return s.nodes, !s.aborted
}

func (s *exhaustiveSearcher) descend(depth, from int) {
	if s.aborted {
		return
	}
	s.nodes++
	if s.nodes%deadlineCheckInterval == 0 {
		if s.stop.Load() || s.ctx.Err() != nil || time.Now().After(s.deadline) {
			s.aborted = true
			return
		}
	}

	if depth == len(s.order) {
		if !s.state.presenceOK() {
			return
		}
		s.version++
		score := s.eval.score(s.state.picks)
		// Cheap peek before paying for a deep copy of the picks.
		if cur := s.holder.best(); cur != nil && !betterCandidate(&candidate{score: score, version: s.version}, cur) {
			return
		}
		s.holder.offer(&candidate{score: score, version: s.version, picks: s.state.snapshot()})
		return
	}

	u := s.m.units[s.order[depth]]
	remaining := u.hours - s.state.placed[u.idx]
	if remaining == 0 {
		s.descend(depth+1, 0)
		return
	}

	// Slots are taken in ascending index order so each hour combination is
	// enumerated exactly once.
	for k := from; k <= len(u.slots)-remaining; k++ {
		slot := u.slots[k]
		if !s.state.canPlace(u, slot) {
			continue
		}
		s.state.place(u, slot)
		s.descend(depth, k+1)
		s.state.unplace(u, slot)
		if s.aborted {
			return
		}
	}
}

// --- Greedy randomized searcher (workers 1..N-1) ---

type greedySearcher struct {
	m        *compiledModel
	eval     *evaluator
	holder   *bestHolder
	deadline time.Time
	stop     *atomic.Bool
	ctx      context.Context
	workerID int
	rng      *rand.Rand

	nodes int64
}

func newGreedySearcher(m *compiledModel, holder *bestHolder, deadline time.Time, stop *atomic.Bool, ctx context.Context, workerID int, seed int64) *greedySearcher {
	return &greedySearcher{
		m:        m,
		eval:     &evaluator{m: m},
		holder:   holder,
		deadline: deadline,
		stop:     stop,
		ctx:      ctx,
		workerID: workerID,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

func (g *greedySearcher) run() int64 {
	var iteration uint64
	for !g.done() {
		iteration++
		state, ok := g.construct()
		if !ok {
			continue
		}
		g.improve(state)
		if !state.complete() || !state.presenceOK() {
			continue
		}
		g.holder.offer(&candidate{
			score:   g.eval.score(state.picks),
			version: uint64(g.workerID)<<40 | iteration,
			picks:   state.snapshot(),
		})
	}
	return g.nodes
}

func (g *greedySearcher) done() bool {
	return g.stop.Load() || g.ctx.Err() != nil || !time.Now().Before(g.deadline)
}

// construct builds one complete assignment greedily: most-constrained units
// first, each hour placed on the eligible slot with the best marginal score
// plus random noise. A unit that cannot be completed aborts the restart.
func (g *greedySearcher) construct() (*placementState, bool) {
	state := newPlacementState(g.m)
	order := constrainedOrder(g.m, g.rng)
	for _, idx := range order {
		u := g.m.units[idx]
		for h := 0; h < u.hours; h++ {
			g.nodes++
			if g.nodes%deadlineCheckInterval == 0 && g.done() {
				return nil, false
			}
			slot := g.pickSlot(state, u)
			if slot < 0 {
				return nil, false
			}
			state.place(u, slot)
		}
	}
	return state, true
}

func (g *greedySearcher) pickSlot(state *placementState, u *schedUnit) int {
	bestSlot, bestValue := -1, 0.0
	for _, slot := range u.slots {
		if !state.canPlace(u, slot) {
			continue
		}
		value := g.marginal(state, u, slot) + g.rng.Float64()*0.5
		if bestSlot < 0 || value > bestValue {
			bestSlot, bestValue = slot, value
		}
	}
	return bestSlot
}

// marginal is a cheap local estimate of the objective delta for one
// placement: adjacency to the unit's own picks, same-day subject grouping,
// and the morning preference.
func (g *greedySearcher) marginal(state *placementState, u *schedUnit, slot int) float64 {
	m := g.m
	value := 0.0
	day := m.slots[slot].Day
	period := m.slots[slot].Period

	for _, picked := range state.picks[u.idx] {
		if m.slots[picked].Day != day {
			continue
		}
		diff := m.slots[picked].Period - period
		if diff == 1 || diff == -1 {
			value += m.weights.Block
		}
		value += m.weights.Group
	}
	if u.demanding && period < m.morningLimit {
		value += m.weights.Morning
	}
	if !u.meeting {
		// Filling a slot adjacent to existing class occupancy avoids gaps.
		for _, c := range u.classes {
			for _, idx := range m.byDay[day] {
				if !state.classOcc[c][idx] {
					continue
				}
				diff := m.slots[idx].Period - period
				if diff == 1 || diff == -1 {
					value += m.weights.Gap / 2
				}
			}
		}
	}
	return value
}

// improve runs a bounded hill-climb of single-assignment moves.
func (g *greedySearcher) improve(state *placementState) {
	current := g.eval.score(state.picks)
	attempts := 8 * len(g.m.units)
	for i := 0; i < attempts; i++ {
		g.nodes++
		if g.nodes%deadlineCheckInterval == 0 && g.done() {
			return
		}
		u := g.m.units[g.rng.Intn(len(g.m.units))]
		if len(state.picks[u.idx]) == 0 || len(u.slots) == 0 {
			continue
		}
		oldSlot := state.picks[u.idx][g.rng.Intn(len(state.picks[u.idx]))]
		newSlot := u.slots[g.rng.Intn(len(u.slots))]
		if newSlot == oldSlot {
			continue
		}
		state.unplace(u, oldSlot)
		if !state.canPlace(u, newSlot) {
			state.place(u, oldSlot)
			continue
		}
		state.place(u, newSlot)
		next := g.eval.score(state.picks)
		if next > current {
			current = next
			continue
		}
		state.unplace(u, newSlot)
		state.place(u, oldSlot)
	}
}

// constrainedOrder sorts units most-constrained-first: fewest eligible slots
// per required hour. A nil rng keeps the order fully deterministic; workers
// with an rng add jitter so their restarts explore different orderings.
func constrainedOrder(m *compiledModel, rng *rand.Rand) []int {
	type ranked struct {
		idx    int
		tight  float64
		jitter float64
	}
	items := make([]ranked, len(m.units))
	for i, u := range m.units {
		tight := float64(len(u.slots))
		if u.hours > 0 {
			tight /= float64(u.hours)
		}
		r := ranked{idx: i, tight: tight}
		if rng != nil {
			r.jitter = rng.Float64()
		}
		items[i] = r
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].tight != items[j].tight {
			return items[i].tight < items[j].tight
		}
		return items[i].jitter < items[j].jitter
	})
	order := make([]int, len(items))
	for i, item := range items {
		order[i] = item.idx
	}
	return order
}
