package engine

// placementState is the mutable working state of one search worker: current
// picks plus teacher/class occupancy. Each worker owns its own state; the
// compiled model stays read-only.
type placementState struct {
	m          *compiledModel
	picks      [][]int
	teacherOcc map[string][]bool
	classOcc   map[string][]bool
	classAt    map[string][]string // subject occupying each slot, per class
	placed     []int               // hours placed per unit
}

func newPlacementState(m *compiledModel) *placementState {
	p := &placementState{
		m:          m,
		picks:      make([][]int, len(m.units)),
		teacherOcc: make(map[string][]bool, len(m.teacherUnits)),
		classOcc:   make(map[string][]bool, len(m.classUnits)),
		classAt:    make(map[string][]string, len(m.classUnits)),
		placed:     make([]int, len(m.units)),
	}
	for t := range m.teacherUnits {
		p.teacherOcc[t] = make([]bool, len(m.slots))
	}
	for c := range m.classUnits {
		p.classOcc[c] = make([]bool, len(m.slots))
		p.classAt[c] = make([]string, len(m.slots))
	}
	return p
}

// canPlace checks eligibility, double-booking and the consecutive-run limit
// for assigning one more hour of the unit to the slot.
func (p *placementState) canPlace(u *schedUnit, slot int) bool {
	if !u.eligible[slot] {
		return false
	}
	for _, t := range u.teachers {
		if p.teacherOcc[t][slot] {
			return false
		}
	}
	if !u.meeting {
		for _, c := range u.classes {
			if p.classOcc[c][slot] {
				return false
			}
		}
		for _, c := range u.classes {
			if limit := p.m.maxRunFor(u.subject, c); limit > 0 {
				if p.runLengthWith(c, slot, u.subject) > limit {
					return false
				}
			}
		}
	}
	return true
}

// runLengthWith computes the consecutive same-subject run the class would
// have on the slot's day if the subject were placed there.
func (p *placementState) runLengthWith(class string, slot int, subject string) int {
	day := p.m.slots[slot].Day
	idxs := p.m.byDay[day]
	pos := -1
	for i, idx := range idxs {
		if idx == slot {
			pos = i
			break
		}
	}
	if pos < 0 {
		return 1
	}
	run := 1
	period := p.m.slots[slot].Period
	for i := pos - 1; i >= 0; i-- {
		idx := idxs[i]
		if p.m.slots[idx].Period != period-(pos-i) || p.classAt[class][idx] != subject || subject == "" {
			break
		}
		run++
	}
	for i := pos + 1; i < len(idxs); i++ {
		idx := idxs[i]
		if p.m.slots[idx].Period != period+(i-pos) || p.classAt[class][idx] != subject || subject == "" {
			break
		}
		run++
	}
	return run
}

func (p *placementState) place(u *schedUnit, slot int) {
	p.picks[u.idx] = append(p.picks[u.idx], slot)
	p.placed[u.idx]++
	for _, t := range u.teachers {
		p.teacherOcc[t][slot] = true
	}
	if !u.meeting {
		for _, c := range u.classes {
			p.classOcc[c][slot] = true
			p.classAt[c][slot] = u.subject
		}
	}
}

func (p *placementState) unplace(u *schedUnit, slot int) {
	picks := p.picks[u.idx]
	for i := len(picks) - 1; i >= 0; i-- {
		if picks[i] == slot {
			p.picks[u.idx] = append(picks[:i], picks[i+1:]...)
			break
		}
	}
	p.placed[u.idx]--
	for _, t := range u.teachers {
		p.teacherOcc[t][slot] = false
	}
	if !u.meeting {
		for _, c := range u.classes {
			p.classOcc[c][slot] = false
			p.classAt[c][slot] = ""
		}
	}
}

// presenceOK verifies the mandatory-presence rules on a complete assignment:
// on the designated day a configured fraction of tagged teachers must have at
// least one assignment, and tagged classes must not be fully scheduled before
// the configured period.
func (p *placementState) presenceOK() bool {
	for _, rule := range p.m.presence {
		idxs := p.m.byDay[rule.day]
		if len(rule.teachers) > 0 && rule.fraction > 0 {
			present := 0
			for _, t := range rule.teachers {
				occ, ok := p.teacherOcc[t]
				if !ok {
					continue
				}
				for _, idx := range idxs {
					if occ[idx] {
						present++
						break
					}
				}
			}
			if float64(present) < rule.fraction*float64(len(rule.teachers)) {
				return false
			}
		}
		for _, c := range rule.classes {
			occ, ok := p.classOcc[c]
			if !ok {
				continue
			}
			last, any := -1, false
			for _, idx := range idxs {
				if occ[idx] {
					any = true
					if p.m.slots[idx].Period > last {
						last = p.m.slots[idx].Period
					}
				}
			}
			if any && last < rule.minLast {
				return false
			}
		}
	}
	return true
}

// snapshot deep-copies the current picks for handing off to the holder.
func (p *placementState) snapshot() [][]int {
	out := make([][]int, len(p.picks))
	for i, slots := range p.picks {
		out[i] = append([]int(nil), slots...)
	}
	return out
}

func (p *placementState) complete() bool {
	for i, u := range p.m.units {
		if p.placed[i] != u.hours {
			return false
		}
	}
	return true
}
