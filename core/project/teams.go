package project

// Plan is the single batch that stores a new team layout.
type Plan struct {
	Write  []Team
	Delete []string
}

func (p Plan) Empty() bool {
	return len(p.Write) == 0 && len(p.Delete) == 0
}

// PlanSave computes how to store incoming teams over the stored ones.
//
// Incoming teams are written in full. Their members are taken out of every other stored team,
// and stored teams left empty that way are deleted. A stored team whose name only differs by case
// from an incoming one is replaced by it. Members keep the last access time stored for the team,
// case variants included.
//
// Any other stored team missing from incoming stays in the store: a team removed in the editor
// is only deleted through DeleteTeam.
func PlanSave(stored, incoming []Team) Plan {
	taken := make(map[string]bool)
	for _, t := range incoming {
		for _, m := range t.Members {
			taken[m.StudentID] = true
		}
	}

	var plan Plan
	for _, t := range incoming {
		if prev, ok := Find(stored, t.Name); ok {
			t = withAccessTimes(t, prev)
		}
		plan.Write = append(plan.Write, t)
	}

	for _, s := range stored {
		if _, ok := findExact(incoming, s.Name); ok {
			continue
		}
		if _, ok := Find(incoming, s.Name); ok {
			plan.Delete = append(plan.Delete, s.Name)
			continue
		}
		left := s.Without(taken)
		switch {
		case len(left.Members) == len(s.Members):
			// untouched
		case len(left.Members) == 0:
			plan.Delete = append(plan.Delete, s.Name)
		default:
			plan.Write = append(plan.Write, left)
		}
	}
	return plan
}

// Find returns the team named name, compared case-insensitively.
func Find(teams []Team, name string) (Team, bool) {
	for _, t := range teams {
		if SameName(t.Name, name) {
			return t, true
		}
	}
	return Team{}, false
}

func findExact(teams []Team, name string) (Team, bool) {
	for _, t := range teams {
		if t.Name == name {
			return t, true
		}
	}
	return Team{}, false
}

func withAccessTimes(t, prev Team) Team {
	out := Team{Name: t.Name, Members: make([]Member, len(t.Members))}
	copy(out.Members, t.Members)
	for i, m := range out.Members {
		if m.LastAccessed != nil {
			continue
		}
		if j := prev.index(m.StudentID); j >= 0 {
			out.Members[i].LastAccessed = prev.Members[j].LastAccessed
		}
	}
	return out
}
