package earley

type stateset map[State]struct{}

var exists = struct{}{}

func (set stateset) add(s State) stateset {
	if set == nil {
		set = stateset{}
	}
	set[s] = exists
	return set
}

func (set stateset) contains(s State) bool {
	if set == nil || s.Rule == nil {
		return false
	}
	_, ok := set[s]
	return ok
}

func (set stateset) delete(s State) {
	if set != nil {
		delete(set, s)
	}
}
