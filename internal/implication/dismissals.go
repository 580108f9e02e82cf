package implication

// Dismissals is the set of implication ids a session has hidden. It filters
// what is shown and never feeds back into evaluation.
type Dismissals map[string]struct{}

func NewDismissals(ids ...string) Dismissals {
	d := make(Dismissals, len(ids))
	for _, id := range ids {
		d.Dismiss(id)
	}
	return d
}

func (d Dismissals) Dismiss(id string) {
	if id == "" {
		return
	}
	d[id] = struct{}{}
}

func (d Dismissals) Restore(id string) {
	delete(d, id)
}

func (d Dismissals) Has(id string) bool {
	_, ok := d[id]
	return ok
}

// Visible returns the implications not dismissed, leaving items untouched.
func (d Dismissals) Visible(items []Implication) []Implication {
	out := make([]Implication, 0, len(items))
	for _, item := range items {
		if d.Has(item.ID) {
			continue
		}
		out = append(out, item)
	}
	return out
}
