package storage

// GameFilter composes the optional predicates of a position search.
// Nil fields are unconstrained. Elo bounds are exclusive; name matches
// are case-sensitive substrings; outcome is an exact match.
type GameFilter struct {
	WhiteMin  *int
	WhiteMax  *int
	BlackMin  *int
	BlackMax  *int
	WhiteName *string
	BlackName *string
	Outcome   *string
}

// predicates returns the WHERE clauses and bind arguments for the
// supplied filters, in a fixed order so generated SQL is deterministic.
func (f GameFilter) predicates() ([]string, []any) {
	var clauses []string
	var args []any

	if f.WhiteMin != nil {
		clauses = append(clauses, "rw.elo > ?")
		args = append(args, *f.WhiteMin)
	}
	if f.WhiteMax != nil {
		clauses = append(clauses, "rw.elo < ?")
		args = append(args, *f.WhiteMax)
	}
	if f.BlackMin != nil {
		clauses = append(clauses, "rb.elo > ?")
		args = append(args, *f.BlackMin)
	}
	if f.BlackMax != nil {
		clauses = append(clauses, "rb.elo < ?")
		args = append(args, *f.BlackMax)
	}
	if f.WhiteName != nil {
		clauses = append(clauses, "w.name LIKE ?")
		args = append(args, "%"+*f.WhiteName+"%")
	}
	if f.BlackName != nil {
		clauses = append(clauses, "b.name LIKE ?")
		args = append(args, "%"+*f.BlackName+"%")
	}
	if f.Outcome != nil {
		clauses = append(clauses, "g.outcome = ?")
		args = append(args, *f.Outcome)
	}

	return clauses, args
}
