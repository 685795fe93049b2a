package analyze

// annotatedInclusion is an inclusion directive with the symbols its
// trailing comment lists.
type annotatedInclusion struct {
	Line      SourceLine
	Directive string
	Listed    []string
}

// symbolUsage is one qualified symbol reference found in code.
type symbolUsage struct {
	Line   SourceLine
	Symbol string
}

// reconcile compares what the directives list against what the file uses.
// Listings anywhere in the file satisfy usages anywhere in the file.
func reconcile(annotated []annotatedInclusion, usages []symbolUsage) ([]OverListedFinding, []UnderListedFinding) {
	used := make(map[string]struct{}, len(usages))
	for _, u := range usages {
		used[u.Symbol] = struct{}{}
	}

	listed := make(map[string]struct{})
	var over []OverListedFinding
	for _, a := range annotated {
		var unused []string
		for _, sym := range a.Listed {
			listed[sym] = struct{}{}
			if _, ok := used[sym]; !ok {
				unused = append(unused, sym)
			}
		}
		if len(unused) > 0 {
			over = append(over, OverListedFinding{
				Line:      a.Line,
				Directive: a.Directive,
				Unused:    unused,
			})
		}
	}

	var under []UnderListedFinding
	for _, u := range usages {
		if _, ok := listed[u.Symbol]; ok {
			continue
		}
		under = append(under, UnderListedFinding{
			Line:   u.Line,
			Symbol: u.Symbol,
			Link:   BuildLink(u.Symbol),
		})
	}

	return over, under
}
