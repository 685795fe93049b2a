package report

import (
	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/incheck/internal/analyze"
)

// maxTypoDistance is the largest edit distance still reported as a likely typo.
const maxTypoDistance = 2

type hint struct {
	listed string
	line   int
}

// typoHint looks for an over-listed symbol that is probably a misspelling
// of symbol, e.g. std::to_sting listed while std::to_string is used.
func typoHint(symbol string, over []analyze.OverListedFinding) (hint, bool) {
	best := hint{}
	bestDist := maxTypoDistance + 1
	for _, o := range over {
		for _, listed := range o.Unused {
			d := edlib.LevenshteinDistance(symbol, listed)
			if d > 0 && d < bestDist {
				best = hint{listed: listed, line: o.Line.Number}
				bestDist = d
			}
		}
	}
	return best, bestDist <= maxTypoDistance
}
