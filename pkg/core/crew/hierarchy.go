package crew

// DefaultCovers is the stock leadership and hazmat ladder used to seed an empty covers graph.
// Each entry lists only the next step up; the resolver derives the rest transitively.
//
// The stored graph is the only source used for resolution. This table is never consulted
// at assignment time.
var DefaultCovers = []Cover{
	{From: "TM2", To: "TM1"},
	{From: "TM", To: "TM2"},
	{From: "TF", To: "TM"},
	{From: "GF", To: "TF"},
	{From: "ZF", To: "GF"},
	{From: "VF", To: "ZF"},
	{From: "ABC2", To: "ABC1"},
}

// DefaultQualificationCodes lists the codes DefaultCovers expects in the catalog
var DefaultQualificationCodes = []string{
	"TM1", "TM2", "TM", "TF", "GF", "ZF", "VF",
	"MA", "AGT", "MZF-FA", "ABC1", "ABC2", "MKS",
}

// MissingCovers returns the default edges that are not already stored
func MissingCovers(stored []Cover) []Cover {
	existing := make(map[Cover]struct{}, len(stored))
	for _, c := range stored {
		existing[c] = struct{}{}
	}
	var missing []Cover
	for _, c := range DefaultCovers {
		if _, ok := existing[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
