// Package fingerprint produces deterministic, order-independent hashes
// of data collections. The hash participates in cache keys so a content
// change is a structural cache miss; collisions only cost a recompute.
package fingerprint

import (
	"sort"
	"strconv"

	xxhash "github.com/cespare/xxhash/v2"
)

// Tuple is the hashed subset of a stat row.
type Tuple struct {
	ID       string
	Quarter  int
	Position string
	ValueA   int
	ValueB   int
}

// Hash returns a hex fingerprint of the tuple set. Input order does not
// affect the result: tuples are sorted by ID before hashing.
func Hash(tuples []Tuple) string {
	if len(tuples) == 0 {
		return "empty"
	}

	sorted := append([]Tuple(nil), tuples...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ID != sorted[j].ID {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Quarter < sorted[j].Quarter
	})

	digest := xxhash.New()
	for _, tu := range sorted {
		_, _ = digest.WriteString(tu.ID)
		_, _ = digest.WriteString("-")
		_, _ = digest.WriteString(strconv.Itoa(tu.Quarter))
		_, _ = digest.WriteString("-")
		_, _ = digest.WriteString(tu.Position)
		_, _ = digest.WriteString("-")
		_, _ = digest.WriteString(strconv.Itoa(tu.ValueA))
		_, _ = digest.WriteString("-")
		_, _ = digest.WriteString(strconv.Itoa(tu.ValueB))
		_, _ = digest.WriteString("|")
	}

	return strconv.FormatUint(digest.Sum64(), 16)
}
