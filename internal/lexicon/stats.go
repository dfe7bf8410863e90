package lexicon

import (
	"sort"
	"strings"
)

const productiveRootLimit = 10

type RootCount struct {
	Root  string `json:"root"`
	Count int    `json:"count"`
}

// Statistics summarizes a collection.
type Statistics struct {
	Total                int            `json:"total"`
	Simple               int            `json:"simple"`
	Compound             int            `json:"compound"`
	Domains              map[Domain]int `json:"domains"`
	ProductiveRoots      []RootCount    `json:"productive_roots"`
	AverageCompoundRoots float64        `json:"average_compound_roots"`
}

func (c *Collection) Statistics() Statistics {
	st := Statistics{Domains: make(map[Domain]int)}
	if c == nil {
		return st
	}

	rootUse := make(map[string]int)
	rootSum := 0
	for _, e := range c.entries {
		st.Total++
		st.Domains[e.Domain]++
		roots := e.Roots()
		if len(roots) == 0 {
			st.Simple++
			continue
		}
		st.Compound++
		rootSum += len(roots)
		for _, r := range roots {
			rootUse[strings.ToLower(r)]++
		}
	}
	if st.Compound > 0 {
		st.AverageCompoundRoots = float64(rootSum) / float64(st.Compound)
	}

	for root, n := range rootUse {
		st.ProductiveRoots = append(st.ProductiveRoots, RootCount{Root: root, Count: n})
	}
	sort.Slice(st.ProductiveRoots, func(i, j int) bool {
		a, b := st.ProductiveRoots[i], st.ProductiveRoots[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Root < b.Root
	})
	if len(st.ProductiveRoots) > productiveRootLimit {
		st.ProductiveRoots = st.ProductiveRoots[:productiveRootLimit]
	}
	return st
}
