package resolver

import (
	"sort"
	"strconv"
	"strings"
)

// textualQualityRank orders non-numeric labels, best first
var textualQualityRank = []string{"hd", "high", "sd", "low"}

// qualityNumber parses labels such as "1080" or "720p"
func qualityNumber(label string) (int, bool) {
	s := strings.TrimSpace(strings.ToLower(label))
	s = strings.TrimSuffix(s, "p")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func textualRank(label string) int {
	l := strings.ToLower(strings.TrimSpace(label))
	for i, r := range textualQualityRank {
		if l == r {
			return i
		}
	}
	return len(textualQualityRank)
}

// betterQuality reports whether label a should be preferred over b.
// Numeric labels win over textual ones and compare by value; textual labels
// follow textualQualityRank, then lexical order.
func betterQuality(a, b string) bool {
	na, aNum := qualityNumber(a)
	nb, bNum := qualityNumber(b)
	switch {
	case aNum && bNum:
		if na != nb {
			return na > nb
		}
		return a < b
	case aNum != bNum:
		return aNum
	}
	ra, rb := textualRank(a), textualRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

// bestRendition picks the highest-quality rendition that has a URL
func bestRendition(items renditions) (rendition, bool) {
	candidates := make([]rendition, 0, len(items))
	for _, it := range items {
		if it.Format.URL.String() != "" {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		return rendition{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return betterQuality(candidates[i].Key, candidates[j].Key)
	})
	return candidates[0], true
}

// qualityLabel renders a rendition key: numeric keys gain a "p" suffix
func qualityLabel(key string) string {
	if n, ok := qualityNumber(key); ok {
		return strconv.Itoa(n) + "p"
	}
	return strings.TrimSpace(key)
}
