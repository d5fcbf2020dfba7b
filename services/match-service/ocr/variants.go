package ocr

import "strings"

// Variants returns every single-substitution rewrite of token: for each
// position whose uppercased character is confusable, one variant per
// alternative. Variants are uppercase except for the substituted character,
// which is kept as listed (so '1' can become 'l'). Substitutions are never
// combined. The result is ordered by position, then by alternative, and holds
// no duplicates. An empty token yields nil.
func Variants(token string) []string {
	if token == "" {
		return nil
	}
	upper := []rune(strings.ToUpper(token))

	var out []string
	seen := make(map[string]struct{})
	for i, r := range upper {
		for _, alt := range confusions[r] {
			if alt == r {
				continue
			}
			variant := make([]rune, len(upper))
			copy(variant, upper)
			variant[i] = alt

			s := string(variant)
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// Candidates returns the spellings to look up for term: the uppercased term
// first, then its Variants. The uppercased term appears exactly once.
func Candidates(term string) []string {
	upper := strings.ToUpper(term)
	out := []string{upper}
	seen := map[string]struct{}{upper: {}}
	for _, v := range Variants(term) {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
