package infer

// jaroWinkler computes the Jaro-Winkler similarity of a and b, in [0, 1].
// No example repo in the corpus imports a string-distance library (the
// closest candidates — maruel/natural, iancoleman/strcase — do ordering
// and case conversion, not edit distance), so this is a direct, standard
// implementation rather than a stdlib workaround for a missing feature
// (documented in DESIGN.md).
func jaroWinkler(a, b string) float64 {
	if a == b {
		return 1
	}
	ar, br := []rune(a), []rune(b)
	la, lb := len(ar), len(br)
	if la == 0 || lb == 0 {
		return 0
	}

	matchDist := max(la, lb)/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}

	aMatched := make([]bool, la)
	bMatched := make([]bool, lb)

	matches := 0
	for i := 0; i < la; i++ {
		start := max(0, i-matchDist)
		end := min(lb-1, i+matchDist)
		for j := start; j <= end; j++ {
			if bMatched[j] || ar[i] != br[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	var transpositions int
	k := 0
	for i := 0; i < la; i++ {
		if !aMatched[i] {
			continue
		}
		for !bMatched[k] {
			k++
		}
		if ar[i] != br[k] {
			transpositions++
		}
		k++
	}
	transpositions /= 2

	m := float64(matches)
	jaro := (m/float64(la) + m/float64(lb) + (m-float64(transpositions))/m) / 3

	prefix := 0
	for i := 0; i < min(4, min(la, lb)); i++ {
		if ar[i] != br[i] {
			break
		}
		prefix++
	}

	return jaro + float64(prefix)*0.1*(1-jaro)
}

// mostSimilar returns the candidate closest to name by Jaro-Winkler
// similarity, if it clears the spec's 0.85 threshold (spec.md §4.4).
func mostSimilar(name string, candidates []string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		if c == name {
			continue
		}
		if s := jaroWinkler(name, c); s > bestScore {
			bestScore = s
			best = c
		}
	}
	if bestScore >= 0.85 {
		return best, true
	}
	return "", false
}
