package candidate

// MinTextLen is the content gate: candidates with this many characters of
// cleaned text or fewer are treated as noise.
const MinTextLen = 50

// Select picks the best candidate. Only candidates whose text is longer than
// MinTextLen compete; the highest score wins and earlier candidates win ties.
// When none pass the gate the first non-nil candidate is returned so callers
// can still report missing content. Select returns nil only when every
// candidate is nil.
func Select(cands ...*Candidate) *Candidate {
	var best *Candidate
	for _, c := range cands {
		if c == nil || c.TextLen() <= MinTextLen {
			continue
		}
		if best == nil || c.Score > best.Score {
			best = c
		}
	}
	if best != nil {
		return best
	}
	for _, c := range cands {
		if c != nil {
			return c
		}
	}
	return nil
}

// Find returns the candidate produced by the named strategy, if any.
func Find(cands []*Candidate, name Name) *Candidate {
	for _, c := range cands {
		if c != nil && c.Name == name {
			return c
		}
	}
	return nil
}
