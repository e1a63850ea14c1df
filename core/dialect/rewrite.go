package dialect

import "regexp"

// Regexp rewrite helpers shared by the dialect filters. The filters run to
// a fixed point on each pass: every replacement restarts the search from the
// beginning, so a replacement must never reproduce its own match text.

// rewriteAll replaces every match of re in text with fn's result, restarting
// from the start of text after each replacement. fn receives the match and
// its capture groups (empty string for an absent group). The first error
// aborts the pass.
func rewriteAll(text string, re *regexp.Regexp, fn func(groups []string) (string, error)) (string, error) {
	for {
		idx := re.FindStringSubmatchIndex(text)
		if idx == nil {
			return text, nil
		}
		rep, err := fn(groupStrings(text, idx))
		if err != nil {
			return "", err
		}
		text = text[:idx[0]] + rep + text[idx[1]:]
	}
}

// rewriteMatches scans text once, left to right. For each match fn decides
// whether to replace it; a declined match is skipped and the scan continues
// past it, leaving the tag for a later pass.
func rewriteMatches(text string, re *regexp.Regexp, fn func(groups []string) (string, bool)) string {
	searchFrom := 0
	for {
		idx := re.FindStringSubmatchIndex(text[searchFrom:])
		if idx == nil {
			return text
		}
		for i := range idx {
			if idx[i] >= 0 {
				idx[i] += searchFrom
			}
		}
		rep, ok := fn(groupStrings(text, idx))
		if !ok {
			searchFrom = idx[1]
			continue
		}
		text = text[:idx[0]] + rep + text[idx[1]:]
		searchFrom = idx[0] + len(rep)
	}
}

// deleteAll removes every match of re from text.
func deleteAll(text string, re *regexp.Regexp) string {
	return re.ReplaceAllString(text, "")
}

// groupMatch is one regexp match with both byte offsets and group strings.
type groupMatch struct {
	idx  []int
	strs []string
}

// findGroups returns the first match of re in text, or nil.
func findGroups(text string, re *regexp.Regexp) *groupMatch {
	idx := re.FindStringSubmatchIndex(text)
	if idx == nil {
		return nil
	}
	return &groupMatch{idx: idx, strs: groupStrings(text, idx)}
}

// groupStrings materializes the capture groups of a FindStringSubmatchIndex
// result. Index 0 is the whole match; an absent group is the empty string.
func groupStrings(text string, idx []int) []string {
	strs := make([]string, len(idx)/2)
	for i := range strs {
		if idx[2*i] >= 0 {
			strs[i] = text[idx[2*i]:idx[2*i+1]]
		}
	}
	return strs
}
