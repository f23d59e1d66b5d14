package forecast

import (
	"regexp"
	"strings"
)

// IconRule maps a set of recognized conditions to an icon filename. Rules
// are an ordered list: SelectIcon returns the first rule whose conditions
// are all present, so callers control precedence by ordering.
type IconRule struct {
	Conditions []string
	Icon       string
}

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// ExtractConditions pulls recognized phrases out of a free-text weather
// description. Phrases are matched as literal substrings in vocabulary
// order, and each match is deleted from the text before the next phrase is
// tried, so overlapping phrases resolve in list order. Leftover text is
// lowercased and split into bare word tokens, which join the set.
func ExtractConditions(text string, phrases []string) map[string]struct{} {
	found := make(map[string]struct{})

	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			found[phrase] = struct{}{}
			text = strings.ReplaceAll(text, phrase, "")
		}
	}

	for _, word := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		found[word] = struct{}{}
	}
	return found
}

// SelectIcon resolves a weather description to an icon filename: the first
// rule whose condition set is a subset of the conditions extracted from the
// text wins. Returns false when nothing matches.
func SelectIcon(text string, phrases []string, rules []IconRule) (string, bool) {
	conditions := ExtractConditions(text, phrases)

	for _, rule := range rules {
		if containsAll(conditions, rule.Conditions) {
			return rule.Icon, true
		}
	}
	return "", false
}

func containsAll(set map[string]struct{}, wanted []string) bool {
	for _, w := range wanted {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}
