package reconcile

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Direction selects which side of a name comparison must be the prefix
type Direction string

const (
	// NamePrefixOfTitle matches when the catalog name is a prefix of the local title
	NamePrefixOfTitle Direction = "name-prefix-of-title"
	// TitlePrefixOfName matches when the local title is a prefix of the catalog name
	TitlePrefixOfName Direction = "title-prefix-of-name"
)

// TieBreak selects the winner when several catalog names match one title
type TieBreak string

const (
	// TieBreakLast keeps the last matching catalog stream in catalog order
	TieBreakLast TieBreak = "last"
	// TieBreakLongest keeps the most specific candidate: the longest catalog
	// name for NamePrefixOfTitle, the shortest for TitlePrefixOfName. Equal
	// candidates fall back to catalog order, last wins.
	TieBreakLongest TieBreak = "longest"
)

// Policy configures MatchStreams
type Policy struct {
	Direction Direction
	TieBreak  TieBreak
}

// DefaultPolicy returns the policy used when nothing is configured
func DefaultPolicy() Policy {
	return Policy{Direction: NamePrefixOfTitle, TieBreak: TieBreakLast}
}

// ParseDirection validates a configured direction, empty meaning the default
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return NamePrefixOfTitle, nil
	case NamePrefixOfTitle, TitlePrefixOfName:
		return d, nil
	default:
		return "", fmt.Errorf("unknown match direction %q (want %s or %s)", s, NamePrefixOfTitle, TitlePrefixOfName)
	}
}

// ParseTieBreak validates a configured tie-break, empty meaning the default
func ParseTieBreak(s string) (TieBreak, error) {
	switch tb := TieBreak(strings.ToLower(strings.TrimSpace(s))); tb {
	case "":
		return TieBreakLast, nil
	case TieBreakLast, TieBreakLongest:
		return tb, nil
	default:
		return "", fmt.Errorf("unknown tie-break %q (want %s or %s)", s, TieBreakLast, TieBreakLongest)
	}
}

// Fold normalizes a name for caseless comparison
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// MatchStreams pairs every local stream with a catalog id by prefix matching
// on case-folded names. Local streams without any matching catalog name get
// Unmatched. Neither input is modified; the result has one entry per local
// stream in the same order.
func MatchStreams(catalog []CatalogStream, locals []LocalStream, policy Policy) []MatchedStream {
	names := make([]string, len(catalog))
	for i, stream := range catalog {
		names[i] = Fold(stream.Name)
	}

	matched := make([]MatchedStream, 0, len(locals))
	for _, local := range locals {
		matched = append(matched, matchOne(catalog, names, local, policy))
	}
	return matched
}

func matchOne(catalog []CatalogStream, names []string, local LocalStream, policy Policy) MatchedStream {
	result := MatchedStream{LocalStream: local, CatalogID: Unmatched}
	title := Fold(local.Title)

	bestScore := 0
	for i, stream := range catalog {
		if stream.ID == Unmatched || !policy.matches(names[i], title) {
			continue
		}
		result.Candidates = append(result.Candidates, stream.ID)

		score := policy.score(names[i])
		if policy.TieBreak != TieBreakLongest || result.CatalogID == Unmatched || score >= bestScore {
			result.CatalogID = stream.ID
			bestScore = score
		}
	}
	return result
}

func (p Policy) matches(name, title string) bool {
	if p.Direction == TitlePrefixOfName {
		return title != "" && strings.HasPrefix(name, title)
	}
	return name != "" && strings.HasPrefix(title, name)
}

// score ranks candidates for TieBreakLongest, higher is more specific
func (p Policy) score(name string) int {
	if p.Direction == TitlePrefixOfName {
		return -len(name)
	}
	return len(name)
}
