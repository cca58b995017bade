package ids

import "strings"

// UniquePrefixLengths maps each lowercased id to the length of the shortest
// prefix that no other id shares.
func UniquePrefixLengths(ids []string) map[string]int {
	unique := NormalizeUniqueIDs(ids)
	lengths := make(map[string]int, len(unique))
	for _, id := range unique {
		lengths[id] = shortestUniquePrefix(id, unique)
	}
	return lengths
}

// NormalizeUniqueIDs lowercases ids and drops blanks and duplicates.
func NormalizeUniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToLower(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// MatchPrefix finds the id that starts with prefix.
// An exact match always wins over longer ids sharing the prefix.
func MatchPrefix(ids []string, prefix string) (match string, found bool, ambiguous bool) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", false, false
	}
	for _, id := range ids {
		if strings.ToLower(id) == prefix {
			return id, true, false
		}
	}
	for _, id := range ids {
		if !strings.HasPrefix(strings.ToLower(id), prefix) {
			continue
		}
		if found {
			return "", true, true
		}
		match = id
		found = true
	}
	return match, found, false
}

// shortestUniquePrefix is one past the longest prefix id shares with any other
// id, capped at the id's length.
func shortestUniquePrefix(id string, ids []string) int {
	shared := 0
	for _, other := range ids {
		if other != id {
			shared = max(shared, commonPrefixLength(id, other))
		}
	}
	return min(shared+1, len(id))
}

func commonPrefixLength(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
