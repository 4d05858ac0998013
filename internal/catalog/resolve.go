package catalog

import "strings"

// LocalID strips a "namespace:" prefix.
func LocalID(id string) string {
	if i := strings.IndexByte(id, ':'); i >= 0 {
		return id[i+1:]
	}
	return id
}

func resolveIndex(index map[string]int, id string, idAt func(int) string, n int) (int, bool) {
	if i, ok := index[id]; ok {
		return i, true
	}
	local := LocalID(id)
	if i, ok := index[local]; ok {
		return i, true
	}
	found := -1
	for i := 0; i < n; i++ {
		if LocalID(idAt(i)) != local {
			continue
		}
		if found >= 0 {
			return 0, false
		}
		found = i
	}
	return found, found >= 0
}
