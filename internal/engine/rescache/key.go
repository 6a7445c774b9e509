package rescache

import (
	"fmt"
	"sort"
	"strings"
)

// Key derives a deterministic cache key from an operation name and its named
// arguments. Argument names are flattened in sorted order, so the same logical
// call always maps to the same entry no matter how the caller assembled the
// argument map.
func Key(op string, args map[string]any) string {
	if len(args) == 0 {
		return op
	}

	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(op)
	for _, name := range names {
		fmt.Fprintf(&b, "|%s=%v", name, args[name])
	}
	return b.String()
}
