package validators

import (
	"slices"
	"strings"

	"github.com/davinci-dev/davinci/pkg/openapi"
)

// DanglingRefs returns the sorted, distinct reference targets used in defs that
// have no definition. References not starting with prefix are reported as-is.
func DanglingRefs(defs *openapi.Definitions, prefix string) []string {
	seen := make(map[string]bool)
	var missing []string
	for node := range openapi.TraverseDefinitions(defs) {
		if !node.IsRef() || seen[node.Ref] {
			continue
		}
		seen[node.Ref] = true

		title, ok := strings.CutPrefix(node.Ref, prefix)
		if !ok || !defs.Has(title) {
			missing = append(missing, node.Ref)
		}
	}
	slices.Sort(missing)
	return missing
}

// CheckRefs reports whether every reference used in defs resolves within defs.
func CheckRefs(defs *openapi.Definitions, prefix string) bool {
	return len(DanglingRefs(defs, prefix)) == 0
}
