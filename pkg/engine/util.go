package engine

import "fmt"

// formatAny renders an arbitrary recovered panic value for logging without
// pulling in reflection-heavy formatting.
func formatAny(v any) string {
	return fmt.Sprintf("%v", v)
}
