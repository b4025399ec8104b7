// Package cteconfig implements the CLI-over-metadata-over-default
// precedence rule described in spec.md §6 and §9 Design Notes, as a
// single generic helper rather than scattered per-flag lookups.
package cteconfig

// Resolve picks a value according to spec.md §6's precedence: a
// CLI-supplied value always wins; otherwise an embedded-metadata value is
// used; otherwise def. cliVal/metaVal are nil when the corresponding
// input was never supplied — cliProvided/metaProvided mirror that but are
// kept as separate flags so callers for whom the zero value is a
// legitimate supplied value (e.g. k_exp = 0) still get correct precedence.
// source names which input won ("cli", "metadata", "default"), and warn
// reports whether a CLI value was supplied that disagreed with an
// also-supplied metadata value — the signal cmd/cteepbd uses to print its
// "AVISO: … no coincide…" mismatch warning.
func Resolve[T comparable](cliVal *T, cliProvided bool, metaVal *T, metaProvided bool, def T) (value T, source string, warn bool) {
	switch {
	case cliProvided && metaProvided:
		return *cliVal, "cli", *cliVal != *metaVal
	case cliProvided:
		return *cliVal, "cli", false
	case metaProvided:
		return *metaVal, "metadata", false
	default:
		return def, "default", false
	}
}
