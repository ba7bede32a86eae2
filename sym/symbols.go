// Package sym defines canonical glyphs for verigraph operations and system
// markers. These symbols are stable across CLI output and documentation.
package sym

// Primary operation glyphs used in CLI command headers and log fields.
const (
	CELL   = "⬡" // a single ledger cell
	CHAIN  = "⛓" // the append-only chain
	SEED   = "◉" // genesis / ledger bootstrap
	QUERY  = "⋈" // scholar query / resolution
	BRIDGE = "⌒" // cross-namespace bridge
	AUDIT  = "⊨" // validation / audit pass
	DB     = "⛁" // database operations
	SIGN   = "✎" // signing / proof operations
)
