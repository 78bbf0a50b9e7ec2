// Package roster harvests the complete membership of UI-virtualized lists.
// A virtualized list only keeps a window of its items in the rendered tree,
// so the harvester scrolls the list, captures whatever is visible on each
// tick, deduplicates by identity and decides on its own when it has seen
// everything.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package roster
