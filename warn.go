// Package warn harvests WARN Act notices (mass layoff and plant closing
// filings) from state government websites and normalizes them into CSV.
//
// Sources publish notices as paginated HTML listings or as PDF tables whose
// rows are split across pages. The harvester crawls the page chain through a
// disk cache, extracts cell grids, and reconstructs one fixed-schema row per
// notice.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, pdf/).
package warn
