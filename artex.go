// Package artex extracts structured article content (title, author, date,
// content, summary) from arbitrary web pages. Extraction runs as a cascade:
// a bespoke per-domain rule when one matches, a domain-agnostic
// structured-data and semantic-HTML detector otherwise. Results are quality
// scored, validated, confidence adjusted and cached.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency or concern (e.g., goquery/, rod/, cache/).
package artex
