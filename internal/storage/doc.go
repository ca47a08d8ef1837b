// Package storage provides JSON-based persistence for scrape results.
//
// Results are written to a results directory (./results by default):
// author_info.json holds author identifier sets keyed by year,
// university_info.json and other_info.json hold institution counts keyed by
// year, and manual_info.json lists profile URLs that need a manual check.
// The files double as stage caches: when present, the stage that produced
// them is not scraped again.
package storage
