// Package scraper extracts article links, author identifiers and author
// affiliations from ACM Digital Library pages.
//
// Listing pages (proceedings tables of contents) yield article links from
// their issue-item titles. Article pages yield author identifiers encoded in
// the data-doi attribute of each author's institution entry. Author profile
// pages yield a display name and the list of affiliated institutions.
//
// Failures are split in two: a page missing a structural element entirely is
// a ParseError and aborts the stage, while a single malformed author entry or
// profile is logged, recorded for manual follow-up and skipped.
package scraper
