// Package author provides the author identifier types shared by the scraper,
// storage, and report packages.
//
// Author sets have set semantics: insertion order is irrelevant and
// duplicates collapse. Sets are persisted as sorted JSON arrays keyed by
// conference year, so repeated runs over the same pages produce identical
// files.
package author
