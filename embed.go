package citadel

import "embed"

// seedFS holds the fixed seed dataset: the podcast back catalog and the
// internship entries the site launched with.
//
//go:embed seed/*.json
var seedFS embed.FS
