package static

import "embed"

// FS holds the built front-end assets served under /static/.
//
//go:embed dist
var FS embed.FS
