package craftfolio

import "embed"

// AssetsFS holds the stylesheet and script served under /assets/.
//
//go:embed assets
var AssetsFS embed.FS
