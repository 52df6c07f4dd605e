package render

import _ "embed"

// pageStyle is inlined into every generated page so the output stays a
// single self-contained file.
//
//go:embed style.css
var pageStyle string
