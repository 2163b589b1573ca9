package swagger

import _ "embed"

// OpenAPI contains the embedded OpenAPI YAML specification.
//
//go:embed openapi.yaml
var OpenAPI []byte

// redocScript is the pinned ReDoc bundle loaded by the docs page.
const redocScript = "https://cdn.redoc.ly/redoc/v2.1.5/bundles/redoc.standalone.js"
