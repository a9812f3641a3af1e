package graphql

import _ "embed"

//go:embed schema.graphqls
var schema string

// Schema returns the reporting query schema.
func Schema() string {
	return schema
}
