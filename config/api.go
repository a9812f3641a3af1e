package config

// GetAuthSkipperPaths lists routes served without tenant authentication.
func GetAuthSkipperPaths() []string {
	return []string{
		"/health",
	}
}
