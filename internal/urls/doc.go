// Package urls provides centralized constants for the documentation URLs
// printed by the wemo CLI.
//
// Usage:
//
//	import "github.com/muurk/wemo/internal/urls"
//
//	fmt.Printf("For more information, see: %s\n", urls.DiscoveryTroubleshooting)
package urls
