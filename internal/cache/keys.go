package cache

import "fmt"

// ReportKey caches a fully assembled analysis report under its observation
// fingerprint, so identical detector outcomes for the same image are served
// without recomputation.
func ReportKey(fingerprint string) string {
	return fmt.Sprintf("report:%s", fingerprint)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
