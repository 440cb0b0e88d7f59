package cache

import "fmt"

// ListingKey caches the examiner's recording listing between polls.
func ListingKey() string {
	return "recordings:listing"
}

// ReportKey caches one candidate's aggregated results.
func ReportKey(candidate string) string {
	return fmt.Sprintf("recordings:report:%s", candidate)
}

// RateLimitKey counts upload requests per client address.
func RateLimitKey(clientAddr string) string {
	return fmt.Sprintf("ratelimit:%s", clientAddr)
}
