package browser

import "strings"

// NormalizeURL turns the URL forms clients send into something the browser
// will accept: protocol-relative URLs get https, and bare hosts get an
// https scheme prepended. Fully qualified URLs pass through untouched.
func NormalizeURL(url string) string {
	url = strings.TrimSpace(url)

	switch {
	case url == "":
		return url
	case strings.HasPrefix(url, "//"):
		return "https:" + url
	case strings.Contains(url, "://"):
		return url
	case strings.HasPrefix(url, "about:"):
		return url
	default:
		return "https://" + url
	}
}
