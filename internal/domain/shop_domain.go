package domain

import (
	"net/url"
	"regexp"
	"strings"
)

// MyshopifyDomain is the canonical storefront admin domain suffix
const MyshopifyDomain = "myshopify.com"

var shopHostnamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]\.` + regexp.QuoteMeta(MyshopifyDomain) + `$`)

var schemePattern = regexp.MustCompile(`https?://`)

// SanitizeShopDomain normalizes a user-supplied shop reference into its
// canonical "<name>.myshopify.com" form. A bare shop name gets the suffix
// appended; scheme and path are dropped.
func SanitizeShopDomain(raw string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "", ErrInvalidShopDomain
	}
	if !strings.Contains(name, MyshopifyDomain) && !strings.Contains(name, ".") {
		name += "." + MyshopifyDomain
	}
	name = schemePattern.ReplaceAllString(name, "")

	u, err := url.Parse("http://" + name)
	if err != nil {
		return "", ErrInvalidShopDomain
	}
	if !shopHostnamePattern.MatchString(u.Host) {
		return "", ErrInvalidShopDomain
	}
	return u.Host, nil
}

// ShopDomainFromDest strips the URL scheme from a session token destination
func ShopDomainFromDest(dest string) string {
	dest = strings.TrimPrefix(dest, "https://")
	return strings.TrimPrefix(dest, "http://")
}
