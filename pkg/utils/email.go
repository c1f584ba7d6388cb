package utils

import "strings"

// PlaceholderEmailDomain is appended to synthesized customer emails
const PlaceholderEmailDomain = "example.com"

// PlaceholderEmail derives a stand-in address from a customer name:
// lowercased, spaces removed, fixed domain. "Jane Doe" -> janedoe@example.com.
func PlaceholderEmail(name string) string {
	local := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))
	return local + "@" + PlaceholderEmailDomain
}
