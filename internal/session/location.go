package session

import "strings"

// hashbang introduces the SPA location fragment in share URLs, e.g.
// https://host/share/abc#!/home/Aber -> /home/Aber.
const hashbang = "#!"

// LocationFromURL extracts the SPA location from a share URL.
// URLs without a hashbang fragment map to the root location "/"; a
// fragment without a leading slash gets one, so every location is
// comparable by plain string equality.
func LocationFromURL(url string) string {
	idx := strings.Index(url, hashbang)
	if idx < 0 {
		return "/"
	}
	frag := url[idx+len(hashbang):]
	if !strings.HasPrefix(frag, "/") {
		frag = "/" + frag
	}
	return frag
}
