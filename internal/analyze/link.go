package analyze

import "strings"

const (
	linkPrefix = "https://duckduckgo.com/?sites=cppreference.com&q="
	linkSuffix = "&ia=web"
)

var linkEscaper = strings.NewReplacer(
	" ", "%20",
	"!", "%21",
	"#", "%23",
	"$", "%24",
	"&", "%26",
	"'", "%27",
	"(", "%28",
	")", "%29",
	"*", "%2A",
	"+", "%2B",
	",", "%2C",
	"/", "%2F",
	":", "%3A",
	";", "%3B",
	"=", "%3D",
	"?", "%3F",
	"@", "%40",
	"[", "%5B",
	"]", "%5D",
)

// BuildLink returns a search URL that looks symbol up on cppreference.com.
// Only the reserved characters above are escaped; everything else, including
// '%', passes through unchanged.
func BuildLink(symbol string) string {
	return linkPrefix + linkEscaper.Replace(symbol) + linkSuffix
}
