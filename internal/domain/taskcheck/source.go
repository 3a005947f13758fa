package taskcheck

import (
	"errors"
	"net/url"
	"strings"
)

// TelegramSource is the source of t.me links.
const TelegramSource = "t"

// SourceFromLink returns the first label of the link host without "www.",
// e.g. "t" for https://t.me/news.
func SourceFromLink(link string) (string, error) {
	u, err := url.ParseRequestURI(link)
	if err != nil {
		return "", err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("link must be http or https")
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if host == "" {
		return "", errors.New("link has no host")
	}

	label, _, _ := strings.Cut(host, ".")
	return label, nil
}

// ChannelFromLink returns the @username of the chat a t.me link points to.
func ChannelFromLink(link string) string {
	link = strings.TrimRight(link, "/")
	name := link[strings.LastIndex(link, "/")+1:]
	if name == "" || strings.HasPrefix(name, "@") {
		return name
	}

	return "@" + name
}
