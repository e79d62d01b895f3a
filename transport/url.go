package transport

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var reKeyParam = regexp.MustCompile(`(?i)([?&](?:key|api_key)=)([^&\s]+)`)

// RedactKey masks api keys carried in a URL or query string.
func RedactKey(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	return reKeyParam.ReplaceAllString(raw, "$1***")
}

// joinURL appends path to baseURL without discarding the base path, so
// "https://barikoi.xyz/v2/api" + "/route/x" keeps the "/v2/api" prefix.
func joinURL(baseURL string, path string, params Params) (string, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("failed to parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base URL %q must be absolute", baseURL)
	}
	rel, err := url.Parse(strings.TrimSpace(path))
	if err != nil {
		return "", fmt.Errorf("failed to parse path: %w", err)
	}
	// Join the escaped forms so segments escaped by callers, like a place
	// code containing "/", stay a single segment.
	if escaped := strings.TrimLeft(rel.EscapedPath(), "/"); escaped != "" {
		rawPath := strings.TrimRight(base.EscapedPath(), "/") + "/" + escaped
		decoded, err := url.PathUnescape(rawPath)
		if err != nil {
			return "", fmt.Errorf("failed to unescape path: %w", err)
		}
		base.Path = decoded
		base.RawPath = rawPath
	}
	q := base.Query()
	for k, vv := range rel.Query() {
		for _, v := range vv {
			q.Add(k, v)
		}
	}
	addQuery(q, params)
	base.RawQuery = q.Encode()
	return base.String(), nil
}

func addQuery(q url.Values, params Params) {
	keys := make([]string, 0, len(params))
	for key := range params {
		if strings.TrimSpace(key) == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		q.Set(key, params[key])
	}
}

func formValues(params Params) url.Values {
	v := url.Values{}
	addQuery(v, params)
	return v
}
