package agents

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/proofworks/proofpipe/internal/jsonx"
)

// searchCandidate is one parsed source candidate from a search reply.
type searchCandidate struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Confidence int    `json:"confidence"`
}

var (
	resultHeader = regexp.MustCompile(`(?mi)^\s*=+\s*result\s*\d*\s*=+\s*$`)
	noSourceMark = regexp.MustCompile(`(?mi)^\s*=+\s*no source\s*=+\s*$`)
	rawURL       = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)
)

// parseSearchResults extracts source candidates from free-text model output.
// The primary format is the ===result N=== block protocol; replies that
// ignore it fall back to a JSON array and finally to bare URL scraping.
// An explicit ===no source=== marker yields nil regardless of other content.
func parseSearchResults(text string) []searchCandidate {
	if noSourceMark.MatchString(text) {
		return nil
	}

	if candidates := parseResultBlocks(text); len(candidates) > 0 {
		return candidates
	}
	if candidates := parseResultJSON(text); len(candidates) > 0 {
		return candidates
	}

	// Last resort: the model answered in prose but still named URLs.
	var candidates []searchCandidate
	seen := map[string]bool{}
	for _, u := range rawURL.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;")
		if seen[u] {
			continue
		}
		seen[u] = true
		candidates = append(candidates, searchCandidate{URL: u, Confidence: 50})
	}
	return candidates
}

func parseResultBlocks(text string) []searchCandidate {
	headers := resultHeader.FindAllStringIndex(text, -1)
	var candidates []searchCandidate
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1][0]
		}
		if c, ok := parseResultBlock(text[h[1]:end]); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates
}

func parseResultBlock(block string) (searchCandidate, bool) {
	var c searchCandidate
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := cutPrefixFold(line, "url:"); ok {
			c.URL = rest
		} else if rest, ok := cutPrefixFold(line, "title:"); ok {
			c.Title = rest
		} else if rest, ok := cutPrefixFold(line, "confidence:"); ok {
			if n, err := strconv.Atoi(strings.TrimSuffix(rest, "%")); err == nil {
				c.Confidence = clampScore(n)
			}
		}
	}
	if c.URL == "" || !strings.HasPrefix(c.URL, "http") {
		return searchCandidate{}, false
	}
	if c.Confidence == 0 {
		c.Confidence = 60
	}
	return c, true
}

func parseResultJSON(text string) []searchCandidate {
	var wrapped struct {
		Results []searchCandidate `json:"results"`
	}
	if err := jsonx.Decode(text, &wrapped); err == nil && len(wrapped.Results) > 0 {
		return keepValid(wrapped.Results)
	}
	var plain []searchCandidate
	if err := jsonx.Decode(text, &plain); err == nil {
		return keepValid(plain)
	}
	return nil
}

func keepValid(in []searchCandidate) []searchCandidate {
	out := in[:0]
	for _, c := range in {
		if strings.HasPrefix(c.URL, "http") {
			if c.Confidence == 0 {
				c.Confidence = 60
			}
			out = append(out, c)
		}
	}
	return out
}

// cutPrefixFold is strings.CutPrefix with ASCII case folding on the prefix.
func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(s[len(prefix):]), true
}
