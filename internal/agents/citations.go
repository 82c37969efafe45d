package agents

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/proofworks/proofpipe/internal/article"
	"github.com/proofworks/proofpipe/internal/proofread"
)

const maxTitleBytes = 256 << 10

// CitationsAgent is the final stage of the source chain. It checks every
// candidate URL from the search stage, plus links already present in the
// article, and reports which ones actually resolve. Its verified list becomes
// the report's source insertions.
type CitationsAgent struct {
	httpClient *http.Client
	progress   progressBuffer
}

var (
	_ proofread.Agent           = (*CitationsAgent)(nil)
	_ proofread.PartialReporter = (*CitationsAgent)(nil)
)

func NewCitations(httpClient *http.Client) *CitationsAgent {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &CitationsAgent{httpClient: httpClient}
}

func (a *CitationsAgent) Name() string              { return "citation-verification" }
func (a *CitationsAgent) Type() proofread.AgentType { return proofread.TypeCitations }

// PartialResults exposes the per-URL progress buffer for salvage.
func (a *CitationsAgent) PartialResults() *proofread.PartialResults {
	return a.progress.snapshot()
}

func (a *CitationsAgent) Execute(ctx context.Context, content string, pctx *proofread.Context) (proofread.AgentResult, error) {
	candidates := collectCandidates(content, pctx)
	a.progress.begin(len(candidates))

	if len(candidates) == 0 {
		return proofread.AgentResult{
			AgentName:  a.Name(),
			AgentType:  a.Type(),
			Score:      100,
			Confidence: 100,
			Status:     proofread.StatusSuccess,
		}, nil
	}

	var (
		verified []proofread.VerifiedURL
		issues   []proofread.Issue
		okCount  int
	)

	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return proofread.AgentResult{}, fmt.Errorf("citation verification: %w", err)
		}

		v := a.verifyOne(ctx, cand)
		verified = append(verified, v)

		var stepIssues []proofread.Issue
		if v.Status == proofread.URLOK {
			okCount++
		} else {
			stepIssues = append(stepIssues, proofread.Issue{
				Type:        proofread.IssueMissingSource,
				Severity:    proofread.SeverityMajor,
				Location:    v.Heading,
				Description: fmt.Sprintf("source URL does not resolve (%s): %s", v.Status, v.URL),
				Original:    v.Claim,
				Confidence:  90,
				Action:      proofread.ActionRephrase,
				CautionNote: "the cited source is unreachable; replace it or soften the claim",
			})
			issues = append(issues, stepIssues...)
		}
		a.progress.complete(stepIssues, []proofread.VerifiedURL{v})
	}

	score := int(float64(okCount)/float64(len(candidates))*100 + 0.5)

	return proofread.AgentResult{
		AgentName:    a.Name(),
		AgentType:    a.Type(),
		Score:        score,
		Confidence:   score,
		Issues:       issues,
		VerifiedURLs: verified,
		Status:       proofread.StatusSuccess,
	}, nil
}

// collectCandidates merges the search stage's output with links already in
// the article body, deduplicated by URL. Search results come first so their
// claims and element indexes win.
func collectCandidates(content string, pctx *proofread.Context) []proofread.VerifiedURL {
	var candidates []proofread.VerifiedURL
	seen := map[string]bool{}

	if pctx != nil && pctx.SearchOutcome != nil {
		for _, v := range pctx.SearchOutcome.VerifiedURLs {
			if v.URL == "" || seen[v.URL] {
				continue
			}
			seen[v.URL] = true
			if v.Heading == "" && pctx.ParsedElements != nil {
				v.Heading = headingFor(pctx.ParsedElements, v.ElementIndex)
			}
			candidates = append(candidates, v)
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return candidates
	}
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if !strings.HasPrefix(href, "http") || seen[href] {
			return
		}
		seen[href] = true
		candidates = append(candidates, proofread.VerifiedURL{
			URL:   href,
			Title: strings.TrimSpace(sel.Text()),
		})
	})

	return candidates
}

func headingFor(elements []article.Element, index int) string {
	if index < 1 || index > len(elements) {
		return ""
	}
	return elements[index-1].Heading()
}

// verifyOne resolves a single URL. HEAD first, then GET for servers that
// reject HEAD; a successful GET also yields the page title when the candidate
// has none.
func (a *CitationsAgent) verifyOne(ctx context.Context, cand proofread.VerifiedURL) proofread.VerifiedURL {
	resp, err := a.fetch(ctx, http.MethodHead, cand.URL)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		resp, err = a.fetch(ctx, http.MethodGet, cand.URL)
	}
	if err != nil {
		log.Debug().Err(err).Str("url", cand.URL).Msg("citation fetch failed")
		cand.Status = proofread.URLError
		return cand
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		cand.Status = proofread.URLNotFound
	case resp.StatusCode >= 400:
		cand.Status = proofread.URLError
	default:
		cand.Status = proofread.URLOK
		if cand.Title == "" && resp.Request.Method == http.MethodGet {
			cand.Title = pageTitle(resp.Body)
		}
	}
	return cand
}

func (a *CitationsAgent) fetch(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "proofpipe/1.0 (citation check)")
	return a.httpClient.Do(req)
}

func pageTitle(body io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxTitleBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
