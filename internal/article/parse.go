// Package article splits HTML articles into indexed block elements. The
// element index is the stable location scheme used by source requirements and
// citation insertions.
package article

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is one block-level element of the article with a 1-based index.
type Element struct {
	Index int    `json:"index"`
	Tag   string `json:"tag"`
	HTML  string `json:"html"`
	Text  string `json:"text"`
	// Heading context at the element's position, used for human-readable
	// location references in reports.
	H2 string `json:"h2,omitempty"`
	H3 string `json:"h3,omitempty"`
}

// Heading returns the nearest heading text above the element, for location
// references in reports.
func (el Element) Heading() string {
	if el.H3 != "" {
		return el.H3
	}
	return el.H2
}

var whitespace = regexp.MustCompile(`\s+`)

// Parse extracts h2, h3 and p elements in document order. Lists and tables
// are skipped; the source pipeline only attaches citations to headings and
// paragraphs.
func Parse(html string) ([]Element, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse article html: %w", err)
	}

	var elements []Element
	var currentH2, currentH3 string

	doc.Find("h2, h3, p").Each(func(_ int, sel *goquery.Selection) {
		outer, err := goquery.OuterHtml(sel)
		if err != nil {
			return
		}
		tag := goquery.NodeName(sel)
		text := whitespace.ReplaceAllString(strings.TrimSpace(sel.Text()), " ")

		switch tag {
		case "h2":
			currentH2 = text
			currentH3 = ""
		case "h3":
			currentH3 = text
		}

		elements = append(elements, Element{
			Index: len(elements) + 1,
			Tag:   tag,
			HTML:  strings.TrimSpace(outer),
			Text:  text,
			H2:    currentH2,
			H3:    currentH3,
		})
	})

	return elements, nil
}

// FormatList renders a numbered element list for inclusion in agent prompts.
func FormatList(elements []Element) string {
	var b strings.Builder
	for _, el := range elements {
		preview := el.Text
		if len(preview) > 120 {
			preview = preview[:120] + "..."
		}
		fmt.Fprintf(&b, "%d. [%s] %s\n", el.Index, strings.ToUpper(el.Tag), preview)
	}
	return b.String()
}

// Insertion places sourceHTML directly after the element with ElementIndex.
type Insertion struct {
	ElementIndex int
	SourceHTML   string
}

// InsertSources splices citation markup after the referenced elements and
// returns the modified document body. Unknown element indexes are skipped.
func InsertSources(html string, insertions []Insertion) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse article html: %w", err)
	}

	byIndex := make(map[int]*goquery.Selection)
	doc.Find("h2, h3, p").Each(func(i int, sel *goquery.Selection) {
		byIndex[i+1] = sel
	})

	for _, ins := range insertions {
		sel, ok := byIndex[ins.ElementIndex]
		if !ok {
			continue
		}
		sel.AfterHtml(ins.SourceHTML)
	}

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("serialize article html: %w", err)
	}
	return strings.TrimSpace(out), nil
}

var (
	metricPattern      = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:%|percent|billion|million|trillion|yen|dollars|usd|users|hours)`)
	resultPattern      = regexp.MustCompile(`(?i)reduc|improv|increas|shorten|achiev|growth|sav`)
	superlativePattern = regexp.MustCompile(`(?i)\b(?:largest|biggest|fastest|first|only|leading|top|no\.\s*1|number one|best)\b`)
	properNounFact     = regexp.MustCompile(`\b[A-Z][A-Za-z0-9&.-]+\b[^.]*\d`)
)

// MightNeedSource is a cheap pre-filter for paragraphs likely to require a
// citation: concrete metrics tied to outcomes, superlative claims, or a named
// entity paired with a figure. The requirement agent gets these as hints.
func MightNeedSource(el Element) bool {
	if el.Tag != "p" {
		return false
	}
	if superlativePattern.MatchString(el.Text) {
		return true
	}
	if metricPattern.MatchString(el.Text) && resultPattern.MatchString(el.Text) {
		return true
	}
	return properNounFact.MatchString(el.Text) && metricPattern.MatchString(el.Text)
}
