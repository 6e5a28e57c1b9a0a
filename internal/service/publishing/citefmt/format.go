// Package citefmt renders citation records into bibliography display text.
// Formatting is a pure function of the record; the store and the editing
// surface never depend on it.
package citefmt

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"pressroom/internal/domain"
	"pressroom/internal/domain/models/publishing"
)

// Style selects the citation display convention.
type Style string

const (
	APA Style = "apa"
	MLA Style = "mla"
)

// Format renders a citation in the given style. The five supported kinds
// each assemble a different ordered field list; any other kind means the
// record was corrupted upstream and is a fatal data-model violation.
func Format(c publishing.Citation, style Style) (string, error) {
	switch c.Kind {
	case publishing.ReferenceBook,
		publishing.ReferenceArticle,
		publishing.ReferenceWebsite,
		publishing.ReferenceJournal,
		publishing.ReferenceThesis:
		// supported
	default:
		return "", &domain.UnsupportedReferenceKindError{Kind: string(c.Kind)}
	}

	switch style {
	case APA:
		return formatAPA(c), nil
	case MLA:
		return formatMLA(c), nil
	default:
		return "", fmt.Errorf("unsupported citation style: %q", style)
	}
}

func formatAPA(c publishing.Citation) string {
	author := apaAuthor(c)
	title := capitalizeFirst(c.Title)

	switch c.Kind {
	case publishing.ReferenceBook:
		return joinSentences(author, paren(yearOf(c.Date)), title, c.Publisher)

	case publishing.ReferenceThesis:
		if title != "" {
			title += " [Thesis]"
		}
		return joinSentences(author, paren(yearOf(c.Date)), title, c.Publisher)

	case publishing.ReferenceJournal:
		ref := c.Journal
		if c.Volume != "" {
			ref = joinNonEmpty(", ", ref, c.Volume)
			if c.Issue != "" {
				ref += "(" + c.Issue + ")"
			}
		}
		ref = joinNonEmpty(", ", ref, c.Pages)
		locator := c.DOI
		if locator == "" {
			locator = c.URL
		}
		return joinSentences(author, paren(yearOf(c.Date)), title, ref, locator)

	default: // article, website
		return joinSentences(author, paren(apaDate(c.Date)), title, c.Publisher, c.URL)
	}
}

func formatMLA(c publishing.Citation) string {
	author := mlaAuthor(c)
	title := capitalizeFirst(c.Title)

	switch c.Kind {
	case publishing.ReferenceBook:
		return joinSentences(author, title, joinNonEmpty(", ", c.Publisher, yearOf(c.Date)))

	case publishing.ReferenceThesis:
		return joinSentences(author, title, yearOf(c.Date), joinNonEmpty(", ", c.Publisher, "Thesis"))

	case publishing.ReferenceJournal:
		ref := c.Journal
		if c.Volume != "" {
			ref = joinNonEmpty(", ", ref, "vol. "+c.Volume)
		}
		if c.Issue != "" {
			ref = joinNonEmpty(", ", ref, "no. "+c.Issue)
		}
		ref = joinNonEmpty(", ", ref, yearOf(c.Date))
		if c.Pages != "" {
			ref = joinNonEmpty(", ", ref, "pp. "+c.Pages)
		}
		return joinSentences(author, quoted(title), ref)

	default: // article, website
		return joinSentences(author, quoted(title),
			joinNonEmpty(", ", c.Publisher, mlaDate(c.Date), c.URL))
	}
}

// apaAuthor renders "Last, F." without the closing period (the sentence
// joiner supplies it).
func apaAuthor(c publishing.Citation) string {
	last := capitalizeFirst(c.LastName)
	first := c.FirstName
	if last == "" && first == "" {
		return ""
	}
	if first == "" {
		return last
	}
	initial := strings.ToUpper(string([]rune(first)[0]))
	if last == "" {
		return initial + "."
	}
	return last + ", " + initial + "."
}

// mlaAuthor renders "First Last" with both names capitalized.
func mlaAuthor(c publishing.Citation) string {
	return joinNonEmpty(" ", capitalizeFirst(c.FirstName), capitalizeFirst(c.LastName))
}

// parseDate splits an ISO-ish date string into its components. Day and
// month are zero when absent.
func parseDate(date string) (year, month, day int, ok bool) {
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, date); err == nil {
			switch layout {
			case "2006-01-02":
				return t.Year(), int(t.Month()), t.Day(), true
			case "2006-01":
				return t.Year(), int(t.Month()), 0, true
			default:
				return t.Year(), 0, 0, true
			}
		}
	}
	return 0, 0, 0, false
}

func yearOf(date string) string {
	year, _, _, ok := parseDate(date)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%d", year)
}

// apaDate renders "Month D, YYYY", falling back to the year when the day
// is absent.
func apaDate(date string) string {
	year, month, day, ok := parseDate(date)
	if !ok {
		return ""
	}
	if day == 0 {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%s %d, %d", time.Month(month).String(), day, year)
}

// mlaDate renders "D Mon. YYYY", falling back to the year when the day
// is absent.
func mlaDate(date string) string {
	year, month, day, ok := parseDate(date)
	if !ok {
		return ""
	}
	if day == 0 {
		return fmt.Sprintf("%d", year)
	}
	return fmt.Sprintf("%d %s. %d", day, time.Month(month).String()[:3], year)
}

func capitalizeFirst(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func quoted(s string) string {
	if s == "" {
		return ""
	}
	return `"` + s + `"`
}

func paren(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}

// joinSentences joins non-empty parts with ". ", collapsing a part's own
// trailing period so author abbreviations do not double up.
func joinSentences(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.TrimSuffix(strings.TrimSpace(p), ".")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ". ")
}

func joinNonEmpty(sep string, parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
