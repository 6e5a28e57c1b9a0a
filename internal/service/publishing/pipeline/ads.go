package pipeline

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// insertAdMarkers walks level-2 headings in document order, skips the
// first skipFirst of them, then inserts a placeholder marker after every
// interval-th subsequent heading until maxAds markers are placed. The
// reserved TOC heading carries tocHeadingID and is not a content heading;
// it never counts toward the walk.
func insertAdMarkers(doc *goquery.Document, tocHeadingID string, skipFirst, interval, maxAds int) error {
	if interval <= 0 || maxAds <= 0 {
		return nil
	}
	if skipFirst < 0 {
		skipFirst = 0
	}

	inserted := 0
	seen := 0
	eligible := 0
	doc.Find("h2").Each(func(_ int, heading *goquery.Selection) {
		if tocHeadingID != "" && heading.AttrOr("id", "") == tocHeadingID {
			return
		}
		seen++
		if inserted >= maxAds || seen <= skipFirst {
			return
		}
		eligible++
		if eligible%interval == 0 {
			inserted++
			heading.AfterHtml(fmt.Sprintf(
				`<div class="ad-slot" data-ad-slot="%d"></div>`, inserted))
		}
	})
	return nil
}
