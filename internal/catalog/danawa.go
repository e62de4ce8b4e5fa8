package catalog

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Danawa extracts listings from the Danawa car catalog list pages.
//
// The page carries three parallel repeating groups paired by position:
// `a.image > img` (model name in alt, thumbnail in src), `div.detail_middle`
// (manufacturer logo alt plus a div.spec of span segments), and a `strong`
// price per listing. Spec segments follow a positional convention — first is
// the launch date, second the body type, third the fuel list — with
// string-convention segments after that: "복합연비"/"복합전비" prefixes mark
// efficiency, a "cc" or "용량" substring marks the resource figure, and a
// colon marks the delivery wait period.
type Danawa struct{}

var _ Extractor = Danawa{}

// Extract walks the page and returns one Listing per thumbnail anchor. Groups
// that fall off the end of a shorter parallel list leave their fields empty.
func (Danawa) Extract(doc *goquery.Document) []Listing {
	var listings []Listing
	doc.Find("a.image").Each(func(_ int, a *goquery.Selection) {
		img := a.Find("img").First()
		listings = append(listings, Listing{
			ModelName: strings.TrimSpace(img.AttrOr("alt", "")),
			ImageURL:  strings.TrimSpace(img.AttrOr("src", "")),
			PriceUnit: PriceUnitKRW,
		})
	})

	doc.Find("div.detail_middle").Each(func(i int, detail *goquery.Selection) {
		if i >= len(listings) {
			return
		}
		l := &listings[i]
		l.Manufacturer = strings.TrimSpace(detail.Find("img").First().AttrOr("alt", ""))

		var specs []string
		detail.Find("div.spec span").Each(func(_ int, span *goquery.Selection) {
			if s := strings.TrimSpace(span.Text()); s != "" {
				specs = append(specs, s)
			}
		})
		applySpecs(l, specs)
	})

	doc.Find("strong").Each(func(i int, price *goquery.Selection) {
		if i >= len(listings) {
			return
		}
		listings[i].PriceRaw = strings.TrimSpace(price.Text())
	})

	return listings
}

// applySpecs decodes the positional/string-convention spec segments into a
// listing. Unknown segments are ignored.
func applySpecs(l *Listing, specs []string) {
	if len(specs) > 0 {
		launch := strings.TrimSpace(strings.ReplaceAll(specs[0], ". 출시", ""))
		l.LaunchDate = strings.ReplaceAll(launch, ".", "-")
	}
	if len(specs) > 1 {
		l.BodyType = specs[1]
	}
	if len(specs) > 2 {
		for _, f := range strings.Split(specs[2], ",") {
			if f = strings.TrimSpace(f); f != "" {
				l.Fuels = append(l.Fuels, f)
			}
		}
	}

	for _, spec := range specs {
		switch {
		case strings.HasPrefix(spec, "복합연비"):
			l.EfficiencyType = "복합연비"
			l.EfficiencyAmount = afterFirstSpace(spec)
		case strings.HasPrefix(spec, "복합전비"):
			l.EfficiencyType = "복합전비"
			l.EfficiencyAmount = afterFirstSpace(spec)
		}

		switch {
		case strings.Contains(spec, "용량"):
			l.ResourceType = "배터리 용량"
			parts := strings.SplitN(spec, "용량", 2)
			l.ResourceAmount = strings.TrimSpace(parts[len(parts)-1])
		case strings.Contains(spec, "cc"):
			l.ResourceType = "배기량"
			l.ResourceAmount = spec
		}

		if i := strings.Index(spec, ":"); i >= 0 {
			l.WaitPeriod = strings.TrimSpace(spec[i+1:])
		}
	}
}

func afterFirstSpace(s string) string {
	_, rest, found := strings.Cut(s, " ")
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}
