package signal

import "regexp"

// tickerExpr matches the $-prefix convention: a dollar sign followed by
// one to five uppercase ASCII letters. Input text is matched as-is and is
// never upper-cased first; the uppercase requirement is the signal.
var tickerExpr = regexp.MustCompile(`\$([A-Z]{1,5})`)

// ExtractTickers returns the distinct ticker symbols found in title and
// body, with the $ stripped. The title is scanned before the body and
// duplicates across the two fields collapse to the first occurrence.
func ExtractTickers(title, body string) []string {
	seen := map[string]struct{}{}
	var tickers []string
	for _, text := range []string{title, body} {
		for _, match := range tickerExpr.FindAllStringSubmatch(text, -1) {
			sym := match[1]
			if _, ok := seen[sym]; ok {
				continue
			}
			seen[sym] = struct{}{}
			tickers = append(tickers, sym)
		}
	}
	return tickers
}

// TitleHasTicker reports whether the title alone carries a $-prefixed symbol.
func TitleHasTicker(title string) bool {
	return tickerExpr.MatchString(title)
}
