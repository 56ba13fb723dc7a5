// Package comic talks to the strip website.
//
// A strip page lives at base URL + "YYYY-MM-DD". The image URL is found by an
// Extractor, a regular expression with an optional capture group and prefix.
// Two rules are built in:
//
//   - attribute (default): data-image="//assets.amuniversal.com/..." made
//     absolute with "https:"
//   - direct: a fully-qualified https://assets.amuniversal.com/... URL
//
// Any other pattern can be configured, so a change in the page format only
// needs a new rule.
//
// Usage:
//
//	client := comic.NewClient(comic.DefaultBaseURL, 30*time.Second, comic.AttributeExtractor(), log)
//	found, url, err := client.FetchImageURL(ctx, date)
//	if err == nil && found {
//	    body, _, err := client.DownloadImage(ctx, url)
//	    ...
//	}
package comic
