// Package scraper runs the incremental daily download loop.
//
// A run starts at the configured start date and walks forward one day at a
// time. Dates whose file already exists are skipped without a request, so a
// run picks up exactly where the previous one stopped. For every missing date
// the strip page is fetched, the image URL extracted and the image saved
// under {save_folder}/{year}/.
//
// A run ends in one of three ways:
//
//   - OutcomeReachedCutoff: the next missing date is after today
//   - OutcomeImageNotFound: a page did not contain the image
//   - OutcomeCountReached: the requested number of strips was saved
//
// Any network or filesystem error stops the run immediately and is returned.
//
// Usage:
//
//	s, err := scraper.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	result, err := s.Run(ctx)
package scraper
