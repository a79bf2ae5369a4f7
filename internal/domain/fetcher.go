package domain

import "context"

// Fetcher abstracts the external media-retrieval engine. Implementations
// perform one fetch attempt per call (including their own internal retries)
// and write the resulting files according to the output template.
//
// A failed fetch must be reported as a *FetchError; implementations never
// let an unexpected failure escape in a way that could abort a batch.
type Fetcher interface {
	// Fetch downloads the media behind url. outputTemplate is an absolute
	// path template inside the job workspace, in the retrieval engine's
	// own placeholder syntax.
	Fetch(ctx context.Context, url string, outputTemplate string) error
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string, outputTemplate string) error

func (f FetcherFunc) Fetch(ctx context.Context, url string, outputTemplate string) error {
	return f(ctx, url, outputTemplate)
}
