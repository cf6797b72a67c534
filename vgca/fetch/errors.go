package fetch

import "fmt"

// FetchError reports a failed retrieval after every header profile was
// tried. It always names the URL so the caller can surface it.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// EmptyContentError means the page responded but no article text survived
// extraction. Callers distinguish it from FetchError to suggest manual
// text entry instead of a retry.
type EmptyContentError struct {
	URL string
}

func (e *EmptyContentError) Error() string {
	return fmt.Sprintf("no extractable content at %s", e.URL)
}
