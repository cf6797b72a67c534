package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sourcegraph/conc"
)

// ImageData is one downloaded image payload ready for a multimodal prompt.
type ImageData struct {
	URL      string
	MIMEType string
	Data     []byte
}

// FetchImages downloads up to the configured number of image payloads
// concurrently. Failures are logged and skipped; an analysis can always
// proceed text-only, so this never returns an error.
func (f *Fetcher) FetchImages(ctx context.Context, urls []string) []ImageData {
	if len(urls) == 0 {
		return nil
	}
	if len(urls) > f.maxImages {
		urls = urls[:f.maxImages]
	}

	results := make([]*ImageData, len(urls))
	var wg conc.WaitGroup
	for i, imageURL := range urls {
		i, imageURL := i, imageURL
		wg.Go(func() {
			img, err := f.fetchImage(ctx, imageURL)
			if err != nil {
				f.logger.Debug().Str("url", imageURL).Err(err).Msg("image skipped")
				return
			}
			results[i] = img
		})
	}
	wg.Wait()

	images := make([]ImageData, 0, len(urls))
	for _, img := range results {
		if img != nil {
			images = append(images, *img)
		}
	}
	return images
}

func (f *Fetcher) fetchImage(ctx context.Context, imageURL string) (*ImageData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range f.profiles[0].Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", f.maxImageBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	mimeType, _, _ = strings.Cut(mimeType, ";")
	mimeType = strings.TrimSpace(mimeType)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("not an image: %s", mimeType)
	}

	return &ImageData{URL: imageURL, MIMEType: mimeType, Data: data}, nil
}
