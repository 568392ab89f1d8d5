// Package dl implements the chunked scene download used by the load
// pipeline: a single cancellable GET whose body is read incrementally with
// progress reported after every chunk.
package dl

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Progress receives download progress after each chunk. pct is 0-100 when
// the server sent a usable content length; otherwise known is false and pct
// is 0 (indeterminate).
type Progress func(pct int, known bool)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.Code)
}

var client = &http.Client{Timeout: 5 * time.Minute}

const chunkSize = 64 * 1024

// Fetch streams url into memory chunk by chunk and returns the assembled
// buffer. Cancelling ctx aborts the transfer mid-stream; the ctx error is
// returned unwrapped so callers can tell supersession from real failures.
func Fetch(ctx context.Context, url string, progress Progress) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	total := resp.ContentLength
	var buf []byte
	if total > 0 {
		buf = make([]byte, 0, total)
	}

	chunk := make([]byte, chunkSize)
	var received int64
	for {
		n, err := resp.Body.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			received += int64(n)
			report(progress, received, total)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
	}

	return buf, nil
}

func report(progress Progress, received, total int64) {
	if progress == nil {
		return
	}
	if total <= 0 {
		progress(0, false)
		return
	}
	pct := int(math.Round(float64(received) / float64(total) * 100))
	if pct > 100 {
		pct = 100
	}
	progress(pct, true)
}
