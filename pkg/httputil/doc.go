// Package httputil provides the HTTP plumbing used to fetch page images.
//
// [Fetch] performs a GET with a size limit, reports every request to the
// registered [observability.HTTPHooks], and classifies failures: network
// errors, 5xx responses and 429 rate limits are wrapped in
// [RetryableError] so that [Retry] attempts them again, while 4xx
// responses fail immediately.
//
//	var body []byte
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    var err error
//	    body, err = httputil.Fetch(ctx, client, url, 32<<20)
//	    return err
//	})
//
// [Retry] uses exponential backoff: the delay doubles after each failed
// attempt and the wait is abandoned as soon as ctx is cancelled.
package httputil
