package pricetracker

import (
	"context"
	"fmt"
	"pricewatch-backend/lib/telemetry"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// FetchError reports a failed page retrieval: either the transport gave
// up or the site answered with a non-success status. Attempts counts
// every try including retries.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %v after %d attempt(s)", e.URL, e.Err, e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchClient builds the outbound client used for product pages: a
// fixed browser identity, a bounded timeout and a capped
// exponential-backoff retry for transient failures.
func NewFetchClient() *resty.Client {
	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(time.Second * 30)
	client.SetRetryCount(3)
	client.SetRetryWaitTime(time.Millisecond * 500)
	client.SetRetryMaxWaitTime(time.Second * 10)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		return err != nil || res.StatusCode() >= 500
	})

	telemetry.InstrumentResty(client, "services/pricetracker/http")
	return client
}

func fetchPage(ctx context.Context, client *resty.Client, url string) ([]byte, error) {
	res, err := client.R().
		SetContext(ctx).
		Get(url)

	attempts := 1
	if res != nil && res.Request != nil {
		attempts = res.Request.Attempt
	}
	if err != nil {
		return nil, &FetchError{URL: url, Attempts: attempts, Err: err}
	}
	if res.IsError() {
		return nil, &FetchError{URL: url, StatusCode: res.StatusCode(), Attempts: attempts}
	}

	return res.Body(), nil
}
