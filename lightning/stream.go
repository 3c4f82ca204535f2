package lightning

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// PaidInvoices subscribes to the host's payment SSE stream and delivers every
// settled incoming payment on the returned channel. The subscription outlives
// individual connection failures: it reconnects with a backoff until ctx is
// cancelled, at which point the channel is closed.
func (c *HTTPClient) PaidInvoices(ctx context.Context) <-chan Payment {
	out := make(chan Payment)

	go func() {
		defer close(out)
		var backoff time.Duration
		for {
			start := time.Now()
			if err := c.streamPayments(ctx, out); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Msg("payment stream disconnected, reconnecting")
			}
			backoff = nextBackoff(backoff, time.Since(start))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}()

	return out
}

// healthyStreamAge is how long a connection must survive before a drop counts
// as transient rather than another failure in a flapping streak.
const healthyStreamAge = time.Minute

// nextBackoff returns the wait before the next reconnect attempt: 1s after a
// healthy stream, otherwise doubling the previous wait up to 30s.
func nextBackoff(previous, connected time.Duration) time.Duration {
	if previous == 0 || connected >= healthyStreamAge {
		return time.Second
	}
	if previous >= 30*time.Second {
		return previous
	}
	return 2 * previous
}

func (c *HTTPClient) streamPayments(ctx context.Context, out chan<- Payment) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/payments/sse", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("X-Api-Key", c.apiKey)

	// No client timeout here: the SSE connection is meant to stay open.
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if event != "payment-received" {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			var payment Payment
			if err := json.Unmarshal([]byte(data), &payment); err != nil {
				log.Warn().Err(err).Str("data", data).Msg("skipping malformed payment event")
				continue
			}
			payment.Settled = true
			select {
			case out <- payment:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return scanner.Err()
}
