// Package rss provides feed fetching and parsing.
package rss

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bryan-buckman/headlines/internal/model"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a whole fetch when no client is supplied.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent with every feed request.
const DefaultUserAgent = "headlines/1.0"

// Ingestor retrieves a feed document and turns it into articles.
// It holds no per-fetch state and is safe for concurrent use.
type Ingestor struct {
	client    *http.Client
	userAgent string
	log       logrus.FieldLogger
	parser    *gofeed.Parser
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithHTTPClient sets the client used for feed requests.
func WithHTTPClient(c *http.Client) Option {
	return func(in *Ingestor) {
		in.client = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(in *Ingestor) {
		in.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(in *Ingestor) {
		in.log = l
	}
}

// NewIngestor creates an ingestor.
func NewIngestor(opts ...Option) *Ingestor {
	in := &Ingestor{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.parser = gofeed.NewParser()
	in.parser.Client = in.client
	in.parser.UserAgent = in.userAgent
	return in
}

// Fetch downloads the feed at feedURL and parses its items in document order.
// The result is never nil on success. Any failure yields a *FeedError and no
// articles.
func (in *Ingestor) Fetch(ctx context.Context, feedURL string) ([]model.Article, error) {
	if err := validateURL(feedURL); err != nil {
		return nil, &FeedError{URL: feedURL, Stage: StageRequest, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &FeedError{URL: feedURL, Stage: StageRequest, Err: err}
	}
	req.Header.Set("User-Agent", in.userAgent)

	start := time.Now()
	resp, err := in.client.Do(req)
	if err != nil {
		return nil, &FeedError{URL: feedURL, Stage: StageTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FeedError{
			URL:   feedURL,
			Stage: StageStatus,
			Err:   fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body := &bodyReader{r: resp.Body}
	articles, err := Parse(body)
	if err != nil {
		// A broken connection mid-document surfaces through the decoder;
		// report it as the transport failure it is.
		if body.err != nil {
			return nil, &FeedError{URL: feedURL, Stage: StageTransport, Err: body.err}
		}
		return nil, &FeedError{URL: feedURL, Stage: StageParse, Err: err}
	}

	in.log.WithFields(logrus.Fields{
		"url":      feedURL,
		"articles": len(articles),
		"elapsed":  time.Since(start).String(),
	}).Debug("feed fetched")
	return articles, nil
}

// Channel fetches the feed and describes it.
func (in *Ingestor) Channel(ctx context.Context, feedURL string) (model.Channel, error) {
	if err := validateURL(feedURL); err != nil {
		return model.Channel{}, &FeedError{URL: feedURL, Stage: StageRequest, Err: err}
	}

	parsed, err := in.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return model.Channel{}, &FeedError{URL: feedURL, Stage: channelStage(err), Err: err}
	}

	return model.Channel{
		Title:       parsed.Title,
		Description: parsed.Description,
		Link:        parsed.Link,
		Language:    parsed.Language,
		Updated:     parsed.Updated,
		ItemCount:   len(parsed.Items),
	}, nil
}

func channelStage(err error) string {
	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) {
		return StageStatus
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return StageTransport
	}
	return StageParse
}

// validateURL accepts only absolute http(s) URLs.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("url %q is not absolute", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}

// bodyReader remembers the first read error other than io.EOF.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF && b.err == nil {
		b.err = err
	}
	return n, err
}
