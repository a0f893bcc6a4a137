package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pkgship/pkgship/internal/ports"
)

const (
	v2PushPath = "/api/v2/package"
	v1PushPath = "/api/v1/PushPackage"

	apiKeyHeader = "X-Api-Key"
)

// GalleryChannel implements ports.GalleryChannel over HTTP. V2 endpoints take
// a PUT with the credential in a header; V1 endpoints take a POST with the
// credential as a form field. Construction performs no I/O.
type GalleryChannel struct {
	endpoint string
	v1       bool
	client   ports.HTTPClient
	logger   zerolog.Logger
}

// NewGalleryChannel creates a channel bound to the endpoint and protocol
// variant.
func NewGalleryChannel(endpoint string, v1 bool, client ports.HTTPClient, logger zerolog.Logger) *GalleryChannel {
	return &GalleryChannel{
		endpoint: endpoint,
		v1:       v1,
		client:   client,
		logger:   logger,
	}
}

// Factory returns a ports.ChannelFactory producing HTTP gallery channels
// that share the given client and logger.
func Factory(client ports.HTTPClient, logger zerolog.Logger) ports.ChannelFactory {
	return func(endpoint string, v1 bool) ports.GalleryChannel {
		return NewGalleryChannel(endpoint, v1, client, logger)
	}
}

// Source returns the endpoint identity the channel was constructed for.
func (c *GalleryChannel) Source() string { return c.endpoint }

// IsV1 reports whether the channel speaks the V1 protocol variant.
func (c *GalleryChannel) IsV1() bool { return c.v1 }

// Push uploads the package stream. Application-level failures (non-2xx
// responses) are reported through the sink; transport faults, including
// timeouts, are returned without a terminal notification and left to the
// caller to classify.
func (c *GalleryChannel) Push(ctx context.Context, credential string, stream io.ReadSeeker, sink ports.ProgressSink, meta ports.PushMetadata) error {
	req, err := c.buildRequest(ctx, credential, stream, sink, meta)
	if err != nil {
		sink.Error(err)
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		msg := strings.TrimSpace(string(respBody))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		sink.Error(fmt.Errorf("server returned %d: %s", resp.StatusCode, msg))
		return nil
	}

	c.logger.Debug().
		Str("endpoint", c.endpoint).
		Int("status", resp.StatusCode).
		Msg("package accepted")
	sink.Completed()
	return nil
}

// buildRequest assembles the multipart upload request for the channel's
// protocol variant.
func (c *GalleryChannel) buildRequest(ctx context.Context, credential string, stream io.ReadSeeker, sink ports.ProgressSink, meta ports.PushMetadata) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if c.v1 {
		if err := writer.WriteField("apikey", credential); err != nil {
			return nil, fmt.Errorf("write credential field: %w", err)
		}
	}

	filename := meta.Name + "." + meta.Version + ".nupkg"
	part, err := writer.CreateFormFile("package", filename)
	if err != nil {
		return nil, fmt.Errorf("create package field: %w", err)
	}
	if _, err := io.Copy(part, stream); err != nil {
		return nil, fmt.Errorf("read package stream: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart: %w", err)
	}

	total := int64(body.Len())
	method := http.MethodPut
	url := strings.TrimRight(c.endpoint, "/") + v2PushPath
	if c.v1 {
		method = http.MethodPost
		url = strings.TrimRight(c.endpoint, "/") + v1PushPath
	}

	req, err := http.NewRequestWithContext(ctx, method, url, newProgressReader(&body, total, sink.Progress))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = total

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Push-Attempt-Id", meta.AttemptID)
	req.Header.Set("X-Package-Id", meta.Name)
	req.Header.Set("X-Package-Version", meta.Version)
	if !c.v1 {
		req.Header.Set(apiKeyHeader, credential)
	}
	return req, nil
}
