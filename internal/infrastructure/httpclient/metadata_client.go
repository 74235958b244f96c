package httpclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"houses_market/internal/app/port"
	"houses_market/internal/domain/entity"
	"houses_market/internal/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnsupportedURI is returned for token URIs whose scheme cannot be fetched.
var ErrUnsupportedURI = errors.New("unsupported token uri")

// metadataDocument is the ERC-721 metadata JSON schema.
type metadataDocument struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Image       string                  `json:"image"`
	Attributes  []entity.TokenAttribute `json:"attributes"`
}

// MetadataClient fetches token metadata documents over HTTP.
type MetadataClient struct {
	client      *fasthttp.Client
	ipfsGateway string
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      port.Logger
}

// NewMetadataClient creates a MetadataClient. ratePerSecond <= 0 disables rate limiting.
func NewMetadataClient(ipfsGateway string, timeout time.Duration, ratePerSecond float64, burst int, logger port.Logger) *MetadataClient {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	if burst <= 0 {
		burst = 1
	}
	return &MetadataClient{
		client:      &fasthttp.Client{},
		ipfsGateway: strings.TrimRight(ipfsGateway, "/") + "/",
		timeout:     timeout,
		limiter:     rate.NewLimiter(limit, burst),
		logger:      logger,
	}
}

var _ port.MetadataFetcher = (*MetadataClient)(nil)

// ResolveURI maps ipfs:// URIs onto the configured gateway. http(s) URIs pass through.
func (c *MetadataClient) ResolveURI(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedURI, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return uri, nil
	case "ipfs":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.EscapedPath()
		}
		path = strings.TrimPrefix(strings.TrimPrefix(path, "/"), "ipfs/")
		if path == "" {
			return "", fmt.Errorf("%w: empty ipfs path in %q", ErrUnsupportedURI, uri)
		}
		return c.ipfsGateway + path, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedURI, uri)
	}
}

// Fetch resolves uri into a metadata record. data:application/json URIs are decoded inline.
func (c *MetadataClient) Fetch(ctx context.Context, uri string) (entity.TokenInfo, error) {
	info, err := c.fetch(ctx, uri)
	if err != nil {
		metrics.MetadataFetches.WithLabelValues("error").Inc()
		return entity.TokenInfo{}, err
	}
	metrics.MetadataFetches.WithLabelValues("ok").Inc()
	return info, nil
}

func (c *MetadataClient) fetch(ctx context.Context, uri string) (entity.TokenInfo, error) {
	if strings.HasPrefix(uri, "data:") {
		body, err := decodeDataURI(uri)
		if err != nil {
			return entity.TokenInfo{}, err
		}
		return decodeMetadata(uri, body)
	}

	requestURL, err := c.ResolveURI(uri)
	if err != nil {
		return entity.TokenInfo{}, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return entity.TokenInfo{}, fmt.Errorf("metadata rate limiter: %w", err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		err = c.client.DoDeadline(req, resp, deadline)
	} else {
		err = c.client.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		c.logger.Error("Failed to fetch token metadata", "url", requestURL, "error", err)
		return entity.TokenInfo{}, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Warn("Token metadata request failed", "url", requestURL, "statusCode", resp.StatusCode())
		return entity.TokenInfo{}, fmt.Errorf("metadata request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	// resp is released on return; decodeMetadata copies what it keeps.
	return decodeMetadata(uri, resp.Body())
}

func decodeMetadata(uri string, body []byte) (entity.TokenInfo, error) {
	var doc metadataDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return entity.TokenInfo{}, fmt.Errorf("failed to unmarshal metadata from %s: %w", uri, err)
	}
	return entity.TokenInfo{
		MetadataURI: uri,
		Name:        doc.Name,
		Description: doc.Description,
		Image:       doc.Image,
		Attributes:  doc.Attributes,
	}, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data uri", ErrUnsupportedURI)
	}
	if !strings.HasPrefix(header, "application/json") {
		return nil, fmt.Errorf("%w: data uri media type %q", ErrUnsupportedURI, header)
	}
	if strings.HasSuffix(header, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data uri: %w", err)
		}
		return decoded, nil
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to unescape data uri: %w", err)
	}
	return []byte(unescaped), nil
}
