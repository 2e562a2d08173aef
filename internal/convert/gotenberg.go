// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/docgen/internal/httputil"
)

const gotenbergRoute = "/forms/libreoffice/convert"

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// GotenbergConverter converts documents by uploading them to a Gotenberg
// service, which runs LibreOffice behind an HTTP API. Gotenberg only
// produces PDF.
type GotenbergConverter struct {
	endpoint   string
	client     *http.Client
	maxRetries int
}

// NewGotenbergConverter returns a converter for the service at baseURL.
// A nil client uses a default client with no timeout; bound conversions
// through the context instead.
func NewGotenbergConverter(baseURL string, client *http.Client, maxRetries int) (*GotenbergConverter, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gotenberg URL %q", baseURL)
	}
	if client == nil {
		client = &http.Client{}
	}
	return &GotenbergConverter{
		endpoint:   u.String() + gotenbergRoute,
		client:     client,
		maxRetries: maxRetries,
	}, nil
}

// Convert uploads src as document.docx and returns the PDF response body.
func (g *GotenbergConverter) Convert(ctx context.Context, src []byte, ext string) ([]byte, error) {
	if format := normalizeExt(ext); format != "pdf" {
		return nil, conversionError("gotenberg", fmt.Errorf("gotenberg cannot produce %s output", format))
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("files", sofficeInput)
	if err != nil {
		return nil, conversionError("gotenberg", fmt.Errorf("building upload: %w", err))
	}
	if _, err := fw.Write(src); err != nil {
		return nil, conversionError("gotenberg", fmt.Errorf("building upload: %w", err))
	}
	if err := mw.Close(); err != nil {
		return nil, conversionError("gotenberg", fmt.Errorf("building upload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body.Bytes()))
	if err != nil {
		return nil, conversionError("gotenberg", fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := httputil.DoWithRetry(ctx, g.client, req, g.maxRetries)
	if err != nil {
		return nil, conversionError("gotenberg", fmt.Errorf("calling %s: %w", g.endpoint, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, conversionError("gotenberg", fmt.Errorf("gotenberg returned %s: %s", resp.Status, strings.TrimSpace(string(msg))))
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, conversionError("gotenberg", fmt.Errorf("reading gotenberg response: %w", err))
	}
	if len(out) == 0 {
		return nil, conversionError("gotenberg", fmt.Errorf("gotenberg returned an empty document"))
	}
	return out, nil
}
