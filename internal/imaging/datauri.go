// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package imaging

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// DataURI encodes data as a base64 data URI.
func DataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes a base64 data URI.
func ParseDataURI(uri string) (contentType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURI
	}
	meta, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if meta == "" {
		meta = "text/plain"
	}
	return meta, data, nil
}

// IsDataURI reports whether s is an inline data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// Fetch loads image bytes from a data URI or an http(s) URL, reading at most
// limit bytes. It does not check the host; callers decide which URLs are
// safe to request.
func Fetch(ctx context.Context, client *http.Client, src string, limit int64) ([]byte, error) {
	if IsDataURI(src) {
		_, data, err := ParseDataURI(src)
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > limit {
			return nil, fmt.Errorf("imaging: image exceeds %d bytes", limit)
		}
		return data, nil
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return nil, fmt.Errorf("imaging: unsupported image source %q", src)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("imaging: build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imaging: fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imaging: fetch %s: status %d", src, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("imaging: read %s: %w", src, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("imaging: image exceeds %d bytes", limit)
	}
	return data, nil
}
