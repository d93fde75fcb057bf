// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"standpress/internal/imaging"
)

// MaxImageBytes limits any image pulled into a PDF.
const MaxImageBytes = 10 << 20

// maxRedirects bounds redirects followed from an allowed host.
const maxRedirects = 3

// ErrSourceNotAllowed is returned for image sources outside the bucket and
// the configured hosts.
var ErrSourceNotAllowed = errors.New("image source not allowed")

// ObjectReader reads objects from the service's own bucket.
// *storage.Client satisfies it.
type ObjectReader interface {
	ExtractS3Key(rawURL string) (string, bool)
	Download(ctx context.Context, key string) ([]byte, error)
}

// SourceLoader resolves images from data URIs, from the object store when
// the URL points into it, and over https from an explicit host allow-list.
// Anything else is refused so that saved designs cannot make the server
// request arbitrary addresses.
type SourceLoader struct {
	objects ObjectReader
	hosts   map[string]bool
	client  *http.Client
}

// NewSourceLoader creates a loader. objects may be nil when S3 is not
// configured; with no hosts, remote images are never fetched.
func NewSourceLoader(objects ObjectReader, hosts ...string) *SourceLoader {
	l := &SourceLoader{objects: objects, hosts: make(map[string]bool)}
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			l.hosts[h] = true
		}
	}
	l.client = &http.Client{
		Timeout: 15 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if !l.allowed(req.URL) {
				return fmt.Errorf("%w: redirect to %s", ErrSourceNotAllowed, req.URL.Host)
			}
			return nil
		},
	}
	return l
}

// Load implements ImageLoader.
func (l *SourceLoader) Load(ctx context.Context, src string) ([]byte, error) {
	if imaging.IsDataURI(src) {
		return imaging.Fetch(ctx, nil, src, MaxImageBytes)
	}
	if l.objects != nil {
		if key, ok := l.objects.ExtractS3Key(src); ok {
			data, err := l.objects.Download(ctx, key)
			if err != nil {
				return nil, err
			}
			if len(data) > MaxImageBytes {
				return nil, fmt.Errorf("object %s exceeds %d bytes", key, MaxImageBytes)
			}
			return data, nil
		}
	}
	u, err := url.Parse(src)
	if err != nil || !l.allowed(u) {
		return nil, fmt.Errorf("%w: %q", ErrSourceNotAllowed, src)
	}
	return imaging.Fetch(ctx, l.client, src, MaxImageBytes)
}

func (l *SourceLoader) allowed(u *url.URL) bool {
	return u.Scheme == "https" && u.User == nil && l.hosts[strings.ToLower(u.Hostname())]
}
