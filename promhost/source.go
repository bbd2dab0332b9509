/*
Copyright 2020 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package promhost

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"k8s.io/client-go/rest"
)

const instanceLabel = "instance"

// DataSource produces one scrape's worth of parsed series.
type DataSource interface {
	ScrapePrometheusEndpoint(ctx context.Context, nowish time.Time) ([]ParsedSeries, error)
}

// MultiSource fans a scrape out over several sources and concatenates the
// results.
type MultiSource struct {
	Sources []DataSource
}

func (d MultiSource) ScrapePrometheusEndpoint(ctx context.Context, nowish time.Time) ([]ParsedSeries, error) {
	accum := make([]ParsedSeries, 0)
	for _, src := range d.Sources {
		m, err := src.ScrapePrometheusEndpoint(ctx, nowish)
		if err != nil {
			return accum, err
		}
		accum = append(accum, m...)
	}
	return accum, nil
}

type httpSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource scrapes url through the transport restConfig describes;
// restConfig may be nil for plain unauthenticated endpoints.
func NewHTTPSource(url string, restConfig *rest.Config) (DataSource, error) {
	client := http.DefaultClient
	if restConfig != nil {
		rt, err := rest.TransportFor(restConfig)
		if err != nil {
			return nil, err
		}
		client = &http.Client{Transport: rt}
	}
	return &httpSource{url: url, client: client}, nil
}

func (s *httpSource) getInstanceLabel() map[string]string {
	return map[string]string{instanceLabel: s.url}
}

func (s *httpSource) ScrapePrometheusEndpoint(ctx context.Context, nowish time.Time) ([]ParsedSeries, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to construct metrics HTTP request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch raw metrics data: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read metrics response body: %w", err)
	}

	metrics, err := ParseTextDataWithAdditionalLabels(body, nowish, s.getInstanceLabel())
	if err != nil {
		return nil, fmt.Errorf("unable to parse metrics: %w", err)
	}
	return metrics, nil
}

type fileSource struct {
	path string
}

// NewFileSource reads a text-format exposition dump from disk; it backs the
// CLI's offline mode.
func NewFileSource(path string) DataSource {
	return &fileSource{path: path}
}

func (s *fileSource) ScrapePrometheusEndpoint(_ context.Context, nowish time.Time) ([]ParsedSeries, error) {
	body, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("unable to read metrics dump: %w", err)
	}
	return ParseTextData(body, nowish)
}
