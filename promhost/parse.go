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

// Package promhost implements the host oracle over a Prometheus exposition
// endpoint: scraped series are indexed into a dictionary that resolves
// metric names to ids and descriptors for the binder.
package promhost

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/model/textparse"
	"github.com/prometheus/prometheus/model/timestamp"
)

// ParsedSeries is a single sample scraped from an exposition endpoint,
// along with the metric type the exposition declared for its family (empty
// when no TYPE line preceded it).
type ParsedSeries struct {
	Labels     labels.Labels
	Value      float64
	Timestamp  int64
	MetricType textparse.MetricType
}

// ParseTextData parses a Prometheus text-format exposition into a series
// list, defaulting any unstamped sample to nowish.
func ParseTextData(data []byte, nowish time.Time) ([]ParsedSeries, error) {
	return ParseTextDataWithAdditionalLabels(data, nowish, nil)
}

// ParseTextDataWithAdditionalLabels is ParseTextData plus a fixed label set
// merged into every series, used to stamp the scrape origin on multi-target
// scrapes.
func ParseTextDataWithAdditionalLabels(data []byte, nowish time.Time, extra map[string]string) ([]ParsedSeries, error) {
	parser := textparse.NewPromParser(data)
	defaultTS := timestamp.FromTime(nowish)

	var series []ParsedSeries
	types := map[string]textparse.MetricType{}
	for {
		entry, err := parser.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("unable to parse exposition text: %w", err)
		}
		switch entry {
		case textparse.EntryType:
			name, typ := parser.Type()
			types[string(name)] = typ
		case textparse.EntrySeries:
			_, ts, val := parser.Series()
			var lbls labels.Labels
			parser.Metric(&lbls)
			if len(extra) > 0 {
				merged := lbls.Map()
				for k, v := range extra {
					merged[k] = v
				}
				lbls = labels.FromMap(merged)
			}
			sampleTS := defaultTS
			if ts != nil {
				sampleTS = *ts
			}
			series = append(series, ParsedSeries{
				Labels:     lbls,
				Value:      val,
				Timestamp:  sampleTS,
				MetricType: typeFor(types, lbls.Get(labels.MetricName)),
			})
		}
	}
	return series, nil
}

// typeFor resolves a sample name to its family's declared TYPE. Histogram
// and summary samples carry suffixes the TYPE line does not, so a direct
// miss retries with the suffix stripped.
func typeFor(types map[string]textparse.MetricType, name string) textparse.MetricType {
	if t, ok := types[name]; ok {
		return t
	}
	for _, suffix := range []string{"_sum", "_count", "_bucket"} {
		if strings.HasSuffix(name, suffix) {
			if t, ok := types[strings.TrimSuffix(name, suffix)]; ok {
				return t
			}
		}
	}
	return textparse.MetricTypeUnknown
}
