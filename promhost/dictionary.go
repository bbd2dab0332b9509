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
	"strings"
	"sync"

	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/model/textparse"
	"k8s.io/apimachinery/pkg/util/sets"

	"sigs.k8s.io/derived-metrics/ast"
	"sigs.k8s.io/derived-metrics/host"
)

// Dictionary indexes scraped series into the metric-metadata oracle the
// binder consults. Ids are dense, stable for the life of the Dictionary,
// and never carry the derived flag.
type Dictionary struct {
	mu     sync.RWMutex
	byName map[string]ast.MetricID
	byID   map[ast.MetricID]ast.Descriptor

	// dimensions/values track the label shape per metric, the way the
	// query completer wants it.
	dimensions map[string]sets.String
	values     map[string]map[string]sets.String

	// seen is keyed by label-set hash; collisions are acceptable, this is
	// functionally a bloom filter.
	seen sets.Set[uint64]
}

var _ host.Dictionary = &Dictionary{}

func NewDictionary() *Dictionary {
	return &Dictionary{
		byName:     map[string]ast.MetricID{},
		byID:       map[ast.MetricID]ast.Descriptor{},
		dimensions: map[string]sets.String{},
		values:     map[string]map[string]sets.String{},
		seen:       sets.New[uint64](),
	}
}

// Update indexes one scraped series: the first series of a metric fixes its
// id and descriptor, later ones only extend the label shape.
func (d *Dictionary) Update(m ParsedSeries) {
	hash := m.Labels.Hash()
	d.mu.RLock()
	known := d.seen.Has(hash)
	d.mu.RUnlock()
	if known {
		return
	}

	ls := m.Labels.Map()
	name, ok := ls[labels.MetricName]
	if !ok {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen.Insert(hash)
	if _, ok := d.byName[name]; !ok {
		id := ast.MetricID(len(d.byName) + 1)
		d.byName[name] = id
		d.byID[id] = descriptorFor(id, name, m)
		d.dimensions[name] = sets.NewString()
		d.values[name] = map[string]sets.String{}
	}
	for l, v := range ls {
		if l == labels.MetricName {
			continue
		}
		d.dimensions[name].Insert(l)
		if _, ok := d.values[name][l]; !ok {
			d.values[name][l] = sets.NewString()
		}
		d.values[name][l].Insert(v)
	}
	// A labelled metric is multi-valued: its instance domain is its own
	// name, so two different metrics never unify unless truly the same.
	if d.dimensions[name].Len() > 0 {
		desc := d.byID[d.byName[name]]
		desc.InstanceDomain = ast.InstanceDomain(name)
		d.byID[d.byName[name]] = desc
	}
}

// UpdateAll indexes every series of a scrape.
func (d *Dictionary) UpdateAll(series []ParsedSeries) {
	for _, s := range series {
		d.Update(s)
	}
}

// descriptorFor infers a descriptor from exposition metadata: every
// Prometheus sample is a float64, the TYPE line decides counter vs
// instant semantics, and well-known name parts decide units ("_bytes" or
// "_seconds" anywhere in the name, else a "_total" or "_count" suffix).
func descriptorFor(id ast.MetricID, name string, m ParsedSeries) ast.Descriptor {
	desc := ast.Descriptor{
		ID:        id,
		ValueType: ast.F64,
		Semantics: ast.Instant,
	}
	if m.MetricType == textparse.MetricTypeCounter {
		desc.Semantics = ast.Counter
	}
	switch {
	case strings.Contains(name, "_bytes"):
		desc.Units = ast.Units{DimSpace: 1, ScaleSpace: ast.ScaleByte}
	case strings.Contains(name, "_seconds"):
		desc.Units = ast.Units{DimTime: 1, ScaleTime: ast.ScaleSec}
	case strings.HasSuffix(name, "_total") || strings.HasSuffix(name, "_count"):
		desc.Units = ast.Units{DimCount: 1}
	}
	return desc
}

func (d *Dictionary) LookupName(name string) (ast.MetricID, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byName[name]
	if !ok {
		return 0, host.ErrNotFound
	}
	return id, nil
}

func (d *Dictionary) LookupDesc(id ast.MetricID) (ast.Descriptor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	desc, ok := d.byID[id]
	if !ok {
		return ast.Descriptor{}, host.ErrNotFound
	}
	return desc, nil
}

func (d *Dictionary) IsNonDerived(id ast.MetricID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.byID[id]
	return ok && !id.IsDerived()
}

// MetricNames lists every indexed metric name.
func (d *Dictionary) MetricNames() sets.String {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return sets.StringKeySet(d.byName)
}

// DimensionsFor lists the label names observed for a metric.
func (d *Dictionary) DimensionsFor(metricName string) sets.String {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dimensions[metricName]
}

// ValuesFor lists the observed values of one label of a metric.
func (d *Dictionary) ValuesFor(metricName, dimension string) sets.String {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dims, ok := d.values[metricName]
	if !ok {
		return nil
	}
	return dims[dimension]
}
