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

// Package metricsx self-instruments the derived-metric registry: counters
// for registrations and bind failures, and a gauge for open contexts. A
// nil-safe no-op collector keeps the registry's hot path free of
// conditionals when instrumentation is not wanted.
package metricsx

import "github.com/prometheus/client_golang/prometheus"

// Collector bundles the registry's own Prometheus metrics. A Collector
// built by NewNoop records nothing and registers nothing.
type Collector struct {
	registrations *prometheus.CounterVec
	bindFailures  prometheus.Counter
	openContexts  prometheus.Gauge
}

// New builds a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "derived_registrations_total",
			Help: "Derived-metric registration attempts, by outcome.",
		}, []string{"outcome"}),
		bindFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "derived_bind_failures_total",
			Help: "Registrations disabled while binding a context.",
		}),
		openContexts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "derived_open_contexts",
			Help: "Contexts currently open against the registry.",
		}),
	}
	reg.MustRegister(c.registrations, c.bindFailures, c.openContexts)
	return c
}

// NewNoop returns a Collector whose recorders all discard.
func NewNoop() *Collector {
	return &Collector{}
}

func (c *Collector) RegisterSuccess() {
	if c.registrations != nil {
		c.registrations.WithLabelValues("success").Inc()
	}
}

func (c *Collector) RegisterFailure() {
	if c.registrations != nil {
		c.registrations.WithLabelValues("error").Inc()
	}
}

func (c *Collector) BindFailure() {
	if c.bindFailures != nil {
		c.bindFailures.Inc()
	}
}

func (c *Collector) ContextOpened() {
	if c.openContexts != nil {
		c.openContexts.Inc()
	}
}

func (c *Collector) ContextClosed() {
	if c.openContexts != nil {
		c.openContexts.Dec()
	}
}
