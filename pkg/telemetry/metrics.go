// Copyright 2026 © The Prefvec Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EngineMetrics tracks profile mutations, similarity queries, and store
// failures. A nil *EngineMetrics is valid and records nothing, so
// callers can leave metrics unwired in tests.
type EngineMetrics struct {
	profileUpdates    metric.Int64Counter
	similarityQueries metric.Int64Counter
	storeErrors       metric.Int64Counter
}

// NewEngineMetrics creates the engine instrument set on the global meter.
func NewEngineMetrics() (*EngineMetrics, error) {
	meter := otel.Meter("prefvec/engine")

	profileUpdates, err := meter.Int64Counter(
		"prefvec.profile.updates",
		metric.WithDescription("Profile mutations by operation"),
	)
	if err != nil {
		return nil, err
	}

	similarityQueries, err := meter.Int64Counter(
		"prefvec.similarity.queries",
		metric.WithDescription("Similarity top-k queries served"),
	)
	if err != nil {
		return nil, err
	}

	storeErrors, err := meter.Int64Counter(
		"prefvec.store.errors",
		metric.WithDescription("Vector store failures by operation"),
	)
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		profileUpdates:    profileUpdates,
		similarityQueries: similarityQueries,
		storeErrors:       storeErrors,
	}, nil
}

// RecordProfileUpdate counts one successful profile mutation.
func (m *EngineMetrics) RecordProfileUpdate(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.profileUpdates.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

// RecordSimilarityQuery counts one served top-k query.
func (m *EngineMetrics) RecordSimilarityQuery(ctx context.Context) {
	if m == nil {
		return
	}
	m.similarityQueries.Add(ctx, 1)
}

// RecordStoreError counts one store failure.
func (m *EngineMetrics) RecordStoreError(ctx context.Context, op string) {
	if m == nil {
		return
	}
	m.storeErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
