// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianViews/services/views/measure"
)

var (
	// ErrNotFound indicates the run or measure does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRunID indicates the run ID is not a UUID.
	ErrInvalidRunID = errors.New("invalid run id")

	// ErrRunExists indicates a run with the same ID was already saved.
	ErrRunExists = errors.New("run already exists")
)

const (
	runPrefix     = "run/"
	measurePrefix = "measure/"
)

var tracer = otel.Tracer("aleutian.views.store")

// ==============================================================================
// Prometheus Metrics
// ==============================================================================

var (
	// resultsSaved counts persisted measure values.
	resultsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "views_results_saved_total",
		Help: "Total measure values persisted across all runs",
	})

	// storeOps counts store operations by operation and result.
	storeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "views_store_operations_total",
		Help: "Total result store operations by operation and result",
	}, []string{"operation", "result"})
)

// =============================================================================
// Run
// =============================================================================

// Run describes one persisted aggregation.
type Run struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Sources    []string  `json:"sources,omitempty"`
	MaxDepth   string    `json:"max_depth"`
	Components int       `json:"components"`
}

// NewRun creates a Run with a fresh ID.
func NewRun(sources []string, maxDepth string) Run {
	return Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Sources:   sources,
		MaxDepth:  maxDepth,
	}
}

func runKey(id string) []byte {
	return []byte(runPrefix + id)
}

func measureRunPrefix(id string) []byte {
	return []byte(measurePrefix + id + "/")
}

func measureKey(id string, key int) []byte {
	return append(measureRunPrefix(id), strconv.Itoa(key)...)
}

func encodeValue(v float64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(v))
	return buf
}

func decodeValue(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("corrupt measure value of %d bytes", len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func checkRunID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRunID, id)
	}
	return nil
}

// =============================================================================
// ResultStore
// =============================================================================

// ResultStore reads and writes aggregation runs.
//
// Thread Safety: Safe for concurrent use.
type ResultStore struct {
	db *DB
}

// NewResultStore creates a ResultStore over db.
func NewResultStore(db *DB) *ResultStore {
	return &ResultStore{db: db}
}

// Save writes the run record and every result in one transaction.
//
// Description:
//
//	run.Components is overwritten with len(results). Runs are immutable, so
//	saving an existing ID fails with ErrRunExists.
//
// Outputs:
//
//	error - ErrInvalidRunID, ErrRunExists, or a storage error.
func (s *ResultStore) Save(ctx context.Context, run Run, results measure.Results) (err error) {
	ctx, span := tracer.Start(ctx, "ResultStore.Save",
		trace.WithAttributes(
			attribute.String("store.run_id", run.ID),
			attribute.Int("store.results", len(results)),
		),
	)
	defer func() { endSpan(span, "save", err) }()

	if err := checkRunID(run.ID); err != nil {
		return err
	}
	run.Components = len(results)
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}

	err = s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(runKey(run.ID)); err == nil {
			return fmt.Errorf("%w: %s", ErrRunExists, run.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Set(runKey(run.ID), data); err != nil {
			return err
		}
		for _, key := range results.Keys() {
			if err := txn.Set(measureKey(run.ID, key), encodeValue(results[key])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	resultsSaved.Add(float64(len(results)))
	return nil
}

// Load returns one stored measure.
func (s *ResultStore) Load(ctx context.Context, runID string, key int) (value float64, err error) {
	ctx, span := tracer.Start(ctx, "ResultStore.Load",
		trace.WithAttributes(
			attribute.String("store.run_id", runID),
			attribute.Int("store.key", key),
		),
	)
	defer func() { endSpan(span, "load", err) }()

	if err := checkRunID(runID); err != nil {
		return 0, err
	}
	err = s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(measureKey(runID, key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: measure %d of run %s", ErrNotFound, key, runID)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value, err = decodeValue(val)
			return err
		})
	})
	return value, err
}

// LoadRun returns every stored measure of a run.
func (s *ResultStore) LoadRun(ctx context.Context, runID string) (results measure.Results, err error) {
	ctx, span := tracer.Start(ctx, "ResultStore.LoadRun",
		trace.WithAttributes(attribute.String("store.run_id", runID)),
	)
	defer func() { endSpan(span, "load_run", err) }()

	if err := checkRunID(runID); err != nil {
		return nil, err
	}
	results = make(measure.Results)
	err = s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(runKey(runID)); errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: run %s", ErrNotFound, runID)
		} else if err != nil {
			return err
		}

		prefix := measureRunPrefix(runID)
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key, err := strconv.Atoi(string(bytes.TrimPrefix(item.Key(), prefix)))
			if err != nil {
				return fmt.Errorf("corrupt measure key %q: %w", item.Key(), err)
			}
			if err := item.Value(func(val []byte) error {
				v, err := decodeValue(val)
				results[key] = v
				return err
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Runs returns every stored run, oldest first.
func (s *ResultStore) Runs(ctx context.Context) (runs []Run, err error) {
	ctx, span := tracer.Start(ctx, "ResultStore.Runs")
	defer func() { endSpan(span, "runs", err) }()

	err = s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(runPrefix), PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var run Run
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &run)
			}); err != nil {
				return fmt.Errorf("decode run %q: %w", it.Item().Key(), err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.Before(runs[j].CreatedAt)
	})
	return runs, nil
}

func endSpan(span trace.Span, op string, err error) {
	result := "success"
	if err != nil {
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	storeOps.WithLabelValues(op, result).Inc()
	span.End()
}
