// Package dataprocessing implements the feature pipeline for hourly
// energy production/consumption data and the stateless aggregations the
// dashboard charts are built from.
//
// # Architecture
//
// The package is organized into three components:
//
// 1. Parser: reads the raw energy CSV into Records
// 2. Pipeline: deduplicates, interpolates missing cells and derives
// calendar and energy-balance features (Enrich)
// 3. Analytics: grouped aggregates, energy-mix totals and summary
// statistics over the enriched records
//
// # Data Flow
//
// The typical flow through this package:
//
//	CSV -> ParseCSV -> []Record -> Enrich -> *Dataset -> Aggregate/SourceMix/Summarize
//
// Enrich is a single-pass, synchronous, side-effect-free transform: it
// never drops rows after deduplication, never reorders rows after the
// timestamp sort, and never mutates its input.
//
// # Error Handling
//
// A missing required column is the only expected failure and surfaces
// as *SchemaError naming the absent columns. Duplicate rows and missing
// cells are data-quality events, not errors: they are repaired by the
// cleanup steps and counted in the QualityReport.
package dataprocessing
