// Package dataset loads and holds the tabular time series behind every chart.
//
// # Tables
//
// A [Table] is a period-ordered collection of [Row] values grouped by series
// key. Missing (period, key) cells read as zero, and a table may carry an
// external per-period total for ratio normalization. Tables are built once by
// the catalog and treated as read-only afterwards.
//
// # Sources
//
// Raw resources are named JSON (or YAML) documents such as
// "q1_offence_category.json". A [Source] fetches them by name:
//
//   - [FileSource]: a local data directory
//   - [HTTPSource]: a static file server (retries transient failures)
//   - [MongoSource]: a MongoDB collection of {_id: name, payload: json}
//   - [MemorySource]: fixed in-memory resources for tests and demos
//
// # Loader
//
// [Loader] memoizes fetched resources in a [cache.Cache], collapses
// concurrent fetches of the same name, and fetches a chart's resources in
// parallel. [Watch] invalidates the memo when files in a data directory
// change.
package dataset
