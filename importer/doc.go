// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package importer loads official electoral roll records from CSV.
//
// Columns are matched to roll fields by name, with an optional mapping for
// sources that use their own headers. Rows are validated one by one and
// inserted in batches; bad rows are reported and skipped. ValidateOnly runs
// the same checks without writing.
package importer
