// Package easyetl is a small synchronous ETL helper library for tabular data.
//
// It is organized as three independent groups of stateless operations sharing a
// single in-memory data model (entity.Frame / entity.Series):
//
//	extract    pulls a dataset from a CSV file, a JSON file, an HTTP endpoint
//	           or a Postgres query into memory
//	transform  applies row/column level cleaning operations (drop missing,
//	           replace, explode, change type, parse datetime, rename)
//	load       persists a dataset to a CSV, JSON or Excel file, or to a
//	           Postgres table
//
// The groups do not depend on each other and are composed only by caller code,
// or declaratively with a pipeline spec executed by the pipeline package.
//
// Every operation loads its entire input into memory and completes in one shot.
// No connection, file handle or any other resource is retained between calls;
// each database operation opens and closes its own connection.
package easyetl

import "errors"

// Error values returned by the easyetl packages.
// Operations wrap these with additional details about the failure, so error
// matching should be done with 'if errors.Is(err, easyetl.ErrParse)' etc.
var (
	// ErrTypeMismatch is returned when an operation is given something other
	// than the dataset kind it accepts, before any I/O or mutation is done.
	ErrTypeMismatch = errors.New("input is not a valid dataset for this operation")

	// ErrFileExists is returned by file sinks when the target path already
	// exists and overwrite was not requested. The existing file is untouched.
	ErrFileExists = errors.New("file already exists, pass overwrite=true to overwrite it")

	ErrIO             = errors.New("file could not be read or written")
	ErrParse          = errors.New("data could not be parsed")
	ErrNetwork        = errors.New("connection to endpoint could not be established")
	ErrHTTPStatus     = errors.New("endpoint returned a failure status code")
	ErrConnection     = errors.New("database connection failed")
	ErrQuery          = errors.New("database query failed")
	ErrTypeConversion = errors.New("value could not be converted to the target type")
	ErrColumnNotFound = errors.New("column not found in dataset")

	// ErrUnknownRenameKey is returned by Rename when the mapping references a
	// label absent from the dataset and OnUnknown is set to "raise".
	ErrUnknownRenameKey = errors.New("rename mapping references an unknown label")
)
