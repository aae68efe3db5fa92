// Package pipeline provides a declarative way to compose the extract,
// transform and load operations: a JSON pipeline spec names one source, zero
// or more transforms and one sink, and a Runner executes it synchronously end
// to end.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidSpec = errors.New("pipeline spec is not valid")

// Source entity types available in pipeline specs
const (
	SourceCSV  = "csv"
	SourceJSON = "json"
	SourceAPI  = "api"
	SourceDB   = "db"
)

// Sink entity types available in pipeline specs
const (
	SinkCSV   = "csv"
	SinkJSON  = "json"
	SinkExcel = "excel"
	SinkDB    = "db"
)

// Transform types available in pipeline specs
const (
	TransformDropMissing   = "dropMissing"
	TransformReplace       = "replace"
	TransformExplode       = "explode"
	TransformChangeType    = "changeType"
	TransformParseDatetime = "parseDatetime"
	TransformRename        = "rename"
)

// Spec specifies how one ETL pipeline should be executed from Source through
// Transforms to Sink. The Namespace + PipelineIdSuffix combination forms the
// pipeline ID and must be unique among the caller's registered specs.
type Spec struct {
	// Main metadata (required)
	Namespace        string `json:"namespace"`
	PipelineIdSuffix string `json:"pipelineIdSuffix"`
	Description      string `json:"description"`
	Version          int    `json:"version"`

	// Pipeline entity config
	Source     Source          `json:"source"`
	Transforms []TransformSpec `json:"transforms,omitempty"`
	Sink       Sink            `json:"sink"`
}

// Source names where the pipeline pulls its dataset from.
type Source struct {
	Type string `json:"type"`

	// Path is the input file path for csv and json sources.
	Path string `json:"path,omitempty"`

	// URL is the endpoint for api sources.
	URL string `json:"url,omitempty"`

	// Query is the SQL text for db sources. It is passed to the server
	// verbatim; do not build it from untrusted input.
	Query string `json:"query,omitempty"`
}

// TransformSpec holds the union of options across transform types; each type
// reads only its own fields, matching the config structs in the transform
// package.
type TransformSpec struct {
	Type string `json:"type"`

	// Columns is used by dropMissing (check scope) and explode (targets).
	Columns []string `json:"columns,omitempty"`

	// Column is used by parseDatetime.
	Column string `json:"column,omitempty"`

	// Axis ("rows"/"columns") and How ("any"/"all") are used by dropMissing.
	Axis string `json:"axis,omitempty"`
	How  string `json:"how,omitempty"`

	// Old and New are used by replace. Scalars and equal-length lists are
	// supported, with the same semantics as transform.Replace.
	Old any `json:"old,omitempty"`
	New any `json:"new,omitempty"`

	// Mapping (old name -> new name) and OnUnknown ("ignore"/"raise") are
	// used by rename. Spec-driven rename operates on columns only.
	Mapping   map[string]string `json:"mapping,omitempty"`
	OnUnknown string            `json:"onUnknown,omitempty"`

	// TargetType ("string"/"int"/"float"/"bool"/"time") is used by changeType.
	TargetType string `json:"targetType,omitempty"`
}

// Sink names where the pipeline persists its dataset.
type Sink struct {
	Type string `json:"type"`

	// Path is the output file path for csv, json and excel sinks.
	Path string `json:"path,omitempty"`

	// Overwrite disengages the overwrite guard for file sinks.
	Overwrite bool `json:"overwrite,omitempty"`

	// Table is the target table name for db sinks. The table is replaced
	// unconditionally.
	Table string `json:"table,omitempty"`

	// ConnURL is the connection string for db sinks. If empty the Runner
	// falls back to its configured DBConfig.
	ConnURL string `json:"connUrl,omitempty"`
}

// NewSpec creates a new Spec from JSON, validating it against the pipeline
// spec JSON schema plus the per-entity rules in Validate().
func NewSpec(specData []byte) (*Spec, error) {
	var spec Spec
	if len(specData) == 0 {
		return nil, fmt.Errorf("%w, details: no spec data provided", ErrInvalidSpec)
	}

	if err := validateRawJson(specData); err != nil {
		return nil, fmt.Errorf("%w, details: %v", ErrInvalidSpec, err)
	}

	if err := json.Unmarshal(specData, &spec); err != nil {
		return nil, fmt.Errorf("%w, details: %v", ErrInvalidSpec, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *Spec) Id() string {
	return s.Namespace + "-" + s.PipelineIdSuffix
}

// Validate checks the rules the JSON schema cannot express, such as
// type-dependent required fields.
func (s *Spec) Validate() error {
	switch s.Source.Type {
	case SourceCSV, SourceJSON:
		if s.Source.Path == "" {
			return fmt.Errorf("%w, details: %s source requires a path", ErrInvalidSpec, s.Source.Type)
		}
	case SourceAPI:
		if s.Source.URL == "" {
			return fmt.Errorf("%w, details: api source requires a url", ErrInvalidSpec)
		}
	case SourceDB:
		if s.Source.Query == "" {
			return fmt.Errorf("%w, details: db source requires a query", ErrInvalidSpec)
		}
	}

	switch s.Sink.Type {
	case SinkCSV, SinkJSON, SinkExcel:
		if s.Sink.Path == "" {
			return fmt.Errorf("%w, details: %s sink requires a path", ErrInvalidSpec, s.Sink.Type)
		}
	case SinkDB:
		if s.Sink.Table == "" {
			return fmt.Errorf("%w, details: db sink requires a table", ErrInvalidSpec)
		}
	}

	for i, t := range s.Transforms {
		switch t.Type {
		case TransformExplode:
			if len(t.Columns) == 0 {
				return fmt.Errorf("%w, details: transform %d: explode requires columns", ErrInvalidSpec, i)
			}
		case TransformParseDatetime:
			if t.Column == "" {
				return fmt.Errorf("%w, details: transform %d: parseDatetime requires a column", ErrInvalidSpec, i)
			}
		case TransformChangeType:
			if t.TargetType == "" {
				return fmt.Errorf("%w, details: transform %d: changeType requires a targetType", ErrInvalidSpec, i)
			}
		case TransformRename:
			if len(t.Mapping) == 0 {
				return fmt.Errorf("%w, details: transform %d: rename requires a mapping", ErrInvalidSpec, i)
			}
		}
	}
	return nil
}

func (s *Spec) JSON() []byte {
	specData, _ := json.Marshal(s)
	return specData
}

func validateRawJson(specData []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(specSchema)
	documentLoader := gojsonschema.NewBytesLoader(specData)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		specErrors := ""
		for _, desc := range result.Errors() {
			specErrors += " - " + desc.String()
		}
		err = errors.New(specErrors)
	}
	return err
}

var specSchema = []byte(`
{
  "$schema": "http://json-schema.org/draft-07/schema",
  "type": "object",
  "required": [
    "namespace",
    "pipelineIdSuffix",
    "version",
    "description",
    "source",
    "sink"
  ],
  "properties": {
    "namespace": {
      "type": "string",
      "minLength": 1
    },
    "pipelineIdSuffix": {
      "type": "string",
      "minLength": 1
    },
    "version": {
      "type": "integer"
    },
    "description": {
      "type": "string",
      "minLength": 1
    },
    "source": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {
          "enum": ["csv", "json", "api", "db"]
        },
        "path": {
          "type": "string"
        },
        "url": {
          "type": "string"
        },
        "query": {
          "type": "string"
        }
      }
    },
    "transforms": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "type": {
            "enum": [
              "dropMissing",
              "replace",
              "explode",
              "changeType",
              "parseDatetime",
              "rename"
            ]
          },
          "columns": {
            "type": "array",
            "items": {
              "type": "string"
            }
          },
          "column": {
            "type": "string"
          },
          "axis": {
            "enum": ["rows", "columns"]
          },
          "how": {
            "enum": ["any", "all"]
          },
          "mapping": {
            "type": "object"
          },
          "onUnknown": {
            "enum": ["ignore", "raise"]
          },
          "targetType": {
            "enum": ["string", "int", "float", "bool", "time"]
          }
        }
      }
    },
    "sink": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {
          "enum": ["csv", "json", "excel", "db"]
        },
        "path": {
          "type": "string"
        },
        "overwrite": {
          "type": "boolean"
        },
        "table": {
          "type": "string"
        },
        "connUrl": {
          "type": "string"
        }
      }
    }
  }
}`)
