// Package config loads the YAML engine configuration: the engine version
// this config was written against (semver-checked) and an environment
// dictionary used to seed a host's demo Lookup/Serialize backend.
//
// Grounded on the teacher's core/types/validation.go (jsonschema.Compiler
// with Draft2020, golang.org/x/mod/semver for format validation), trimmed
// down: that file's schema-hash cache and $ref-loading security controls
// exist to validate untrusted, externally-supplied decorator schemas at
// high call volume; this package validates one host-authored config file
// loaded once at startup, so neither concern applies (see DESIGN.md).
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Config is the engine's YAML configuration document.
type Config struct {
	EngineVersion string         `yaml:"engine_version"`
	Environment   map[string]any `yaml:"environment"`
}

// environmentSchema is deliberately narrow: an object whose values are
// either scalars or nested objects of the same shape, matching what the
// CLI's demo dictionary backend (spec.md §6's FOO.BAR.BIZ example) needs
// and nothing more.
const environmentSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"additionalProperties": {
		"$ref": "#/$defs/node"
	},
	"$defs": {
		"node": {
			"oneOf": [
				{"type": ["string", "number", "boolean", "null"]},
				{
					"type": "object",
					"additionalProperties": {"$ref": "#/$defs/node"}
				}
			]
		}
	}
}`

// Load reads and validates a YAML config document: engine_version must
// be a valid semver (with or without a leading "v"), and environment (if
// present) must match environmentSchema.
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config yaml: %w", err)
	}

	if !isValidSemver(cfg.EngineVersion) {
		return nil, fmt.Errorf("invalid engine_version %q: must be a semantic version", cfg.EngineVersion)
	}

	if cfg.Environment != nil {
		if err := validateEnvironment(cfg.Environment); err != nil {
			return nil, fmt.Errorf("invalid environment: %w", err)
		}
	}

	return &cfg, nil
}

func isValidSemver(v string) bool {
	if v == "" {
		return false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return false
	}
	// semver.IsValid also accepts the "vMAJOR" and "vMAJOR.MINOR"
	// shorthands; a full version has all three components.
	core := v[1:]
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	return strings.Count(core, ".") == 2
}

// validateEnvironment compiles environmentSchema and validates env
// against it. Loading the environment as JSON (via a round-trip through
// encoding/json, since YAML-decoded maps use map[string]any already) lets
// the same validator serve both this YAML path and the CLI's JSON
// environment-file option (SPEC_FULL.md §4.10).
func validateEnvironment(env map[string]any) error {
	schema, err := compileEnvironmentSchema()
	if err != nil {
		return fmt.Errorf("compiling environment schema: %w", err)
	}

	asJSON, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling environment for validation: %w", err)
	}
	var asAny any
	if err := json.Unmarshal(asJSON, &asAny); err != nil {
		return err
	}

	return schema.Validate(asAny)
}

func compileEnvironmentSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	const url = "schema://environment.json"
	if err := compiler.AddResource(url, strings.NewReader(environmentSchemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(url)
}

// ValidateEnvironmentJSON validates a standalone JSON environment
// document (the CLI's --env flag given a .json file), without requiring a full
// Config/engine_version wrapper.
func ValidateEnvironmentJSON(data []byte) (map[string]any, error) {
	schema, err := compileEnvironmentSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling environment schema: %w", err)
	}

	var asAny any
	if err := json.Unmarshal(data, &asAny); err != nil {
		return nil, fmt.Errorf("parsing environment json: %w", err)
	}
	if err := schema.Validate(asAny); err != nil {
		return nil, err
	}

	env, ok := asAny.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("environment document must be a JSON object")
	}
	return env, nil
}
