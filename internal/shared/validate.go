package shared

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

var (
	mappingSchema    = mustCompileSchema("schemas/mapping.schema.json")
	repositorySchema = mustCompileSchema("schemas/repositories.schema.json")
)

// mustCompileSchema compiles an embedded JSON schema. Panics on failure since
// a broken embedded schema can only be a packaging mistake.
func mustCompileSchema(name string) *jsonschema.Schema {
	data, err := schemaFiles.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to read embedded schema %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		panic(fmt.Sprintf("failed to register schema %s: %v", name, err))
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile schema %s: %v", name, err))
	}
	return schema
}

// ValidateMappingDocument checks a username mapping document against its
// schema before any decode touches it.
func ValidateMappingDocument(data []byte) error {
	return validateDocument(mappingSchema, data, "username mapping")
}

// ValidateRepositoryDocument checks a repository whitelist document against
// its schema.
func ValidateRepositoryDocument(data []byte) error {
	return validateDocument(repositorySchema, data, "repository list")
}

func validateDocument(schema *jsonschema.Schema, data []byte, label string) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s is not valid JSON: %v", ErrInvalidConfig, label, err)
	}

	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, label, err)
	}
	return nil
}
