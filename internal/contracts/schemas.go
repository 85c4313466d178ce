// Package contracts pins the wire format of queue events. Every
// message entering the ingest pipeline is checked against the JSON
// Schema matching its event-type and event-version headers before any
// code touches its fields.
package contracts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jian131/agent-bds/internal/constants"
)

//go:embed schemas/listing_collected.v1.json
var listingCollectedSchemaV1 string

var compiledSchemas = make(map[string]*jsonschema.Schema)

func init() {
	registerSchema(constants.EventListingCollected, constants.EventListingCollectedVersion, listingCollectedSchemaV1)
}

// registerSchema compiles an embedded schema document. The documents
// are compile-time constants, so a failure here is a programming error
// and panics.
func registerSchema(eventType, eventVersion, document string) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	url := fmt.Sprintf("contracts://%s/%s.json", eventType, eventVersion)
	if err := compiler.AddResource(url, strings.NewReader(document)); err != nil {
		panic(fmt.Sprintf("failed to register schema %s/%s: %v", eventType, eventVersion, err))
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		panic(fmt.Sprintf("failed to compile schema %s/%s: %v", eventType, eventVersion, err))
	}

	compiledSchemas[schemaKey(eventType, eventVersion)] = schema
}

func schemaKey(eventType, eventVersion string) string {
	return eventType + "/" + eventVersion
}

// ValidateEvent checks a message body against the schema registered
// for its type and version. An unknown type/version pair is an error:
// unrecognized events must not pass silently.
func ValidateEvent(eventType, eventVersion string, body []byte) error {
	schema, ok := compiledSchemas[schemaKey(eventType, eventVersion)]
	if !ok {
		return fmt.Errorf("no schema registered for event '%s' version '%s'", eventType, eventVersion)
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("message body is not valid JSON: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("JSON schema validation failed: %w", err)
	}
	return nil
}
