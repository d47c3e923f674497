package fixtures

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalid is returned for fixture files that do not hold a collection.
var ErrInvalid = errors.New("invalid fixture")

// collectionSchema accepts an array of objects carrying a positive integer id.
const collectionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id"],
    "properties": {
      "id": {"type": "integer", "minimum": 1}
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(collectionSchema)

// validate checks doc (any JSON-marshalable value) against the collection schema.
func validate(name string, doc any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalid, name, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalid, name, strings.Join(msgs, "; "))
}
