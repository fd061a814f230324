package schema

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xeipuuv/gojsonschema"
)

// Validate checks a raw JSON payload against one of the stage schemas.
// A violation is returned as a single error listing every failed constraint;
// callers treat it exactly like a call failure of that stage.
func Validate(schemaJSON string, payload []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return eris.Wrap(err, "schema: validate")
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return eris.Errorf("schema: payload rejected: %s", strings.Join(msgs, "; "))
}
