package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// Validator checks raw JSON payloads against a compiled schema before they are
// decoded into domain types.
type Validator struct {
	name   string
	schema *jsonschema.Schema
}

func NewValidator(name string, schemaJSON []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s schema: %w", name, err)
	}
	return &Validator{name: name, schema: schema}, nil
}

func MustValidator(name string, schemaJSON []byte) *Validator {
	v, err := NewValidator(name, schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Validator) Validate(payload []byte) error {
	res := v.schema.Validate(payload)
	if res.IsValid() {
		return nil
	}
	var errStrs []string
	for _, e := range res.Errors {
		errStrs = append(errStrs, e.Error())
	}
	sort.Strings(errStrs)
	if len(errStrs) == 0 {
		errStrs = append(errStrs, "payload rejected")
	}
	return fmt.Errorf("%s validation error: %s", v.name, strings.Join(errStrs, ", "))
}

var RatesResponse = []byte(`{
	"type": "object",
	"required": ["targetFiat", "crypto", "fiat"],
	"properties": {
		"targetFiat": {"type": "string"},
		"crypto": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["asset", "rate"],
				"properties": {
					"isoDate": {"type": "string"},
					"asset": {
						"type": "object",
						"required": ["pluginId"],
						"properties": {
							"pluginId": {"type": "string"},
							"tokenId": {"type": ["string", "null"]}
						}
					},
					"rate": {"type": "number"}
				}
			}
		},
		"fiat": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["rate"],
				"properties": {
					"isoDate": {"type": "string"},
					"rate": {"type": "number"}
				}
			}
		}
	}
}`)

var AssetList = []byte(`{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["chainPluginId", "tokenId", "currencyCode", "uriType", "uriProtocol", "publicAddress"],
		"properties": {
			"chainPluginId": {"type": "string", "minLength": 1},
			"chainName": {"type": "string"},
			"tokenId": {"type": ["string", "null"]},
			"currencyCode": {"type": "string", "minLength": 1},
			"uriType": {"enum": ["bip21", "eip831", "stellar"]},
			"uriProtocol": {"type": "string", "minLength": 1},
			"uriEvmChainId": {"type": "integer"},
			"tokenNumDecimals": {"type": "integer", "minimum": 0},
			"publicAddress": {"type": "string", "minLength": 1}
		}
	}
}`)
