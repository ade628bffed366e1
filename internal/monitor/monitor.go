// Package monitor validates relay request bodies against JSON schemas.
package monitor

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Embedded schema names.
const (
	SchemaPaymentRequest            = "payment_request.json"
	SchemaPaytrailPayment           = "paytrail_payment.json"
	SchemaInteroperabilityTestToken = "interoperability_test_token.json"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// ContractMonitor validates incoming requests against a JSON schema.
type ContractMonitor struct {
	name   string
	schema *gojsonschema.Schema
}

// NewContractMonitorFromString compiles an inline schema.
func NewContractMonitorFromString(name, schema string) (*ContractMonitor, error) {
	return newMonitor(name, gojsonschema.NewStringLoader(schema))
}

// NewEmbeddedContractMonitor compiles one of the schemas shipped with the binary.
func NewEmbeddedContractMonitor(name string) (*ContractMonitor, error) {
	raw, err := schemaFS.ReadFile("schemas/" + name)
	if err != nil {
		return nil, fmt.Errorf("unknown embedded schema %s: %w", name, err)
	}
	return newMonitor(name, gojsonschema.NewBytesLoader(raw))
}

func newMonitor(name string, loader gojsonschema.JSONLoader) (*ContractMonitor, error) {
	schema, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("error loading or compiling schema %s: %w", name, err)
	}
	return &ContractMonitor{name: name, schema: schema}, nil
}

// Name is the schema name the monitor was built from.
func (cm *ContractMonitor) Name() string { return cm.name }

// Validate validates the given request body against the loaded JSON schema.
// It returns true if valid, or false and a list of validation errors if invalid.
func (cm *ContractMonitor) Validate(requestBody []byte) (bool, []string, error) {
	result, err := cm.schema.Validate(gojsonschema.NewBytesLoader(requestBody))
	if err != nil {
		return false, nil, fmt.Errorf("error during validation: %w", err)
	}

	if result.Valid() {
		return true, nil, nil
	}

	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return false, errs, nil
}

// FormatErrors summarizes validation errors for a one-line message: the first
// error plus a count of the rest.
func FormatErrors(validationErrors []string) string {
	switch len(validationErrors) {
	case 0:
		return ""
	case 1:
		return validationErrors[0]
	default:
		return fmt.Sprintf("%s (and %d more)", validationErrors[0], len(validationErrors)-1)
	}
}
