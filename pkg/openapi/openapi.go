// Package openapi extracts request-body schemas from OpenAPI documents so
// they can drive form building alongside plain JSON Schema inputs.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgschema "github.com/goliatone/go-schemaform/pkg/schema"
)

// extensionNamespace carries form hints inside OpenAPI documents: metadata
// name/slug for combinator groups and the ignored-property list.
const extensionNamespace = "x-schemaform"

// Options configures document parsing.
type Options struct {
	// ResolveReferences validates the document and resolves external refs.
	ResolveReferences bool
	// AllowPartialDocuments accepts documents without paths or operations.
	AllowPartialDocuments bool
}

// Operation is one OpenAPI operation with its converted request schema.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Request     *pkgschema.Schema
}

// Extractor parses OpenAPI documents with kin-openapi and converts request
// bodies into schema trees.
type Extractor struct {
	opts Options
}

// New constructs an Extractor.
func New(options Options) *Extractor {
	return &Extractor{opts: options}
}

// Operations parses a document and returns its operations keyed by
// operationId. Operations without an id are keyed "method:path".
func (e *Extractor) Operations(ctx context.Context, raw []byte) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: e.opts.ResolveReferences,
	}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if e.opts.ResolveReferences {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}

	operations := make(map[string]Operation)
	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			e.collect(operations, "GET", path, item.Get)
			e.collect(operations, "PUT", path, item.Put)
			e.collect(operations, "POST", path, item.Post)
			e.collect(operations, "DELETE", path, item.Delete)
			e.collect(operations, "PATCH", path, item.Patch)
		}
	}
	if len(operations) == 0 && !e.opts.AllowPartialDocuments {
		return nil, errors.New("openapi: no operations extracted")
	}
	return operations, nil
}

// RequestSchema returns the converted request-body schema of one operation.
func (e *Extractor) RequestSchema(ctx context.Context, raw []byte, operationID string) (*pkgschema.Schema, error) {
	operations, err := e.Operations(ctx, raw)
	if err != nil {
		return nil, err
	}
	op, ok := operations[operationID]
	if !ok {
		return nil, fmt.Errorf("openapi: operation %q not found", operationID)
	}
	if op.Request == nil {
		return nil, fmt.Errorf("openapi: operation %q has no request schema", operationID)
	}
	return op.Request, nil
}

func (e *Extractor) collect(target map[string]Operation, method, path string, operation *openapi3.Operation) {
	if operation == nil {
		return
	}
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	target[id] = Operation{
		ID:          id,
		Method:      method,
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		Request:     requestSchema(operation.RequestBody),
	}
}

func requestSchema(body *openapi3.RequestBodyRef) *pkgschema.Schema {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			return Convert(mt.Schema)
		}
	}
	for _, mt := range content {
		return Convert(mt.Schema)
	}
	return nil
}

// Convert maps a kin-openapi schema reference onto the schema tree consumed
// by the form builder. Unresolved references degrade to inert leaves.
func Convert(ref *openapi3.SchemaRef) *pkgschema.Schema {
	if ref == nil || ref.Value == nil {
		return &pkgschema.Schema{}
	}
	src := ref.Value

	out := &pkgschema.Schema{
		Type:        firstSchemaType(src.Type),
		Title:       src.Title,
		Description: src.Description,
	}
	if src.Nullable && out.Type == "" {
		out.Type = "null"
	}

	if len(src.Required) > 0 {
		out.Required = append([]string(nil), src.Required...)
	}
	if len(src.Enum) > 0 {
		out.Enum = append([]any(nil), src.Enum...)
	}
	if src.Min != nil {
		value := *src.Min
		out.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		out.Maximum = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		out.MaxLength = &value
	}

	if len(src.Properties) > 0 {
		names := make([]string, 0, len(src.Properties))
		for name := range src.Properties {
			names = append(names, name)
		}
		// kin-openapi stores properties in a map; sorted order keeps builds
		// deterministic.
		sort.Strings(names)
		out.Properties = make(map[string]*pkgschema.Schema, len(names))
		out.PropertyOrder = names
		for _, name := range names {
			out.Properties[name] = Convert(src.Properties[name])
		}
	}

	for _, member := range src.AllOf {
		out.AllOf = append(out.AllOf, Convert(member))
	}
	for _, member := range src.OneOf {
		out.OneOf = append(out.OneOf, Convert(member))
	}
	if src.Items != nil {
		out.Items = Convert(src.Items)
	}

	applyExtensions(out, src.Extensions)
	return out
}

func firstSchemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func applyExtensions(out *pkgschema.Schema, raw map[string]any) {
	hints, ok := raw[extensionNamespace].(map[string]any)
	if !ok {
		return
	}
	name, _ := hints["name"].(string)
	slug, _ := hints["slug"].(string)
	if name != "" || slug != "" {
		out.Metadata = &pkgschema.Metadata{Name: name, Slug: slug}
	}
	if ignored, ok := hints["ignored"].([]any); ok {
		for _, entry := range ignored {
			if text, ok := entry.(string); ok && text != "" {
				out.Ignored = append(out.Ignored, text)
			}
		}
	}
}
