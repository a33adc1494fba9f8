package jsonschema

// Schema is a minimal JSON Schema representation used for export.
type Schema struct {
	Ref   string `json:"$ref,omitempty"`
	Title string `json:"title,omitempty"`

	// Core
	Type            string `json:"type,omitempty"`
	Format          string `json:"format,omitempty"`
	ContentEncoding string `json:"contentEncoding,omitempty"`
	Enum            []any  `json:"enum,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *Schema            `json:"additionalProperties,omitempty"`

	// Array
	Items *Schema `json:"items,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
	AllOf []*Schema `json:"allOf,omitempty"`

	Defs map[string]*Schema `json:"$defs,omitempty"`
}
