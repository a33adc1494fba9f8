// Package modelbind binds loosely typed plain data, as produced by JSON and
// YAML decoders, to typed models and back.
//
// - Metadata: record fields are Property values bound to names in an ObjectMeta; arrays and dictionaries carry item and value candidate lists (Types)
// - Unmarshal: candidates are tried in order; the first that accepts the data wins, with records leaving fewer undefined keys preferred
// - Marshal: models become ordered plain data (*Mapping, []any, scalars) using wire names and property converters
// - Validate: required fields, nulls, kinds, enumerations and undefined keys, optionally gated by a specification version
// - Versioning: Version specifiers ("oas>=3.0,<3.1") restrict properties; VersionModel narrows instance metadata to one version
// - Hooks: before/after callbacks around marshal, unmarshal, serialize, validate and assignment
//
// Design policy:
// - Keep the public API in the root package; text decoding lives in serial/ and internal/engine.
// - Metadata and hooks are inherited from the model type until written through WritableMeta or WritableHooks, which copy on first write.
// - Null is an explicit null; nil is absent.
//
// Typical usage:
//
//	pet := modelbind.NewObjectType("Pet", modelbind.NewObjectMeta(
//		modelbind.Field("name", modelbind.StringProperty(modelbind.Required())),
//		modelbind.Field("born", modelbind.DateProperty()),
//	))
//	m, err := modelbind.UnmarshalAs(data, pet)
//	msgs, err := modelbind.Validate(m)
//	plain, err := modelbind.Marshal(m)
package modelbind
