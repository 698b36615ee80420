// Package gen compiles a data-model schema into Go repository code.
//
// The generated code wraps the records returned by a data-access client in
// typed repository structs and adds one accessor per relation field, so
// related objects can be traversed and mutated from an instance without
// writing join predicates by hand.
//
// # Architecture
//
// The code generation pipeline follows this flow:
//
//	Schema (load.Schema, JSON or YAML)   Client types (introspect.Introspector)
//	        ↓                                      ↓
//	   Graph (validated schema and relation indexes)
//	        ↓
//	   RelationPlan per relation field (Resolve)
//	        ↓
//	   ClassTable per model (Classify)
//	        ↓
//	   Output: core document, scaffolds, service table, SDL
//	        ↓
//	   Writer (core overwritten, scaffolds created once)
//
// # Key Types
//
//   - Graph: the validated schema with its relation and join-column indexes
//   - RelationPlan: the join predicate, guards and manager method of a relation
//   - ClassTable: the plain, hidden and relation fields of a model
//   - ServiceTable: the operation names exposed by the service
//   - Config: global configuration for code generation
//
// # Error Handling
//
// The package uses structured error types:
//
//   - SchemaError: malformed schema
//   - ConfigError: invalid option
//   - IntrospectionError: a model or field missing from the client types
//   - RelationError: a relation whose other side cannot be found
//   - NamingError: two derived identifiers coincide
//   - GenerationError: rendering or writing a file failed
//
// Example error handling:
//
//	out, err := gen.Generate(schema, types)
//	if err != nil {
//	    if gen.IsIntrospectionError(err) {
//	        // The client is out of date: regenerate it first.
//	    }
//	    return err
//	}
//
// # Configuration
//
// Configuration is done via the functional options pattern:
//
//	config, err := gen.NewConfig(
//	    gen.WithTarget("./repository"),
//	    gen.WithPagination(false),  // Filter instead of Paginate
//	    gen.WithSDL(true),          // Service table and GraphQL schema
//	)
//
// # Generated Output
//
// The generator produces the following structure:
//
//	{output}/
//	├── repository_gen.go   // Repository structs, constructors and accessors
//	├── service_gen.go      // Service table (WithService)
//	├── schema.graphql      // GraphQL schema (WithSDL)
//	├── client.go           // Source variable, created once
//	└── {model}.go          // Model wrapper and object manager, created once
package gen
