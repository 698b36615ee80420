// Package repogen is the runtime support package of the code generated by
// repogen's compiler (see compiler/gen).
//
// Every generated repository struct embeds Model and is built by its
// generated constructor through Model.Bootstrap. Relation accessors and the
// service table call into a Manager, usually an Objects value backed by a
// user-provided Delegate:
//
//	type Post struct {
//		PostRepository
//	}
//
//	var PostObjects = repogen.NewObjects("Post", func() repogen.Source { return Source }, NewPost)
//
// Filters are plain Where documents. Relation accessors merge their join
// predicate on top of the caller's filter with Where.Merge, so join columns
// cannot be overridden by the caller.
package repogen
