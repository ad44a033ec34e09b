// Package fixture seeds a haze engine from CUE files.
//
// A fixture file declares collections as lists of documents:
//
//	collections: {
//		users: [
//			{name: "Ann", age: 30},
//			{name: "Bob", age: 41},
//		]
//		tags: []
//	}
//
// Every value must be concrete. Documents are created in list order, so
// with a deterministic id generator the same file always yields the same
// ids. An empty list creates an empty collection. Any "id" or "version"
// written in a fixture is replaced at creation, like any other Create.
//
// Load accepts a single .cue file or a directory holding one CUE package.
package fixture
