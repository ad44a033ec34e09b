package ir

// NOTE: These are registry snapshot types shared by the engine and the
// snapshot store. They are not part of the document data model.

// StoredDocument is one document as held by a collection.
type StoredDocument struct {
	Seq      int64    `json:"seq"` // Logical insertion order within the engine
	Document IRObject `json:"document"`
}

// CollectionSnapshot is a point-in-time copy of one collection.
// Documents are ordered by Seq, then id.
type CollectionSnapshot struct {
	Name      string           `json:"name"`
	Documents []StoredDocument `json:"documents"`
}
