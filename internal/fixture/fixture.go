package fixture

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/haze/internal/engine"
	"github.com/roach88/haze/internal/ir"
)

// Error codes for fixture loading.
const (
	ErrCodeNotFound          = "E201" // Path not found
	ErrCodeLoadFailed        = "E202" // CUE load failed
	ErrCodeBuildFailed       = "E203" // CUE build or evaluation failed
	ErrCodeNoCollections     = "E204" // No top-level collections field
	ErrCodeInvalidCollection = "E205" // Collection is not a list
	ErrCodeInvalidDocument   = "E206" // Document is not a concrete struct
)

// LoadError is a fixture error with an optional CUE source position.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Fixture is the seed data for one collection.
type Fixture struct {
	Collection string
	Documents  []ir.IRObject
}

// Load reads fixtures from a .cue file or a directory of .cue files.
// Fixtures are returned sorted by collection name.
func Load(path string) ([]Fixture, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("fixture not found: %s", path)}
	}

	ctx := cuecontext.New()
	var value cue.Value
	if info.IsDir() {
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
		}
		if inst := instances[0]; inst.Err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
		}
		value = ctx.BuildInstance(instances[0])
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
		value = ctx.CompileBytes(data, cue.Filename(path))
	}

	return Compile(value)
}

// LoadString compiles fixtures from CUE source text.
func LoadString(src string) ([]Fixture, error) {
	return Compile(cuecontext.New().CompileString(src))
}

// Compile extracts fixtures from a built CUE value.
func Compile(v cue.Value) ([]Fixture, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err, ErrCodeBuildFailed)
	}

	collsVal := v.LookupPath(cue.ParsePath("collections"))
	if !collsVal.Exists() {
		return nil, &LoadError{Code: ErrCodeNoCollections, Message: "collections field is required", Pos: v.Pos()}
	}

	iter, err := collsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err, ErrCodeNoCollections)
	}

	var fixtures []Fixture
	for iter.Next() {
		f, err := compileCollection(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, f)
	}

	slices.SortFunc(fixtures, func(a, b Fixture) int {
		return strings.Compare(a.Collection, b.Collection)
	})
	return fixtures, nil
}

func compileCollection(name string, v cue.Value) (Fixture, error) {
	if v.IncompleteKind() != cue.ListKind {
		return Fixture{}, &LoadError{
			Code:    ErrCodeInvalidCollection,
			Message: fmt.Sprintf("collection %q must be a list of documents", name),
			Pos:     v.Pos(),
		}
	}

	list, err := v.List()
	if err != nil {
		return Fixture{}, formatCUEError(err, ErrCodeInvalidCollection)
	}

	f := Fixture{Collection: name, Documents: []ir.IRObject{}}
	for i := 0; list.Next(); i++ {
		doc, err := compileDocument(list.Value())
		if err != nil {
			return Fixture{}, fmt.Errorf("collection %q document %d: %w", name, i, err)
		}
		f.Documents = append(f.Documents, doc)
	}
	return f, nil
}

func compileDocument(v cue.Value) (ir.IRObject, error) {
	if v.IncompleteKind() != cue.StructKind {
		return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: "document must be a struct", Pos: v.Pos()}
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err, ErrCodeInvalidDocument)
	}

	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err, ErrCodeInvalidDocument)
	}
	doc, err := ir.ParseObject(data)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidDocument, Message: err.Error(), Pos: v.Pos()}
	}
	return doc, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error, code string) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}

// Seeded records the documents created for one fixture.
type Seeded struct {
	Collection string           `json:"collection"`
	Created    []engine.Created `json:"created"`
}

// Apply creates every fixture document in e, in order. Empty fixtures
// still create their collection. Creation emits the usual events.
func Apply(e *engine.Engine, fixtures []Fixture) []Seeded {
	out := make([]Seeded, 0, len(fixtures))
	for _, f := range fixtures {
		e.EnsureCollection(f.Collection)
		s := Seeded{Collection: f.Collection, Created: make([]engine.Created, 0, len(f.Documents))}
		for _, doc := range f.Documents {
			s.Created = append(s.Created, e.Create(f.Collection, doc))
		}
		slog.Debug("fixture applied", "collection", f.Collection, "documents", len(s.Created))
		out = append(out, s)
	}
	return out
}
