// Package mapfile implements a self-describing, human-readable text
// format for nested key/value data, together with its codec.
//
// The format stores one entry per line. A scalar entry is "key=value";
// a nested block opens with "key=[" and closes with a "]" line at the
// same depth. Keys are emitted in sorted order so output is
// deterministic and diff-friendly. Reserved characters inside keys and
// values are escaped with the marker '§'. Sequences and sets are stored
// as blocks whose keys are decimal indices; the typed accessors on
// document.Document reverse those encodings.
//
// Key pieces:
//   - Escape/Unescape: the reversible line-safety transformation
//   - Marshal/Lines: encode Documents, maps, slices, sets, and Storable
//     values to text
//   - Parse/ParseLines: decode text back into a document.Document of
//     string leaves and nested Documents
//   - Store: bind the codec to a source (a file, usually), with optional
//     change watching so hand-edited files are picked up
//
// Example round trip:
//
//	doc := document.New()
//	doc.Set("name", "Avery")
//	doc.Set("scores", []any{10, 20, 30})
//	data, _ := mapfile.Marshal(doc)
//	back, _ := mapfile.Parse(data)
//	scores, _ := document.ListAs(back, "scores", document.Ints)
package mapfile
