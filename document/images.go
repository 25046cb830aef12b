package document

import "github.com/ledongthuc/pdf"

// maxFormDepth bounds recursion through nested form XObjects, which may
// reference each other cyclically in broken files.
const maxFormDepth = 8

// countImages counts image XObjects reachable from a resource dictionary,
// descending into form XObjects.
func countImages(resources pdf.Value, depth int) int {
	if depth > maxFormDepth || resources.IsNull() {
		return 0
	}
	xobjects := resources.Key("XObject")
	if xobjects.Kind() != pdf.Dict {
		return 0
	}
	n := 0
	for _, name := range xobjects.Keys() {
		xobj := xobjects.Key(name)
		switch xobj.Key("Subtype").Name() {
		case "Image":
			n++
		case "Form":
			n += countImages(xobj.Key("Resources"), depth+1)
		}
	}
	return n
}
