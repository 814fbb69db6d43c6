// dumps contains example schema dump data that is used in tests.
package dumps

import "embed"

// FS is an embedded filesystem that contains the example dumps at its
// root.
//
//go:embed *.sql
var FS embed.FS

// Read returns the contents of the named example dump, panicking on a bad
// name; it is only for use in tests.
func Read(name string) string {
	data, err := FS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(data)
}
