// Package blob holds what the blob backends share: key layout and sentinel errors.
package blob

import (
	"errors"
	"path"

	"github.com/oklog/ulid/v2"
)

var ErrNotFound = errors.New("blob not found")

// InvoiceFolder is the per-month folder uploaded invoice files live under.
const InvoiceFolder = "facturas"

// Key returns a unique object key "YYYY/MM/<folder>/<ulid>-<name>". The ULID prefix keeps two
// uploads with the same file name apart and sorts keys by upload time.
func Key(year, month, folder, name string) string {
	return path.Join(year, month, folder, ulid.Make().String()+"-"+name)
}
