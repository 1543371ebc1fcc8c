// Package localdir registers the filesystem blob store as the "localfs"
// backend. Import it (blank) to enable -localfs-root in a binary.
package localdir

import (
	"flag"

	"github.com/deepcare/ble-data-transfer-go/storage"
	"github.com/deepcare/ble-data-transfer-go/storage/localfs"
	"github.com/deepcare/ble-data-transfer-go/storage/regbackends"
)

var root *string

func init() {
	regbackends.MustRegister(regbackends.Backend{
		Name:        "localfs",
		Description: "filesystem blob store (workspace schema cache)",
		Usage:       regbackends.UsageCLI | regbackends.UsageDaemon,
		RegisterFlags: func(fs *flag.FlagSet) {
			root = fs.String("localfs-root", ".bledt/cache", "root directory for the localfs backend")
		},
		Open: func() (storage.BlobStore, func() error, error) {
			s, err := localfs.New(*root)
			if err != nil {
				return nil, nil, err
			}
			return s, nil, nil
		},
	})
}
