// Package remote registers the gRPC schema registry client as the "grpc"
// backend. Import it (blank) to enable -grpc-target in a binary.
package remote

import (
	"flag"
	"time"

	"github.com/deepcare/ble-data-transfer-go/storage"
	"github.com/deepcare/ble-data-transfer-go/storage/grpcreg"
	"github.com/deepcare/ble-data-transfer-go/storage/regbackends"
)

var (
	target  *string
	timeout *time.Duration
)

func init() {
	regbackends.MustRegister(regbackends.Backend{
		Name:        "grpc",
		Description: "remote schema registry over gRPC",
		Usage:       regbackends.UsageCLI,
		RegisterFlags: func(fs *flag.FlagSet) {
			target = fs.String("grpc-target", "127.0.0.1:7877", "schema registry address")
			timeout = fs.Duration("grpc-timeout", 10*time.Second, "per-RPC timeout")
		},
		Open: func() (storage.BlobStore, func() error, error) {
			c, err := grpcreg.Dial(*target, grpcreg.DialOptions{Timeout: *timeout})
			if err != nil {
				return nil, nil, err
			}
			c.Timeout = *timeout
			return c, c.Close, nil
		},
	})
}
