// Command bledt-registryd serves a schema blob store over gRPC so that
// build machines can push and fetch pinned .proto schemas (see bledt push,
// bledt fetch --backend grpc).
package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/deepcare/ble-data-transfer-go/storage/grpcreg"
	"github.com/deepcare/ble-data-transfer-go/storage/regbackends"

	_ "github.com/deepcare/ble-data-transfer-go/storage/regbackends/localdir"
)

func main() {
	fs := flag.NewFlagSet("bledt-registryd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7877", "listen address")
	backend := fs.String("backend", "localfs", "blob store backend name")
	listBackends := fs.Bool("list-backends", false, "List supported backends and exit")

	regbackends.RegisterFlags(fs, regbackends.UsageDaemon)

	_ = fs.Parse(os.Args[1:])
	if *listBackends {
		for _, b := range regbackends.List(regbackends.UsageDaemon) {
			if b.Description == "" {
				_, _ = fmt.Fprintf(os.Stdout, "%s\n", b.Name)
				continue
			}
			_, _ = fmt.Fprintf(os.Stdout, "%s\t%s\n", b.Name, b.Description)
		}
		return
	}

	store, closeFn, err := regbackends.Open(*backend, regbackends.UsageDaemon)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if closeFn != nil {
		defer closeFn()
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcreg.RegisterRegistryServer(s, &grpcreg.Server{Store: store})

	fmt.Fprintf(os.Stderr, "bledt-registryd listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
