// Command bledt is the schema toolchain CLI: it pins the BLE transfer
// .proto schemas, signs and verifies locks, moves pinned schemas through
// blob stores and bundles, and drives protoc for the Dart and Python
// consumers.
package main

import (
	"context"
	"crypto/ed25519"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ipfs/go-cid"

	"github.com/deepcare/ble-data-transfer-go/cidutil"
	"github.com/deepcare/ble-data-transfer-go/gen"
	"github.com/deepcare/ble-data-transfer-go/keys"
	"github.com/deepcare/ble-data-transfer-go/schemaset"
	"github.com/deepcare/ble-data-transfer-go/schemaset/bundle"
	"github.com/deepcare/ble-data-transfer-go/storage/regbackends"

	_ "github.com/deepcare/ble-data-transfer-go/storage/regbackends/localdir"
	_ "github.com/deepcare/ble-data-transfer-go/storage/regbackends/remote"
)

const defaultLockFile = "bledt.lock.json"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "gen":
		return cmdGen(args[1:], out, errOut)
	case "pin":
		return cmdPin(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify-sig":
		return cmdVerifySig(args[1:], out, errOut)
	case "push":
		return cmdPush(args[1:], out, errOut)
	case "fetch":
		return cmdFetch(args[1:], out, errOut)
	case "bundle":
		return cmdBundle(args[1:], out, errOut)
	case "cid":
		return cmdCID(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "bledt: BLE transfer schema toolchain")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bledt gen --schemas <dir> --out <dir> [--targets dart,python,go] [--lock <file>] [--protoc <path>] [-I <dir>] [--extra <arg>]")
	fmt.Fprintln(w, "  bledt pin --schemas <dir> [-o <lockfile>]")
	fmt.Fprintln(w, "  bledt verify --schemas <dir> [--lock <lockfile>] [--store [--backend <name>]]")
	fmt.Fprintln(w, "  bledt sign --name <key> [--lock <lockfile>] [--key-dir <dir>]")
	fmt.Fprintln(w, "  bledt verify-sig [--lock <lockfile>]")
	fmt.Fprintln(w, "  bledt push --schemas <dir> [--lock <lockfile>] [--backend <name>]")
	fmt.Fprintln(w, "  bledt fetch -o <dir> [--lock <lockfile>] [--backend <name>]")
	fmt.Fprintln(w, "  bledt bundle export -o <file> [--lock <lockfile>] [--backend <name>]")
	fmt.Fprintln(w, "  bledt bundle import <file> [--backend <name>] [-o <dir>]")
	fmt.Fprintln(w, "  bledt cid <file>")
	fmt.Fprintln(w, "  bledt key init --name <name>")
	fmt.Fprintln(w, "  bledt key list")
	fmt.Fprintln(w, "  bledt key export --name <name>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - locks pin schema bytes by CIDv1 (raw, sha2-256)")
	fmt.Fprintln(w, "  - keys live under ~/.deepcare/keys (0600 seed files)")
	fmt.Fprintln(w, "  - backends: localfs (default), grpc (see bledt-registryd)")
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func cmdGen(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	schemas := fs.String("schemas", "proto", "schema directory")
	outDir := fs.String("out", "gen-out", "output root directory")
	targets := fs.String("targets", "dart,python", "comma-separated targets (dart, python, go)")
	lockPath := fs.String("lock", "", "verify schemas against this lock before generating")
	protoc := fs.String("protoc", "", "protoc executable (default: protoc from PATH)")
	var includes stringList
	fs.Var(&includes, "I", "additional include directory (repeatable)")
	var extra stringList
	fs.Var(&extra, "extra", "extra protoc argument (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	g := &gen.Generator{
		Protoc:      *protoc,
		IncludeDirs: includes,
		OutDir:      *outDir,
		ExtraArgs:   extra,
	}
	for _, name := range strings.Split(*targets, ",") {
		switch strings.TrimSpace(name) {
		case "dart":
			g.Targets = append(g.Targets, gen.Dart)
		case "python":
			g.Targets = append(g.Targets, gen.Python)
		case "go":
			g.Targets = append(g.Targets, gen.Go)
		case "":
		default:
			fmt.Fprintf(errOut, "unknown target: %s\n", name)
			return 2
		}
	}
	if *lockPath != "" {
		lock, err := schemaset.ReadLockFile(*lockPath)
		if err != nil {
			fmt.Fprintf(errOut, "read lock: %v\n", err)
			return 1
		}
		g.Lock = lock
	}

	if err := g.Run(context.Background(), *schemas); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "generated %s for %s\n", *targets, *schemas)
	return 0
}

func cmdPin(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("pin", flag.ContinueOnError)
	fs.SetOutput(errOut)
	schemas := fs.String("schemas", "proto", "schema directory")
	lockPath := fs.String("o", defaultLockFile, "lock file to write")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	files, err := schemaset.Scan(*schemas)
	if err != nil {
		fmt.Fprintf(errOut, "scan: %v\n", err)
		return 1
	}
	lock, err := schemaset.Pin(files)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	enc, err := schemaset.EncodeLock(lock)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := os.WriteFile(*lockPath, enc, 0o644); err != nil {
		fmt.Fprintf(errOut, "write lock: %v\n", err)
		return 1
	}
	id, err := lock.CID()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "%s\t%d files\n", id, len(lock.Files))
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	schemas := fs.String("schemas", "proto", "schema directory")
	lockPath := fs.String("lock", defaultLockFile, "lock file")
	store := fs.Bool("store", false, "verify against a blob store instead of a directory")
	backend := fs.String("backend", "localfs", "blob store backend (with -store)")
	regbackends.RegisterFlags(fs, regbackends.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	lock, err := schemaset.ReadLockFile(*lockPath)
	if err != nil {
		fmt.Fprintf(errOut, "read lock: %v\n", err)
		return 1
	}

	if !*store {
		if err := schemaset.VerifyDir(lock, *schemas); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, "OK")
		return 0
	}

	bs, closeFn, err := regbackends.Open(*backend, regbackends.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	// The gRPC registry can check a whole lock in one round trip.
	if lc, ok := bs.(interface {
		Missing(*schemaset.Lock) ([]cid.Cid, error)
	}); ok {
		missing, err := lc.Missing(lock)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		if len(missing) > 0 {
			for _, id := range missing {
				fmt.Fprintf(errOut, "missing: %s\n", id)
			}
			return 1
		}
		fmt.Fprintln(out, "OK")
		return 0
	}

	if err := schemaset.VerifyStore(lock, bs); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, "OK")
	return 0
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	lockPath := fs.String("lock", defaultLockFile, "lock file to sign in place")
	name := fs.String("name", "", "key name in the keystore")
	keyDir := fs.String("key-dir", "", "keystore directory (default ~/.deepcare/keys)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		fmt.Fprintln(errOut, "usage: bledt sign --name <key> [--lock <lockfile>]")
		return 2
	}

	ks, err := keys.OpenKeyStore(*keyDir)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	priv, err := ks.Load(*name)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	lock, err := schemaset.ReadLockFile(*lockPath)
	if err != nil {
		fmt.Fprintf(errOut, "read lock: %v\n", err)
		return 1
	}
	if err := schemaset.SignEd25519(lock, priv); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	enc, err := schemaset.EncodeLock(lock)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := os.WriteFile(*lockPath, enc, 0o644); err != nil {
		fmt.Fprintf(errOut, "write lock: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "signed %s with %s\n", *lockPath, *name)
	return 0
}

func cmdVerifySig(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify-sig", flag.ContinueOnError)
	fs.SetOutput(errOut)
	lockPath := fs.String("lock", defaultLockFile, "lock file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	lock, err := schemaset.ReadLockFile(*lockPath)
	if err != nil {
		fmt.Fprintf(errOut, "read lock: %v\n", err)
		return 1
	}
	if err := schemaset.VerifySignatures(lock); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "OK (%d signatures)\n", len(lock.Signatures))
	return 0
}

func cmdPush(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("push", flag.ContinueOnError)
	fs.SetOutput(errOut)
	schemas := fs.String("schemas", "proto", "schema directory")
	lockPath := fs.String("lock", defaultLockFile, "lock file")
	backend := fs.String("backend", "localfs", "blob store backend")
	regbackends.RegisterFlags(fs, regbackends.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	lock, err := schemaset.ReadLockFile(*lockPath)
	if err != nil {
		fmt.Fprintf(errOut, "read lock: %v\n", err)
		return 1
	}
	store, closeFn, err := regbackends.Open(*backend, regbackends.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	id, err := schemaset.Push(lock, *schemas, store)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, id)
	return 0
}

func cmdFetch(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(errOut)
	lockPath := fs.String("lock", defaultLockFile, "lock file")
	outDir := fs.String("o", "", "directory to write fetched schemas into")
	backend := fs.String("backend", "localfs", "blob store backend")
	regbackends.RegisterFlags(fs, regbackends.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *outDir == "" {
		fmt.Fprintln(errOut, "usage: bledt fetch -o <dir> [--lock <lockfile>]")
		return 2
	}

	lock, err := schemaset.ReadLockFile(*lockPath)
	if err != nil {
		fmt.Fprintf(errOut, "read lock: %v\n", err)
		return 1
	}
	store, closeFn, err := regbackends.Open(*backend, regbackends.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	if err := schemaset.FetchDir(lock, store, *outDir); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "fetched %d files into %s\n", len(lock.Files), *outDir)
	return 0
}

func cmdBundle(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: bledt bundle <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: export, import")
		return 2
	}
	switch args[0] {
	case "export":
		return cmdBundleExport(args[1:], out, errOut)
	case "import":
		return cmdBundleImport(args[1:], out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown bundle subcommand: %s\n", args[0])
		return 2
	}
}

func cmdBundleExport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle export", flag.ContinueOnError)
	fs.SetOutput(errOut)
	lockPath := fs.String("lock", defaultLockFile, "lock file")
	outPath := fs.String("o", "", "bundle file to write")
	backend := fs.String("backend", "localfs", "blob store backend")
	regbackends.RegisterFlags(fs, regbackends.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *outPath == "" {
		fmt.Fprintln(errOut, "usage: bledt bundle export -o <file> [--lock <lockfile>]")
		return 2
	}

	lock, err := schemaset.ReadLockFile(*lockPath)
	if err != nil {
		fmt.Fprintf(errOut, "read lock: %v\n", err)
		return 1
	}
	store, closeFn, err := regbackends.Open(*backend, regbackends.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := bundle.Export(f, lock, store); err != nil {
		f.Close()
		fmt.Fprintln(errOut, err)
		return 1
	}
	if err := f.Close(); err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintf(out, "wrote %s\n", *outPath)
	return 0
}

func cmdBundleImport(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("bundle import", flag.ContinueOnError)
	fs.SetOutput(errOut)
	backend := fs.String("backend", "localfs", "blob store backend")
	outDir := fs.String("o", "", "also materialize the schemas into this directory")
	regbackends.RegisterFlags(fs, regbackends.UsageCLI)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: bledt bundle import <file> [--backend <name>] [-o <dir>]")
		return 2
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	defer f.Close()

	store, closeFn, err := regbackends.Open(*backend, regbackends.UsageCLI)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	if closeFn != nil {
		defer closeFn()
	}

	lock, err := bundle.Import(f, store)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if *outDir != "" {
		if err := schemaset.FetchDir(lock, store, *outDir); err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
	}
	id, err := lock.CID()
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, id)
	return 0
}

func cmdCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: bledt cid <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	fmt.Fprintln(out, cidutil.SumString(b))
	return 0
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: bledt key <subcommand> ...")
		fmt.Fprintln(errOut, "subcommands: init, list, export")
		return 2
	}

	sub := args[0]
	fs := flag.NewFlagSet("key "+sub, flag.ContinueOnError)
	fs.SetOutput(errOut)
	name := fs.String("name", "", "key name")
	keyDir := fs.String("key-dir", "", "keystore directory (default ~/.deepcare/keys)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	ks, err := keys.OpenKeyStore(*keyDir)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}

	switch sub {
	case "init":
		if *name == "" {
			fmt.Fprintln(errOut, "usage: bledt key init --name <name>")
			return 2
		}
		pub, err := ks.Generate(*name)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		fmt.Fprintln(out, keys.FormatPublicKey(keys.AlgEd25519, pub))
		return 0
	case "list":
		names, err := ks.List()
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		for _, n := range names {
			fmt.Fprintln(out, n)
		}
		return 0
	case "export":
		if *name == "" {
			fmt.Fprintln(errOut, "usage: bledt key export --name <name>")
			return 2
		}
		priv, err := ks.Load(*name)
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		pub, ok := priv.Public().(ed25519.PublicKey)
		if !ok {
			fmt.Fprintln(errOut, "bad key material")
			return 1
		}
		fmt.Fprintln(out, keys.FormatPublicKey(keys.AlgEd25519, pub))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n", sub)
		return 2
	}
}
