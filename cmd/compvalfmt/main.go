// Command compvalfmt registers the types in a YAML manifest, parses a
// literal for one of them from stdin, and prints it back out in pretty or
// wire form. It exists mainly as a worked example of wiring an Engine end
// to end, not as a production tool — the flag package is the only
// dependency it needs, so that is all it uses.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dbkit/compval"
)

func main() {
	manifestPath := flag.String("manifest", "", "path to a YAML type manifest")
	typeName := flag.String("type", "", "registered type name to parse stdin as")
	wire := flag.Bool("wire", false, "print wire-format output instead of pretty")
	flag.Parse()

	if *manifestPath == "" || *typeName == "" {
		fmt.Fprintln(os.Stderr, "usage: compvalfmt -manifest manifest.yaml -type cluster < literal.txt")
		os.Exit(2)
	}

	if err := run(*manifestPath, *typeName, *wire); err != nil {
		fmt.Fprintln(os.Stderr, "compvalfmt:", err)
		os.Exit(1)
	}
}

func run(manifestPath, typeName string, wire bool) error {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}

	e := compval.NewEngine()
	if err := e.LoadManifest(data); err != nil {
		return err
	}

	t, ok := e.Registry().Lookup(typeName)
	if !ok {
		return fmt.Errorf("type %q not found in manifest", typeName)
	}

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		return err
	}

	v, err := e.Parse(string(text), t, nil)
	if err != nil {
		return err
	}
	defer v.Free(t)

	fmt.Println(e.Serialize(v, t, wire))
	return nil
}
