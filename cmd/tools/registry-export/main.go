// cmd/tools/registry-export/main.go
//
// registry-export writes the compiled action table to a JSON file so
// dashboard teams can consume the registry without calling the service.
package main

import (
	"flag"
	"fmt"
	"os"

	"insight-service/internal/common/config"
	"insight-service/internal/dispatch"
	"insight-service/pkg/registry"
)

func main() {
	outPath := flag.String("out", "configs/action-registry.json", "Path to write the registry JSON")
	version := flag.String("version", "1.0.0", "Registry document version")
	flag.Parse()

	reg := dispatch.NewRegistry(config.ActionsConfig{})
	doc := reg.ExportDocument(*version)

	if err := registry.SaveRegistry(*outPath, doc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write registry: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d actions to %s\n", len(doc.Actions), *outPath)
}
