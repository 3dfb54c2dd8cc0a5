// Validates physics scene files for setups that won't collide as expected.
//
// Usage: validate_scene [-format text|yaml] scene.json...
package main

import (
	"flag"
	"fmt"
	"os"

	"rigid3d/internal/scenefile"
	"rigid3d/internal/validate"
)

var format = flag.String("format", "text", "Report format: text|yaml")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-format text|yaml] <scene.json>...\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "Validates physics scene configuration for collision detection issues.")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}
	if *format != "text" && *format != "yaml" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(1)
	}

	allValid := true
	for _, path := range flag.Args() {
		if !check(path) {
			allValid = false
		}
	}

	if *format == "text" {
		if allValid {
			fmt.Println("All scenes passed validation")
		} else {
			fmt.Println("Some scenes have validation errors")
		}
	}
	if !allValid {
		os.Exit(1)
	}
}

func check(path string) bool {
	scene, err := scenefile.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: failed to load scene '%s': %v\n", path, err)
		return false
	}
	report := validate.Validate(scene)
	report.Scene = path

	switch *format {
	case "yaml":
		data, err := report.YAML()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return false
		}
		fmt.Println("---")
		os.Stdout.Write(data)
	default:
		fmt.Println("=== Physics Scene Validation Report ===")
		report.WriteText(os.Stdout)
		fmt.Println()
	}
	return report.Valid
}
