// Package main provides the Lattice CLI.
package main

import (
	"fmt"
	"os"

	"github.com/lattice-ml/lattice/internal/serialization"
	"github.com/lattice-ml/lattice/loader"
)

const version = "v0.1.0-dev"

var presets = []string{
	"resnext50_32x4d",
	"resnext101_32x4d",
	"resnext101_64x4d",
	"se_resnext50_32x4d",
	"se_resnext101_32x4d",
	"se_resnext101_64x4d",
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("Lattice %s\n", version)
			return
		case "presets":
			for _, name := range presets {
				fmt.Println(name)
			}
			return
		case "inspect":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "usage: lattice inspect <model.ltc>")
				os.Exit(2)
			}
			if err := inspect(os.Args[2]); err != nil {
				fmt.Fprintf(os.Stderr, "lattice: %v\n", err)
				os.Exit(1)
			}
			return
		case "convert":
			if len(os.Args) < 5 {
				fmt.Fprintln(os.Stderr, "usage: lattice convert <in.safetensors> <out.ltc> <model-type>")
				os.Exit(2)
			}
			if err := convert(os.Args[2], os.Args[3], os.Args[4]); err != nil {
				fmt.Fprintf(os.Stderr, "lattice: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("Lattice - CNN inference for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version             Show version")
	fmt.Println("  presets             List built-in model presets")
	fmt.Println("  inspect <file.ltc>  Show the contents of a model file")
	fmt.Println("  convert <in> <out> <model-type>")
	fmt.Println("                      Convert a torchvision SafeTensors checkpoint to .ltc")
}

// inspect prints the header and tensor listing of a .ltc model file.
func inspect(path string) error {
	reader, err := serialization.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	header := reader.Header()
	fmt.Printf("model type: %s\n", header.ModelType)
	fmt.Printf("format:     v%d\n", header.FormatVersion)
	fmt.Printf("created:    %s\n", header.CreatedAt)
	fmt.Printf("tensors:    %d\n\n", len(header.Tensors))
	for _, meta := range header.Tensors {
		fmt.Printf("  %-48s %-8s %v\n", meta.Name, meta.DType, meta.Shape)
	}
	return nil
}

// convert rewrites a torchvision SafeTensors checkpoint as a native
// .ltc model file.
func convert(inPath, outPath, modelType string) error {
	stateDict, err := loader.LoadStateDict(inPath, loader.NewTorchvisionMapper())
	if err != nil {
		return err
	}

	writer, err := serialization.NewWriter(outPath)
	if err != nil {
		return err
	}
	defer writer.Close()

	if err := writer.WriteStateDict(stateDict, modelType, map[string]string{
		"source": inPath,
	}); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d tensors)\n", outPath, len(stateDict))
	return nil
}
