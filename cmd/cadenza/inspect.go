package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/cadenza/internal/safetensors"
)

func inspectCmd() *cli.Command {
	var (
		filePath     string
		showMetadata bool
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "List the tensors in a safetensors file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to .safetensors file",
				Required:    true,
				Destination: &filePath,
			},
			&cli.BoolFlag{
				Name:        "metadata",
				Usage:       "also print the __metadata__ table",
				Destination: &showMetadata,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := safetensors.Open(filePath)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			describeFile(os.Stdout, f, showMetadata)
			return nil
		},
	}
}

func describeFile(w io.Writer, f *safetensors.File, showMetadata bool) {
	names := f.Names()
	_, _ = fmt.Fprintf(w, "%s: %d tensors\n", f.Path, len(names))
	for _, name := range names {
		info, _ := f.Tensor(name)
		_, _ = fmt.Fprintf(w, "  %-32s %-5s %v (%d bytes)\n", name, info.DType, info.Shape, info.End-info.Start)
	}
	if showMetadata && len(f.Metadata) > 0 {
		_, _ = fmt.Fprintln(w, "metadata:")
		for _, k := range slices.Sorted(maps.Keys(f.Metadata)) {
			_, _ = fmt.Fprintf(w, "  %s = %s\n", k, f.Metadata[k])
		}
	}
}
