// meshtool is a CLI utility for inspecting, welding and converting STL files.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Faultbox/stlview/internal/engine/mesh"
	"github.com/Faultbox/stlview/internal/export"
	"github.com/Faultbox/stlview/internal/logger"
	"github.com/Faultbox/stlview/pkg/stl"
)

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "info":
		return cmdInfo(args, out)
	case "weld":
		return cmdWeld(args, out)
	case "export":
		return cmdExport(args, out)
	case "convert":
		return cmdConvert(args, out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `meshtool - STL mesh utility

Usage:
  meshtool <command> [options]

Commands:
  info <file.stl>                      Show format, triangle count and bounds
  weld [-v] <file.stl>                 Weld vertices and report the result
  export [-name n] <file.stl> <out.glb> Weld and write a glTF binary
  convert [-name n] <in.stl> <out.stl>  Rewrite any STL as binary STL

Examples:
  meshtool info bracket.stl
  meshtool weld -v bracket.stl
  meshtool export bracket.stl bracket.glb`)
}

func cmdInfo(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: meshtool info <file.stl>", errUsage)
	}

	s, err := stl.ParseFile(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "File:      %s\n", args[0])
	fmt.Fprintf(out, "Format:    %s\n", s.Format)
	fmt.Fprintf(out, "Name:      %s\n", s.Name)
	fmt.Fprintf(out, "Triangles: %d\n", len(s.Faces))
	if lo, hi, ok := s.Bounds(); ok {
		size := hi.Sub(lo)
		fmt.Fprintf(out, "Min:       %.4f %.4f %.4f\n", lo.X, lo.Y, lo.Z)
		fmt.Fprintf(out, "Max:       %.4f %.4f %.4f\n", hi.X, hi.Y, hi.Z)
		fmt.Fprintf(out, "Size:      %.4f %.4f %.4f\n", size.X, size.Y, size.Z)
	}
	return nil
}

func cmdWeld(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("weld", flag.ContinueOnError)
	fs.SetOutput(out)
	verbose := fs.Bool("v", false, "Log welding details")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: meshtool weld [-v] <file.stl>", errUsage)
	}

	if *verbose {
		if err := logger.Init("debug", ""); err != nil {
			return err
		}
		defer logger.Sync()
	}

	start := time.Now()
	m, err := mesh.NewWelder(logger.Named("mesh")).LoadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	raw := 3 * m.TriangleCount()
	fmt.Fprintf(out, "File:               %s\n", fs.Arg(0))
	fmt.Fprintf(out, "Triangles:          %d\n", m.TriangleCount())
	fmt.Fprintf(out, "Raw vertices:       %d\n", raw)
	fmt.Fprintf(out, "Unique vertices:    %d\n", m.VertexCount())
	fmt.Fprintf(out, "Indices:            %d\n", len(m.Indices))
	if m.VertexCount() > 0 {
		fmt.Fprintf(out, "Weld ratio:         %.2f\n", float64(raw)/float64(m.VertexCount()))
	}
	fmt.Fprintf(out, "Degenerate normals: %d\n", m.DegenerateNormals())
	fmt.Fprintf(out, "Elapsed:            %s\n", elapsed.Round(time.Microsecond))
	return nil
}

func cmdExport(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("name", "", "Mesh name (default: input file name)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: meshtool export [-name n] <file.stl> <out.glb>", errUsage)
	}
	in, dst := fs.Arg(0), fs.Arg(1)

	m, err := mesh.LoadFile(in)
	if err != nil {
		return err
	}
	if *name == "" {
		*name = baseName(in)
	}
	if err := export.SaveGLB(dst, *name, m); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s: %d vertices, %d triangles\n", dst, m.VertexCount(), m.TriangleCount())
	return nil
}

func cmdConvert(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("name", "", "Header text (default: solid name or input file name)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("%w: meshtool convert [-name n] <in.stl> <out.stl>", errUsage)
	}
	in, dst := fs.Arg(0), fs.Arg(1)

	s, err := stl.ParseFile(in)
	if err != nil {
		return err
	}
	header := *name
	if header == "" {
		header = s.Name
	}
	if header == "" {
		header = baseName(in)
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err := stl.EncodeBinary(f, header, s.Faces); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Wrote %s: %d triangles (%s -> binary)\n", dst, len(s.Faces), s.Format)
	return nil
}

func baseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
