// Command omfdump parses OMF object files and libraries and prints their
// record stream as human-readable text or JSON. It can also score arbitrary
// files for OMF-ness and scan binaries for embedded OMF structures.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/HK47196/go-omf"
)

var (
	asJSON        bool
	detectMode    bool
	scanMode      bool
	patternsMode  bool
	minConfidence float64
)

func main() {
	log.SetHandler(cli.Default)

	cmd := &cobra.Command{
		Use:   "omfdump <file>",
		Short: "Dump Intel/TIS OMF object files and libraries",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args[0])
		},
		SilenceUsage: true,
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit JSON instead of text")
	cmd.Flags().BoolVar(&detectMode, "detect", false, "score the file for OMF-ness and exit")
	cmd.Flags().BoolVar(&scanMode, "scan", false, "scan for embedded OMF structures")
	cmd.Flags().BoolVar(&patternsMode, "patterns", false, "grep for OMF signatures")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0.5, "minimum confidence for --scan candidates")

	if err := cmd.Execute(); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}

	switch {
	case detectMode:
		return runDetect(data)
	case scanMode:
		return runScan(data)
	case patternsMode:
		return runPatterns(data)
	}
	return runDump(path, data)
}

func runDetect(data []byte) error {
	isOMF, confidence, desc := omf.Detect(data)
	if asJSON {
		return printJSON(map[string]interface{}{
			"is_omf":      isOMF,
			"confidence":  confidence,
			"description": desc,
		})
	}
	fmt.Printf("%s (confidence %.0f%%)\n", desc, confidence*100)
	return nil
}

func runScan(data []byte) error {
	candidates := omf.Scan(data, minConfidence)
	if asJSON {
		return printJSON(candidates)
	}
	for _, c := range candidates {
		fmt.Printf("[%06X] %-40s confidence %.0f%%\n", c.Offset, c.Description, c.Confidence*100)
	}
	fmt.Printf("%d candidate(s)\n", len(candidates))
	return nil
}

func runPatterns(data []byte) error {
	matches := omf.ScanForPatterns(data, nil)
	if asJSON {
		return printJSON(matches)
	}
	for _, m := range matches {
		fmt.Printf("[%06X] %-20s %q\n", m.Offset, m.Pattern, m.Match)
	}
	fmt.Printf("%d match(es)\n", len(matches))
	return nil
}

func runDump(path string, data []byte) error {
	f := omf.Parse(data)

	if asJSON {
		return printJSON(f)
	}

	div := strings.Repeat("=", 60)
	fmt.Println(div)
	fmt.Printf("OMF Analysis: %s\n", path)
	fmt.Println(div)
	fmt.Printf("File Size: %d bytes\n", len(data))
	if f.IsLibrary {
		fmt.Println("File Type: OMF Library (.LIB)")
	} else {
		fmt.Println("File Type: OMF Object Module (.OBJ)")
	}
	fmt.Printf("Variant: %s\n", f.Variant)
	if f.MixedVariants {
		fmt.Println("Mixed variants: yes")
	}
	if feats := f.Features.List(); len(feats) > 0 {
		fmt.Printf("Features: %s\n", strings.Join(feats, ", "))
	}
	fmt.Println()

	for _, rec := range f.Records {
		printRecord(rec)
	}

	if f.Dictionary != nil {
		fmt.Println()
		fmt.Printf("Library Dictionary: %d entries\n", len(f.Dictionary.Entries))
		for _, e := range f.Dictionary.Entries {
			fmt.Printf("  [block %d, bucket %2d] %-30s page %d\n", e.Block, e.Bucket, e.Symbol, e.Page)
		}
	}
	if f.ExtendedDict != nil {
		fmt.Printf("Extended Dictionary: %d module(s)\n", f.ExtendedDict.NumModules)
	}

	fmt.Println()
	fmt.Println(div)
	fmt.Printf("Total Records: %d\n", len(f.Records))
	if len(f.Warnings) > 0 {
		fmt.Printf("Warnings (%d):\n", len(f.Warnings))
		for _, w := range f.Warnings {
			fmt.Printf("  %s\n", w)
		}
	}
	if f.Fault != "" {
		fmt.Printf("Structural fault: %s\n", f.Fault)
	}
	fmt.Println(div)
	return nil
}

func printRecord(rec *omf.Record) {
	status := ""
	if rec.HasChecksum {
		switch {
		case rec.Checksum == 0:
			status = "Chk=00 (Skipped)"
		case rec.ChecksumValid:
			status = fmt.Sprintf("Chk=%02X (Valid)", rec.Checksum)
		default:
			status = fmt.Sprintf("Chk=%02X (Invalid)", rec.Checksum)
		}
	}
	fmt.Printf("[%06X] %-14s Len=%-5d %s\n", rec.Offset, rec.Name(), rec.Length, status)

	if rec.Err != "" {
		fmt.Printf("  [!] Error: %s\n", rec.Err)
		return
	}
	if rec.Parsed == nil {
		return
	}

	// The payload structs are the schema; rendering them as indented JSON
	// keeps the text dump exhaustive without a second formatter layer.
	buf, err := json.MarshalIndent(rec.Parsed, "  ", "  ")
	if err != nil {
		log.Errorf("marshal payload: %v", err)
		return
	}
	fmt.Printf("  %s\n", buf)
}

func printJSON(v interface{}) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return errors.Wrap(err, "indent")
	}
	fmt.Println(pretty.String())
	return nil
}
