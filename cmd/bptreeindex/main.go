// Command bptreeindex drives a disk-backed B+Tree secondary index from
// the shell: load fixed-width integer records into a heap file, build
// an index over them, run a range scan, or dump the tree's structure.
//
// Usage:
//
//	bptreeindex load   <heap-file> <values...>
//	bptreeindex build  <heap-file> <index-file> <relation> <attr-offset>
//	bptreeindex scan   <index-file> <relation> <attr-offset> <lowOp> <lowVal> <highOp> <highVal>
//	bptreeindex inspect <index-file> <relation> <attr-offset>
//	bptreeindex snapshot <index-file> <relation> <attr-offset> <out-file>
//	bptreeindex show-snapshot <snapshot-file>
package main

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/latticedb/bptreeindex/heap"
	"github.com/latticedb/bptreeindex/index"
)

const (
	defaultPoolSize = 64
	defaultLruK     = 2
	recordSize      = 4 // one int32 key per record, for this command's own use
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "load":
		err = runLoad(os.Args[2:])
	case "build":
		err = runBuild(os.Args[2:])
	case "scan":
		err = runScan(os.Args[2:])
	case "inspect":
		err = runInspect(os.Args[2:])
	case "snapshot":
		err = runSnapshot(os.Args[2:])
	case "show-snapshot":
		err = runShowSnapshot(os.Args[2:])
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "bptreeindex: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bptreeindex load|build|scan|inspect|snapshot|show-snapshot ...")
	os.Exit(2)
}

func runLoad(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("load <heap-file> <values...>")
	}
	hf, err := heap.Open(args[0], recordSize, defaultPoolSize, defaultLruK)
	if err != nil {
		return err
	}
	defer hf.Close()

	for _, raw := range args[1:] {
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return fmt.Errorf("parsing value %q: %w", raw, err)
		}
		rec := make([]byte, recordSize)
		binary.LittleEndian.PutUint32(rec, uint32(int32(v)))
		rid, err := hf.Append(rec)
		if err != nil {
			return err
		}
		fmt.Printf("inserted %d at page=%d slot=%d\n", v, rid.PageNum, rid.SlotNum)
	}
	return nil
}

func runBuild(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("build <heap-file> <index-file> <relation> <attr-offset>")
	}
	attrOffset, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("parsing attr-offset: %w", err)
	}

	hf, err := heap.Open(args[0], recordSize, defaultPoolSize, defaultLruK)
	if err != nil {
		return err
	}
	defer hf.Close()

	idx, err := index.Open(hf, args[1], args[2], int32(attrOffset), index.AttrInteger, defaultPoolSize, defaultLruK)
	if err != nil {
		return err
	}
	defer idx.Close()

	fmt.Println("build complete")
	return nil
}

func runScan(args []string) error {
	if len(args) != 7 {
		return fmt.Errorf("scan <index-file> <relation> <attr-offset> <lowOp> <lowVal> <highOp> <highVal>")
	}
	attrOffset, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("parsing attr-offset: %w", err)
	}
	lowOp, err := parseOperator(args[3])
	if err != nil {
		return err
	}
	lowVal, err := strconv.ParseInt(args[4], 10, 32)
	if err != nil {
		return fmt.Errorf("parsing lowVal: %w", err)
	}
	highOp, err := parseOperator(args[5])
	if err != nil {
		return err
	}
	highVal, err := strconv.ParseInt(args[6], 10, 32)
	if err != nil {
		return fmt.Errorf("parsing highVal: %w", err)
	}

	idx, err := index.Open(nil, args[0], args[1], int32(attrOffset), index.AttrInteger, defaultPoolSize, defaultLruK)
	if err != nil {
		return err
	}
	defer idx.Close()

	if err := idx.StartScan(int32(lowVal), int32(highVal), lowOp, highOp); err != nil {
		return err
	}
	defer idx.EndScan()

	for {
		rid, err := idx.ScanNext()
		if err != nil {
			if errors.Is(err, index.ErrScanDone) {
				return nil
			}
			return err
		}
		fmt.Printf("page=%d slot=%d\n", rid.PageNum, rid.SlotNum)
	}
}

func parseOperator(s string) (index.Operator, error) {
	switch s {
	case "GT":
		return index.GT, nil
	case "GTE":
		return index.GTE, nil
	case "LT":
		return index.LT, nil
	case "LTE":
		return index.LTE, nil
	default:
		return 0, fmt.Errorf("unknown operator %q", s)
	}
}

func runInspect(args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("inspect <index-file> <relation> <attr-offset>")
	}
	attrOffset, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("parsing attr-offset: %w", err)
	}

	idx, err := index.Open(nil, args[0], args[1], int32(attrOffset), index.AttrInteger, defaultPoolSize, defaultLruK)
	if err != nil {
		return err
	}
	defer idx.Close()

	report, err := idx.Inspect()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func runSnapshot(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("snapshot <index-file> <relation> <attr-offset> <out-file>")
	}
	attrOffset, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("parsing attr-offset: %w", err)
	}

	idx, err := index.Open(nil, args[0], args[1], int32(attrOffset), index.AttrInteger, defaultPoolSize, defaultLruK)
	if err != nil {
		return err
	}
	defer idx.Close()

	report, err := idx.Inspect()
	if err != nil {
		return err
	}
	data, err := report.Snapshot()
	if err != nil {
		return err
	}
	return os.WriteFile(args[3], data, 0644)
}

func runShowSnapshot(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("show-snapshot <snapshot-file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	report, err := index.DecodeTreeReport(data)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
