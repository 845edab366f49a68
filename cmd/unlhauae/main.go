package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"

	lha "unlhauae"
)

type options struct {
	fsuae, amiberry bool
	listOnly        bool
	jsonList        bool
	test            bool
	sum             string
	verbose         bool
	progress        bool
	spaceCheck      bool
	truncate        bool
	foldFiles       bool
	utc             bool
	noSync          bool
}

var (
	verboseMode, quietMode bool
	logOut                 io.Writer = os.Stdout
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("unlhauae: %v", err)
	}
}

func newFlagSet(o *options) *flag.FlagSet {
	fs := flag.NewFlagSet("unlhauae", flag.ContinueOnError)
	fs.BoolVar(&o.fsuae, "f", false, "write FS-UAE .uaem metadata files")
	fs.BoolVar(&o.fsuae, "fsuae", false, "same as -f")
	fs.BoolVar(&o.amiberry, "a", false, "write Amiberry _UAEFSDB.___ metadata")
	fs.BoolVar(&o.amiberry, "amiberry", false, "same as -a")
	fs.BoolVar(&o.listOnly, "l", false, "list archive contents only")
	fs.BoolVar(&o.jsonList, "json", false, "list archive contents as JSON")
	fs.BoolVar(&o.test, "t", false, "test archive integrity without extracting")
	fs.StringVar(&o.sum, "sum", "none", "with -t, print a content digest per file: none, xxh3, blake3, blake2b")
	fs.BoolVar(&o.verbose, "v", false, "verbose logging")
	fs.BoolVar(&o.progress, "progress", true, "show progress bar")
	fs.BoolVar(&o.spaceCheck, "space", true, "check free disk space before extracting")
	fs.BoolVar(&o.truncate, "truncate", false, "truncate metadata that does not fit instead of failing")
	fs.BoolVar(&o.foldFiles, "foldfiles", true, "merge file names that differ only in case")
	fs.BoolVar(&o.utc, "utc", false, "apply archive times as UTC instead of local time")
	fs.BoolVar(&o.noSync, "nosync", false, "do not fsync extracted files")
	fs.Usage = func() {
		w := fs.Output()
		fmt.Fprintln(w, "Usage: unlhauae [-f|-a] [-v] source.lha target")
		fmt.Fprintln(w, "       unlhauae -l|-t [-json] source.lha...")
		fmt.Fprintln(w, "\nExtracts an Amiga LhA archive, keeping comments and protection bits")
		fmt.Fprintln(w, "in emulator metadata files. The target must be absent or empty.")
		fmt.Fprintln(w, "\nOptions:")
		fs.PrintDefaults()
		fmt.Fprintln(w, "\n  unlhauae -f Game.lha dh1		(FS-UAE)")
		fmt.Fprintln(w, "  unlhauae -a Game.lha.gz dh1	(Amiberry)")
		fmt.Fprintln(w, "  unlhauae -l Game.lha")
		fmt.Fprintln(w, "  unlhauae -t -sum=blake3 *.lha")
	}
	return fs
}

func run(args []string, stdout io.Writer) error {
	var o options
	fs := newFlagSet(&o)
	if err := fs.Parse(args); err != nil {
		return err
	}
	verboseMode = o.verbose
	quietMode = o.jsonList

	if o.fsuae && o.amiberry {
		return errors.New("-f and -a cannot be used together")
	}
	if o.test && o.listOnly {
		return errors.New("-l and -t cannot be used together")
	}
	digest, err := lha.ParseDigest(o.sum)
	if err != nil {
		return err
	}
	readOnly := o.listOnly || o.jsonList || o.test
	if fs.NArg() < 1 || (!readOnly && fs.NArg() < 2) {
		fs.Usage()
		return errors.New("source and target are required")
	}

	mode := lha.ModeNone
	switch {
	case o.fsuae:
		mode = lha.ModeFSUAE
	case o.amiberry:
		mode = lha.ModeAmiberry
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []lha.Option{
		lha.WithMode(mode),
		lha.WithLogger(logger),
		lha.WithFoldLeaves(o.foldFiles),
	}
	if o.truncate {
		opts = append(opts, lha.WithOverflow(lha.OverflowTruncate))
	}
	if o.utc {
		opts = append(opts, lha.WithLocation(time.UTC))
	}
	if o.noSync {
		opts = append(opts, lha.WithNoSync())
	}

	if readOnly {
		return inspect(fs.Args(), opts, o, digest, stdout)
	}

	source := fs.Arg(0)
	arc, err := lha.OpenArchive(source)
	if err != nil {
		return fmt.Errorf("could not open the archive file: %w", err)
	}
	defer arc.Close()
	doLog(false, "Opening archive: %v", source)
	if arc.Wrapper != lha.WrapNone {
		doLog(true, "Archive is %v compressed", arc.Wrapper)
	}

	target := fs.Arg(1)
	if err := lha.PrepareTarget(target); err != nil {
		return err
	}
	doLog(false, "Destination: %v", target)

	showBar := o.progress && lha.IsTerminal(os.Stdout)
	var total int64
	if wantTotal(o, showBar) {
		total, err = unpackedSize(source)
		if err != nil {
			return err
		}
	}
	if o.spaceCheck {
		if err := lha.CheckSpace(target, uint64(total)); err != nil {
			return err
		}
	}

	var stop func()
	if showBar {
		p := lha.NewProgress(os.Stdout, total)
		opts = append(opts, lha.WithProgress(p))
		stop = p.Start()
	}
	ex, err := lha.NewExtractor(target, opts...)
	if err != nil {
		return err
	}
	st, err := ex.Extract(arc)
	if stop != nil {
		stop()
	}
	if err != nil {
		return err
	}

	doLog(false, "Extracted %v files, %v directories, %v (%v metadata files, mode %v)",
		st.Files, st.Dirs, humanize.Bytes(uint64(st.Bytes)), st.Sidecars, ex.Mode())
	if st.Skipped > 0 {
		doLog(false, "Skipped %v entries with unsupported compression", st.Skipped)
	}
	return nil
}

type report struct {
	entries  []lha.Listing
	verified []lha.Verified
	err      error
}

// inspect lists or tests each source. Archives are read concurrently and
// reported in argument order.
func inspect(sources []string, opts []lha.Option, o options, digest lha.Digest, stdout io.Writer) error {
	ex, err := lha.NewExtractor(".", opts...)
	if err != nil {
		return err
	}

	reports := make([]report, len(sources))
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for i, source := range sources {
		wg.Add()
		go func(r *report, source string) {
			defer wg.Done()
			arc, err := lha.OpenArchive(source)
			if err != nil {
				r.err = fmt.Errorf("could not open the archive file: %w", err)
				return
			}
			defer arc.Close()
			if o.test {
				r.verified, r.err = ex.Verify(arc, digest)
			} else {
				r.entries, r.err = ex.List(arc)
			}
		}(&reports[i], source)
	}
	wg.Wait()

	var failed int
	for i, r := range reports {
		if len(sources) > 1 && !o.jsonList {
			fmt.Fprintf(stdout, "%s:\n", sources[i])
		}
		switch {
		case o.jsonList && o.test:
			err = writeJSON(stdout, r.verified)
		case o.jsonList:
			err = writeJSON(stdout, r.entries)
		case o.test:
			printVerified(stdout, r.verified)
		default:
			printListing(stdout, r.entries)
		}
		if err != nil {
			return err
		}
		if r.err != nil {
			failed++
			if len(sources) == 1 {
				return r.err
			}
			doLog(false, "%v: %v", sources[i], r.err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d archives failed", failed, len(sources))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// wantTotal reports whether the unpacked size is needed, by the space check
// or by a progress bar that will actually be drawn.
func wantTotal(o options, showBar bool) bool {
	return o.spaceCheck || showBar
}

// unpackedSize sums the original sizes of all entries in a separate pass.
func unpackedSize(source string) (int64, error) {
	arc, err := lha.OpenArchive(source)
	if err != nil {
		return 0, err
	}
	defer arc.Close()
	ex, err := lha.NewExtractor(".")
	if err != nil {
		return 0, err
	}
	entries, err := ex.List(arc)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		total += e.OriginalSize
	}
	return total, nil
}

func printListing(w io.Writer, entries []lha.Listing) {
	var files int
	var bytes int64
	for _, e := range entries {
		kind := e.Method
		if !e.Supported {
			kind += "?"
		}
		fmt.Fprintf(w, "%s %s %10d %s", e.Protection, kind, e.OriginalSize, e.Path)
		if e.Comment != "" {
			fmt.Fprintf(w, " : %s", e.Comment)
		}
		fmt.Fprintln(w)
		if !e.Dir {
			files++
			bytes += e.OriginalSize
		}
	}
	fmt.Fprintf(w, "%v files, %v\n", files, humanize.Bytes(uint64(bytes)))
}

func printVerified(w io.Writer, files []lha.Verified) {
	var ok int
	for _, v := range files {
		switch {
		case v.Skipped:
			fmt.Fprintf(w, "skipped %s\n", v.Path)
		case v.Sum != "":
			ok++
			fmt.Fprintf(w, "%s  %s\n", v.Sum, v.Path)
		default:
			ok++
			fmt.Fprintf(w, "ok      %s\n", v.Path)
		}
	}
	fmt.Fprintf(w, "%v files verified\n", ok)
}

func doLog(verbose bool, format string, args ...interface{}) {
	if quietMode || (!verboseMode && verbose) {
		return
	}

	var text string
	if args == nil {
		text = format
	} else {
		text = fmt.Sprintf(format, args...)
	}

	if verbose {
		ctime := time.Now()
		_, filename, line, _ := runtime.Caller(1)
		date := fmt.Sprintf("%2v:%2v.%2v", ctime.Hour(), ctime.Minute(), ctime.Second())
		fmt.Fprintf(logOut, "%v: %15v:%5v: %v\n", date, filepath.Base(filename), line, text)
	} else {
		fmt.Fprintln(logOut, text)
	}
}
