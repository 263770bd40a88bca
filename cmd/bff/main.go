// Command bff lists and extracts AIX Backup File Format archives.
//
// Usage:
//
//	bff [flags] archive [path-prefix ...]
//
// Without -t the selected records are extracted into the directory given
// by -C. Optional path prefixes restrict the operation to matching
// archive members.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/meigma/bff"
)

var (
	listFlag    = flag.Bool("t", false, "list the archive contents instead of extracting")
	numericFlag = flag.Bool("n", false, "list numeric user and group IDs instead of names")
	dirFlag     = flag.String("C", ".", "extract into `dir`")
	attrFlag    = flag.String("A", "t", "`attrs` to restore: p(ermissions), o(wners), t(imestamps), n(one)")
	globFlag    = flag.String("g", "", "select only members matching the glob `pattern`")
	verboseFlag = flag.Bool("v", false, "verbose output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: bff [flags] archive [path-prefix ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "bff:", err)
		os.Exit(1)
	}
}

func run(path string, prefixes []string) error {
	var opts []bff.Option
	if *verboseFlag {
		opts = append(opts, bff.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}

	archive, err := bff.Open(path, opts...)
	if err != nil {
		return err
	}
	defer archive.Close()

	if *globFlag != "" && !doublestar.ValidatePattern(*globFlag) {
		return fmt.Errorf("invalid pattern %q", *globFlag)
	}
	if *listFlag {
		return list(archive, prefixes)
	}
	return extract(archive, prefixes)
}

// selected applies the positional prefix filters and the -g pattern.
func selected(rec *bff.Record, prefixes []string) bool {
	if *globFlag != "" {
		if ok, _ := doublestar.Match(*globFlag, rec.Name); !ok {
			return false
		}
	}
	if len(prefixes) == 0 {
		return true
	}
	for _, p := range prefixes {
		if strings.HasPrefix(rec.Name, p) {
			return true
		}
	}
	return false
}

func list(archive *bff.ArchiveFile, prefixes []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, rec := range archive.Records() {
		if !selected(&rec, prefixes) {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			rec.Mode,
			userName(rec.UID),
			groupName(rec.GID),
			rec.Size,
			rec.ModTime.Format("2006-01-02 15:04"),
			rec.Name,
		)
	}
	return w.Flush()
}

func extract(archive *bff.ArchiveFile, prefixes []string) error {
	opts, err := attrOptions(*attrFlag)
	if err != nil {
		return err
	}
	opts = append(opts, bff.ExtractWithFilter(func(rec *bff.Record) bool {
		if !selected(rec, prefixes) {
			return false
		}
		if *verboseFlag {
			fmt.Println(rec.Name)
		}
		return true
	}))
	return archive.Extract(*dirFlag, opts...)
}

// attrOptions maps the -A letters onto extraction options.
func attrOptions(letters string) ([]bff.ExtractOption, error) {
	var perms, owners, times bool
	for _, c := range letters {
		switch c {
		case 'p':
			perms = true
		case 'o':
			owners = true
		case 't':
			times = true
		case 'n':
			if len(letters) > 1 {
				return nil, fmt.Errorf("-A n excludes other attribute letters")
			}
		default:
			return nil, fmt.Errorf("unknown attribute %q (want p, o, t, or n)", c)
		}
	}
	return []bff.ExtractOption{
		bff.ExtractWithPermissions(perms),
		bff.ExtractWithOwners(owners),
		bff.ExtractWithTimestamps(times),
	}, nil
}

func userName(uid uint32) string {
	id := strconv.FormatUint(uint64(uid), 10)
	if *numericFlag {
		return id
	}
	if u, err := user.LookupId(id); err == nil {
		return u.Username
	}
	return id
}

func groupName(gid uint32) string {
	id := strconv.FormatUint(uint64(gid), 10)
	if *numericFlag {
		return id
	}
	if g, err := user.LookupGroupId(id); err == nil {
		return g.Name
	}
	return id
}
