// Package bff reads AIX Backup File Format (BFF) archives, the format
// produced by the AIX backup command and used for installp software
// packages.
//
// An archive is a file header followed by a sequence of records. Each
// record carries Unix metadata (mode, owner, timestamps) and, for regular
// files, a payload that is either stored raw or compressed with AIX's
// adaptive Huffman coding (pack). Both encodings are decoded
// transparently.
//
// # Quick Start
//
// Open an archive and list its records:
//
//	archive, err := bff.Open("backup.bff")
//	if err != nil {
//	    return err
//	}
//	defer archive.Close()
//	for _, rec := range archive.Records() {
//	    fmt.Println(rec.Name, rec.Size)
//	}
//
// Extract everything to a directory:
//
//	err = archive.Extract("./out",
//	    bff.ExtractWithPermissions(true),
//	)
//
// Read a single member without touching the filesystem:
//
//	content, err := archive.ReadFile("usr/lpp/bos/liblpp.a")
//
// # Filesystem Access
//
// [Archive] implements [io/fs.FS], [io/fs.StatFS], [io/fs.ReadDirFS], and
// [io/fs.ReadFileFS] over the archived paths, so archives compose with
// fs.WalkDir, fs.Glob, and anything else that consumes an fs.FS.
//
// # Malformed Input
//
// Archives in the wild often carry stray bytes between records; the
// scanner steps over unrecognized record headers and treats a truncated
// final record as the end of the archive. Structural errors inside a
// compressed payload are reported when the record's content is read.
package bff
