package bff

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/meigma/bff/internal/layout"
)

// scanStatus classifies the outcome of reading one record.
type scanStatus int

const (
	// scanRecord means a record was read and should be kept.
	scanRecord scanStatus = iota
	// scanEnd means the source ended cleanly; scanning stops.
	scanEnd
	// scanSkip means the header was malformed; scanning resumes at the
	// position just past the header.
	scanSkip
	// scanFail means an unrecoverable read error; scanning aborts.
	scanFail
)

// scanRecords walks all records in sr, which must be positioned just past
// the file header. Malformed headers are logged and stepped over one
// header-width at a time until a valid sentinel reappears; a truncated
// trailing record ends the scan without error.
func scanRecords(sr *io.SectionReader, logger *slog.Logger) ([]Record, error) {
	var records []Record
	for {
		rec, status, err := nextRecord(sr)
		switch status {
		case scanRecord:
			records = append(records, rec)
		case scanSkip:
			logger.Debug("skipping malformed record", "error", err)
		case scanEnd:
			return records, nil
		case scanFail:
			return nil, err
		}
	}
}

func nextRecord(sr *io.SectionReader) (Record, scanStatus, error) {
	hdr, err := layout.ReadRecordHeader(sr)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, scanEnd, nil
		}
		return Record{}, scanFail, fmt.Errorf("bff: read record header: %w", err)
	}
	if hdr.Sentinel != layout.RecordSentinel {
		return Record{}, scanSkip, fmt.Errorf("%w: sentinel %#02x", ErrInvalidRecord, hdr.Sentinel)
	}
	if !layout.KnownRecordMagic(hdr.Magic) {
		return Record{}, scanSkip, fmt.Errorf("%w: %#04x", ErrRecordMagic, hdr.Magic)
	}

	name, err := layout.ReadAlignedString(sr)
	if err != nil {
		return Record{}, scanFail, fmt.Errorf("bff: read record name: %w", err)
	}
	if _, err := layout.ReadRecordTrailer(sr); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, scanEnd, nil
		}
		return Record{}, scanFail, fmt.Errorf("bff: read record trailer: %w", err)
	}

	offset, err := sr.Seek(0, io.SeekCurrent)
	if err != nil {
		return Record{}, scanFail, fmt.Errorf("bff: record offset: %w", err)
	}
	// The payload and its alignment padding are skipped, not read; a
	// truncated final payload surfaces when the record is opened.
	// Zero-size records store no payload bytes even when CompressedSize
	// is set, but their padding is still present.
	skip := layout.Align(int64(hdr.CompressedSize)) - int64(hdr.CompressedSize)
	if hdr.Size > 0 {
		skip += int64(hdr.CompressedSize)
	}
	if _, err := sr.Seek(skip, io.SeekCurrent); err != nil {
		return Record{}, scanFail, fmt.Errorf("bff: skip record payload: %w", err)
	}
	return newRecord(hdr, name, offset), scanRecord, nil
}
