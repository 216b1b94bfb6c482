// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
)

const (
	localHeaderLen = 30 // fixed-size portion, signature included

	methodStore   = 0
	methodDeflate = 8

	// Bit 3 of the general purpose flags defers sizes to a trailing data
	// descriptor; such entries cannot be walked sequentially.
	flagDataDescriptor = 0x0008
)

// lenientReader is the fallback strategy. It ignores the central directory
// entirely and walks local file headers from the start of the container, which
// tolerates truncated or non-conforming directory records. Slower than the
// primary reader: the whole header chain is indexed up front.
type lenientReader struct {
	ra      io.ReaderAt
	entries []Entry
}

type localEntry struct {
	path       string
	method     uint16
	compSize   int64
	uncompSize int64
	dataOffset int64
}

func newLenientReader(ra io.ReaderAt, size int64) (*lenientReader, error) {
	r := &lenientReader{ra: ra}

	offset := int64(0)
	header := make([]byte, localHeaderLen)
	for offset+localHeaderLen <= size {
		if _, err := ra.ReadAt(header, offset); err != nil {
			return nil, NewUnreadableArchiveError(err, "short read while walking local headers")
		}
		if !bytes.Equal(header[:4], localHeaderSignature) {
			// First record past the payload chain; anything after it belongs
			// to the (possibly broken) central directory.
			break
		}

		le := localEntry{
			method:     binary.LittleEndian.Uint16(header[8:10]),
			compSize:   int64(binary.LittleEndian.Uint32(header[18:22])),
			uncompSize: int64(binary.LittleEndian.Uint32(header[22:26])),
		}
		flags := binary.LittleEndian.Uint16(header[6:8])
		nameLen := int64(binary.LittleEndian.Uint16(header[26:28]))
		extraLen := int64(binary.LittleEndian.Uint16(header[28:30]))

		if flags&flagDataDescriptor != 0 {
			return nil, NewUnreadableArchiveError(nil,
				"entry defers sizes to a data descriptor")
		}

		name := make([]byte, nameLen)
		if _, err := ra.ReadAt(name, offset+localHeaderLen); err != nil {
			return nil, NewUnreadableArchiveError(err, "short read on entry name")
		}
		le.path = string(name)
		le.dataOffset = offset + localHeaderLen + nameLen + extraLen

		entry, err := r.toEntry(le)
		if err != nil {
			return nil, err
		}
		r.entries = append(r.entries, entry)

		offset = le.dataOffset + le.compSize
	}

	return r, nil
}

func (r *lenientReader) Entries() ([]Entry, error) {
	return r.entries, nil
}

func (r *lenientReader) toEntry(le localEntry) (Entry, error) {
	switch le.method {
	case methodStore, methodDeflate:
	default:
		return Entry{}, NewUnreadableArchiveError(nil, "unsupported compression method")
	}

	open := func() (io.ReadCloser, error) {
		section := io.NewSectionReader(r.ra, le.dataOffset, le.compSize)
		if le.method == methodStore {
			return io.NopCloser(section), nil
		}
		return flate.NewReader(section), nil
	}

	return Entry{
		Path: le.path,
		Size: le.uncompSize,
		Dir:  strings.HasSuffix(le.path, "/"),
		open: open,
	}, nil
}
