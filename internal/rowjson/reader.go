package rowjson

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader splits an NDJSON stream into lines and tracks how many bytes have
// been consumed, for progress reporting. A leading UTF-8 BOM is skipped but
// still counted. It implements importer.Position.
type Reader struct {
	br         *bufio.Reader
	offset     int64
	size       int64
	line       int
	bomChecked bool
}

// NewReader wraps r. size is the total stream size, or 0 if unknown.
func NewReader(r io.Reader, size int64) *Reader {
	return &Reader{
		br:   bufio.NewReaderSize(r, 64*1024),
		size: size,
	}
}

// Next returns the next non-blank line and its 1-based line number.
// Returns io.EOF when the stream is exhausted.
func (r *Reader) Next() (int, []byte, error) {
	if !r.bomChecked {
		r.bomChecked = true
		if head, _ := r.br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
			n, _ := r.br.Discard(len(utf8BOM))
			r.offset += int64(n)
		}
	}

	for {
		data, err := r.br.ReadBytes('\n')
		r.offset += int64(len(data))
		if len(data) > 0 {
			r.line++
		}

		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 {
			return r.line, trimmed, nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, nil, io.EOF
			}
			return 0, nil, err
		}
	}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int64 {
	return r.offset
}

// Size returns the total stream size passed to NewReader.
func (r *Reader) Size() int64 {
	return r.size
}
