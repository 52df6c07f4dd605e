package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Reader hashes and counts everything read through it.
type Reader struct {
	src  io.Reader
	sum  hash.Hash
	read int64

	progress func(read, total int64)
	total    int64
	every    int64
	pending  int64
}

func NewReader(r io.Reader) *Reader {
	return &Reader{src: r, sum: sha256.New()}
}

// WithProgress reports after each every bytes and once at EOF. total is -1
// when the length is unknown.
func (r *Reader) WithProgress(total, every int64, fn func(read, total int64)) *Reader {
	r.progress, r.total, r.every = fn, total, every
	return r
}

func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	r.sum.Write(p[:n])
	r.read += int64(n)
	r.pending += int64(n)

	if r.progress == nil {
		return n, err
	}
	if err == io.EOF || (r.pending > 0 && r.pending >= r.every) {
		r.progress(r.read, r.total)
		r.pending = 0
	}
	return n, err
}

// SHA256 is the hex digest of the bytes read so far.
func (r *Reader) SHA256() string { return hex.EncodeToString(r.sum.Sum(nil)) }

func (r *Reader) Size() int64 { return r.read }
