// Package filestore is a directory-backed vm.Store: each key is one file
// holding the little-endian 16-byte-word encoding vm.Labels/vm.Vector
// already use on the wire (§6.2), the same load/save technique the
// teacher's vm.Load/vm.Save used for memory images, adapted from a single
// flat image file to one file per key.
package filestore

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/vil-project/vil/amount"
	"github.com/vil-project/vil/vm"
)

// Store persists every key under dir as its own file, named by the
// key's hex encoding with a kind-specific extension so labels, vectors
// and scalars keyed by the same Label don't collide.
type Store struct {
	dir string
}

// New returns a Store rooted at dir. The directory must already exist.
func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(key vm.Label, ext string) string {
	b := key.Bytes()
	return filepath.Join(s.dir, hexEncode(b[:])+ext)
}

const hexDigits = "0123456789abcdef"

func hexEncode(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexDigits[c>>4]
		out[i*2+1] = hexDigits[c&0xf]
	}
	return string(out)
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(vm.ErrNotFound, "%s", path)
		}
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "stat")
	}
	buf := make([]byte, st.Size())
	if _, err := readFull(bufio.NewReader(f), buf); err != nil {
		return nil, errors.Wrap(err, "read")
	}
	return buf, nil
}

func readFull(r *bufio.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		k, err := r.Read(buf[n:])
		n += k
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create")
	}
	w := bufio.NewWriter(f)
	var werr error
	if _, werr = w.Write(data); werr == nil {
		werr = w.Flush()
	}
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
		return errors.Wrap(werr, "write")
	}
	return nil
}

// LoadLabels implements vm.Store.
func (s *Store) LoadLabels(key vm.Label) (vm.Labels, error) {
	b, err := readFile(s.path(key, ".labels"))
	if err != nil {
		return vm.Labels{}, err
	}
	return vm.LabelsFromBytes(b), nil
}

// LoadVector implements vm.Store.
func (s *Store) LoadVector(key vm.Label) (vm.Vector, error) {
	b, err := readFile(s.path(key, ".vector"))
	if err != nil {
		return vm.Vector{}, err
	}
	return vm.VectorFromBytes(b), nil
}

// LoadScalar implements vm.Store. An unset key yields zero, per §6.1.
func (s *Store) LoadScalar(key vm.Label) (amount.Amount, error) {
	b, err := readFile(s.path(key, ".scalar"))
	if err != nil {
		if errors.Cause(err) == vm.ErrNotFound {
			return amount.Zero, nil
		}
		return amount.Amount{}, err
	}
	return amount.FromSlice(b), nil
}

// StoreLabels implements vm.Store.
func (s *Store) StoreLabels(key vm.Label, v vm.Labels) error {
	return writeFile(s.path(key, ".labels"), v.ToBytes())
}

// StoreVector implements vm.Store.
func (s *Store) StoreVector(key vm.Label, v vm.Vector) error {
	return writeFile(s.path(key, ".vector"), v.ToBytes())
}

// StoreScalar implements vm.Store.
func (s *Store) StoreScalar(key vm.Label, v amount.Amount) error {
	b := v.Bytes()
	return writeFile(s.path(key, ".scalar"), b[:])
}
