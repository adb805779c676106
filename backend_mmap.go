package arena

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// MmapBackend reserves buffers as anonymous private memory mappings. Pages
// come from the kernel already zeroed and page-aligned; alignments larger
// than a page are satisfied by over-mapping.
//
// Views derived from an mmap-backed arena fault if dereferenced after Close.
type MmapBackend struct{}

// Reserve implements Backend.
func (MmapBackend) Reserve(l Layout) (Region, error) {
	length := l.Size
	if l.Align > os.Getpagesize() {
		length += l.Align - 1
	}

	m, err := mmap.MapRegion(nil, length, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", length)
	}

	buf, err := alignedWindow(m, l)
	if err != nil {
		_ = m.Unmap()
		return nil, err
	}
	return &mmapRegion{m: m, buf: buf}, nil
}

type mmapRegion struct {
	m   mmap.MMap
	buf []byte
}

func (r *mmapRegion) Bytes() []byte { return r.buf }

func (r *mmapRegion) Release() error {
	if r.m == nil {
		return errors.New("mapping already released")
	}
	err := r.m.Unmap()
	r.m, r.buf = nil, nil
	return errors.Wrap(err, "munmap")
}
