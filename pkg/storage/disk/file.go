package disk

import (
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/pkg/errors"
)

// GraphFile is random read access to a graph file.
type GraphFile interface {
	io.ReaderAt
	Size() int64
	Close() error
}

// OpenGraphFile opens path either memory mapped or with positional reads.
func OpenGraphFile(path string, useMmap bool) (GraphFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, storage.IOFailuref(err, "open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, storage.IOFailuref(err, "stat %s", path)
	}

	if !useMmap || info.Size() == 0 {
		return &preadFile{f: f, size: info.Size()}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, storage.IOFailuref(err, "mmap %s", path)
	}
	return &mmapFile{f: f, data: m}, nil
}

type preadFile struct {
	f    *os.File
	size int64
}

func (p *preadFile) ReadAt(b []byte, off int64) (int, error) {
	return p.f.ReadAt(b, off)
}

func (p *preadFile) Size() int64 {
	return p.size
}

func (p *preadFile) Close() error {
	return p.f.Close()
}

type mmapFile struct {
	f    *os.File
	data mmap.MMap
}

func (m *mmapFile) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.New("negative offset")
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(b, m.data[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (m *mmapFile) Size() int64 {
	return int64(len(m.data))
}

func (m *mmapFile) Close() error {
	if err := m.data.Unmap(); err != nil {
		m.f.Close()
		return err
	}
	return m.f.Close()
}

// ReadBytes reads exactly length bytes at offset.
func ReadBytes(f GraphFile, offset int64, length int) ([]byte, error) {
	if offset < 0 || offset+int64(length) > f.Size() {
		return nil, storage.IOFailuref(io.ErrUnexpectedEOF, "range [%d, %d) outside file of %d bytes", offset, offset+int64(length), f.Size())
	}
	buf := make([]byte, length)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, storage.IOFailuref(err, "read %d bytes at %d", length, offset)
	}
	return buf, nil
}

// ReadBlock reads a block's logical bytes followed by BLOCK_READ_OVERHANG zero bytes.
func ReadBlock(f GraphFile, offset int64, length int) ([]byte, error) {
	if offset < 0 || offset+int64(length) > f.Size() {
		return nil, storage.IOFailuref(io.ErrUnexpectedEOF, "block range [%d, %d) outside file of %d bytes", offset, offset+int64(length), f.Size())
	}
	buf := make([]byte, length+storage.BLOCK_READ_OVERHANG)
	if _, err := f.ReadAt(buf[:length], offset); err != nil {
		return nil, storage.IOFailuref(err, "read block of %d bytes at %d", length, offset)
	}
	return buf, nil
}
