package index

import (
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/disk"
)

const (
	addressTableHeaderLength = 8
	addressEntryLength       = 12
)

// BlockAddress is the byte range of one block. Length 0 marks a block id without data.
type BlockAddress struct {
	Offset uint64
	Length uint32
}

// AddressTable maps block ids to byte ranges in the graph file.
type AddressTable struct {
	entries []BlockAddress
}

func NewAddressTable(entries []BlockAddress) *AddressTable {
	return &AddressTable{entries: entries}
}

func (t *AddressTable) Len() int {
	return len(t.entries)
}

func (t *AddressTable) Lookup(id datastructure.BlockID) (BlockAddress, bool) {
	if int(id) >= len(t.entries) || t.entries[id].Length == 0 {
		return BlockAddress{}, false
	}
	return t.entries[id], true
}

// Encode returns the section bytes: uint32 count, uint32 compressed length, zstd(count x (uint64 offset, uint32 length)).
func (t *AddressTable) Encode() ([]byte, error) {
	raw := disk.NewPage(len(t.entries) * addressEntryLength)
	for i, e := range t.entries {
		raw.PutUint64(i*addressEntryLength, e.Offset)
		raw.PutUint32(i*addressEntryLength+8, e.Length)
	}
	compressed, err := datastructure.CompressData(raw.Contents())
	if err != nil {
		return nil, err
	}

	out := disk.NewPage(addressTableHeaderLength + len(compressed))
	out.PutUint32(0, uint32(len(t.entries)))
	out.PutUint32(4, uint32(len(compressed)))
	copy(out.Contents()[addressTableHeaderLength:], compressed)
	return out.Contents(), nil
}

func LoadAddressTable(f disk.GraphFile, offset uint64) (*AddressTable, error) {
	head, err := disk.ReadBytes(f, int64(offset), addressTableHeaderLength)
	if err != nil {
		return nil, storage.MalformedHeaderf("address table header at %d: %v", offset, err)
	}
	hp := disk.NewPageFromByteSlice(head)
	count := int(hp.GetUint32(0))
	compressedLen := int(hp.GetUint32(4))

	compressed, err := disk.ReadBytes(f, int64(offset)+addressTableHeaderLength, compressedLen)
	if err != nil {
		return nil, storage.MalformedHeaderf("address table payload of %d bytes: %v", compressedLen, err)
	}
	raw, err := datastructure.DecompressData(compressed)
	if err != nil {
		return nil, storage.MalformedHeaderf("address table payload: %v", err)
	}
	if len(raw) != count*addressEntryLength {
		return nil, storage.MalformedHeaderf("address table holds %d bytes, expected %d entries", len(raw), count)
	}

	p := disk.NewPageFromByteSlice(raw)
	entries := make([]BlockAddress, count)
	for i := range entries {
		entries[i] = BlockAddress{
			Offset: p.GetUint64(i * addressEntryLength),
			Length: p.GetUint32(i*addressEntryLength + 8),
		}
		if entries[i].Length > 0 && entries[i].Offset+uint64(entries[i].Length) > uint64(f.Size()) {
			return nil, storage.MalformedHeaderf("block %d range [%d, +%d) exceeds file size %d", i, entries[i].Offset, entries[i].Length, f.Size())
		}
	}
	return NewAddressTable(entries), nil
}
