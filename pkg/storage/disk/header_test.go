package disk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, b []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.ch")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func buildHeaderFile(t *testing.T, params GraphParams) []byte {
	t.Helper()
	graphHeader, err := params.Encode()
	require.NoError(t, err)

	fh := FileHeader{
		GraphStart:        storage.FILE_HEADER_LENGTH,
		AddressTableStart: storage.FILE_HEADER_LENGTH + storage.GRAPH_HEADER_LENGTH,
		SpatialIndexStart: storage.FILE_HEADER_LENGTH + storage.GRAPH_HEADER_LENGTH + 4,
	}
	out := append([]byte{}, fh.Encode()...)
	out = append(out, graphHeader...)
	out = append(out, make([]byte, 16)...)
	return out
}

func TestHeaderRoundTrip(t *testing.T) {
	params := GraphParams{
		Debug:               true,
		BitsPerBlockID:      12,
		BitsPerVertexOffset: 10,
		BitsPerEdgeWeight:   20,
		BitsPerStreetType:   4,
		StreetTypes:         []string{"motorway", "primary", "residential"},
	}
	path := writeTempFile(t, buildHeaderFile(t, params))

	for _, useMmap := range []bool{false, true} {
		f, err := OpenGraphFile(path, useMmap)
		require.NoError(t, err)

		fh, err := ReadFileHeader(f)
		require.NoError(t, err)
		assert.Equal(t, uint64(storage.FILE_HEADER_LENGTH), fh.GraphStart)

		got, err := ReadGraphParams(f, fh.GraphStart)
		require.NoError(t, err)
		assert.Equal(t, params, got)

		require.NoError(t, f.Close())
	}
}

func TestReadFileHeaderBadMagic(t *testing.T) {
	b := buildHeaderFile(t, GraphParams{BitsPerBlockID: 8, BitsPerVertexOffset: 8, BitsPerEdgeWeight: 16})
	copy(b, "NOTAGRPH")
	f, err := OpenGraphFile(writeTempFile(t, b), false)
	require.NoError(t, err)
	defer f.Close()

	_, err = ReadFileHeader(f)
	assert.ErrorIs(t, err, storage.ErrMalformedHeader)
}

func TestReadFileHeaderTruncated(t *testing.T) {
	f, err := OpenGraphFile(writeTempFile(t, []byte(storage.FILE_MAGIC)), true)
	require.NoError(t, err)
	defer f.Close()

	_, err = ReadFileHeader(f)
	assert.ErrorIs(t, err, storage.ErrMalformedHeader)
}

func TestGraphParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		params GraphParams
	}{
		{"zero offset width", GraphParams{BitsPerBlockID: 8, BitsPerEdgeWeight: 8}},
		{"id wider than 32 bits", GraphParams{BitsPerBlockID: 20, BitsPerVertexOffset: 16, BitsPerEdgeWeight: 8}},
		{"zero weight width", GraphParams{BitsPerBlockID: 8, BitsPerVertexOffset: 8}},
		{"street type too wide", GraphParams{BitsPerBlockID: 8, BitsPerVertexOffset: 8, BitsPerEdgeWeight: 8, BitsPerStreetType: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.params.Validate(), storage.ErrMalformedHeader)
		})
	}
}

func TestReadBlockOverhang(t *testing.T) {
	path := writeTempFile(t, []byte{1, 2, 3, 4, 5})
	f, err := OpenGraphFile(path, true)
	require.NoError(t, err)
	defer f.Close()

	b, err := ReadBlock(f, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{2, 3, 4}, make([]byte, storage.BLOCK_READ_OVERHANG)...), b)

	_, err = ReadBlock(f, 3, 4)
	assert.ErrorIs(t, err, storage.ErrIOFailure)
}
