package datastructure

import (
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// CompressData returns inData as a single zstd frame.
func CompressData(inData []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create zstd encoder")
	}
	defer encoder.Close()
	return encoder.EncodeAll(inData, make([]byte, 0, len(inData))), nil
}

func DecompressData(inData []byte) ([]byte, error) {
	d, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create zstd decoder")
	}
	defer d.Close()
	return d.DecodeAll(inData, nil)
}
