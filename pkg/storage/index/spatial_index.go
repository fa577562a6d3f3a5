package index

import (
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/kelindar/binary"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage"
	"github.com/lintang-b-s/navigatorx-mobile/pkg/storage/disk"
	"github.com/pkg/errors"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	// rtreego treats touching rectangles as disjoint, pad every rectangle by one microdegree.
	rectPadding = 1.0 / datastructure.COORDINATE_SCALE
)

// BlockBounds is the on disk record of a block's bounding box, in microdegrees.
type BlockBounds struct {
	BlockID uint32
	MinLat  int32
	MinLon  int32
	MaxLat  int32
	MaxLon  int32
}

func (b BlockBounds) Box() datastructure.BoundingBox {
	return datastructure.BoundingBox{MinLat: b.MinLat, MinLon: b.MinLon, MaxLat: b.MaxLat, MaxLon: b.MaxLon}
}

type blockItem struct {
	id   datastructure.BlockID
	rect rtreego.Rect
}

func (b *blockItem) Bounds() rtreego.Rect {
	return b.rect
}

func toRect(box datastructure.BoundingBox) (rtreego.Rect, error) {
	minLat := float64(box.MinLat)/datastructure.COORDINATE_SCALE - rectPadding
	minLon := float64(box.MinLon)/datastructure.COORDINATE_SCALE - rectPadding
	maxLat := float64(box.MaxLat)/datastructure.COORDINATE_SCALE + rectPadding
	maxLon := float64(box.MaxLon)/datastructure.COORDINATE_SCALE + rectPadding
	return rtreego.NewRect(rtreego.Point{minLat, minLon}, []float64{maxLat - minLat, maxLon - minLon})
}

// SpatialIndex answers which blocks may hold vertices inside a bounding box.
type SpatialIndex struct {
	tree   *rtreego.Rtree
	bounds []BlockBounds
	box    datastructure.BoundingBox
}

func NewSpatialIndex(bounds []BlockBounds) (*SpatialIndex, error) {
	s := &SpatialIndex{
		tree:   rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren),
		bounds: bounds,
	}
	for i, b := range bounds {
		if !b.Box().Valid() {
			return nil, errors.Errorf("block %d has an inverted bounding box", b.BlockID)
		}
		rect, err := toRect(b.Box())
		if err != nil {
			return nil, errors.Wrapf(err, "block %d bounds", b.BlockID)
		}
		s.tree.Insert(&blockItem{id: datastructure.BlockID(b.BlockID), rect: rect})
		if i == 0 {
			s.box = b.Box()
		} else {
			s.box = s.box.Union(b.Box())
		}
	}
	return s, nil
}

// BlocksOverlapping returns the ids of blocks whose bounds intersect box, ascending.
func (s *SpatialIndex) BlocksOverlapping(box datastructure.BoundingBox) []datastructure.BlockID {
	if len(s.bounds) == 0 || !box.Valid() {
		return nil
	}
	rect, err := toRect(box)
	if err != nil {
		return nil
	}
	hits := s.tree.SearchIntersect(rect)
	ids := make([]datastructure.BlockID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.(*blockItem).id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BoundingBox covers every indexed block. ok is false for an empty index.
func (s *SpatialIndex) BoundingBox() (datastructure.BoundingBox, bool) {
	return s.box, len(s.bounds) > 0
}

func (s *SpatialIndex) Len() int {
	return len(s.bounds)
}

// EncodeSpatialIndex returns the section bytes: uint32 payload length, kelindar/binary([]BlockBounds).
func EncodeSpatialIndex(bounds []BlockBounds) ([]byte, error) {
	payload, err := binary.Marshal(bounds)
	if err != nil {
		return nil, errors.Wrap(err, "encode spatial index")
	}
	out := disk.NewPage(4 + len(payload))
	out.PutUint32(0, uint32(len(payload)))
	copy(out.Contents()[4:], payload)
	return out.Contents(), nil
}

func LoadSpatialIndex(f disk.GraphFile, offset uint64) (*SpatialIndex, error) {
	head, err := disk.ReadBytes(f, int64(offset), 4)
	if err != nil {
		return nil, storage.MalformedHeaderf("spatial index header at %d: %v", offset, err)
	}
	length := int(disk.NewPageFromByteSlice(head).GetUint32(0))
	payload, err := disk.ReadBytes(f, int64(offset)+4, length)
	if err != nil {
		return nil, storage.MalformedHeaderf("spatial index payload of %d bytes: %v", length, err)
	}

	var bounds []BlockBounds
	if length > 0 {
		if err := binary.Unmarshal(payload, &bounds); err != nil {
			return nil, storage.MalformedHeaderf("spatial index payload: %v", err)
		}
	}
	s, err := NewSpatialIndex(bounds)
	if err != nil {
		return nil, storage.MalformedHeaderf("spatial index: %v", err)
	}
	return s, nil
}
