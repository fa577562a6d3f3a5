package routingalgorithm

import "github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"

type ContractedGraph interface {
	OutgoingEdgesToHigherVertices(id datastructure.VertexID) ([]datastructure.Edge, error)
	IngoingEdgesFromHigherVertices(id datastructure.VertexID) ([]datastructure.Edge, error)
	UnpackShortcut(edge datastructure.Edge, start datastructure.VertexID) ([]datastructure.Edge, error)
}
