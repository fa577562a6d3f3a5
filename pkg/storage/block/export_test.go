package block

import "github.com/lintang-b-s/navigatorx-mobile/pkg/datastructure"

// ExternalEdges are the decoded edges past the last vertex's list, kept only for shortcut paths.
func ExternalEdges(b *Block) []datastructure.Edge {
	return b.edges[b.firstEdge[len(b.vertices)]:]
}
