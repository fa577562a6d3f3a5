package datastructure

// QueryStats counts the work done by a single shortest path query. A nil *QueryStats disables counting.
type QueryStats struct {
	SettledVertices   int
	RelaxedEdges      int
	StalledVertices   int
	StallPropagations int
	MeetingUpdates    int
	UnpackedEdges     int
}
