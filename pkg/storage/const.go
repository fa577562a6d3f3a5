package storage

const (
	FILE_MAGIC          = "CHGRAPH1"
	FILE_HEADER_LENGTH  = 64
	GRAPH_HEADER_LENGTH = 4096
	BLOCK_HEADER_LENGTH = 19

	// extra zero bytes appended to every block read so bit fields near the end can be loaded as whole 8 byte words.
	BLOCK_READ_OVERHANG = 8

	EDGE_COUNT_ESCAPE_BITS     = 24
	WAYPOINT_COUNT_ESCAPE_BITS = 16
	DEBUG_ID_BITS              = 32

	MAX_STREET_NAMES_OFFSET = 1<<24 - 1
	MAX_VERTICES_PER_BLOCK  = 1<<16 - 1
	MAX_FIELD_BITS          = 32

	DEFAULT_CACHE_BYTE_BUDGET = 32 * 1024 * 1024

	GRAPH_FILE_NAME = "graph.ch"
)
