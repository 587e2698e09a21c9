package models

// ImportValidationError describes one rejected cell of an imported question
// sheet. Row is 1-based and counts the header row.
type ImportValidationError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Message string `json:"message"`
	Value   string `json:"value"`
}

// Question sheet columns. Only the first three are required.
const (
	ImportColumnSubTopic  = "sub_topic_id"
	ImportColumnType      = "type"
	ImportColumnAnswer    = "answer"
	ImportColumnTopic     = "topic_id"
	ImportColumnLevel     = "level"
	ImportColumnConcepts  = "concepts"
	ImportColumnLinkID    = "link_id"
	ImportColumnLinkOrder = "link_order"
	ImportColumnPublished = "published"
	ImportColumnFixed     = "fixed"
)
