package types

import "fmt"

type TableName string

func (s TableName) Name() string {
	return fmt.Sprintf("%s%s", TABLE_PREFIX, s)
}

const TABLE_PREFIX = "insighter_"

const (
	TABLE_PROJECT        = TableName("project")
	TABLE_DATASET        = TableName("dataset")
	TABLE_CHAT_MESSAGE   = TableName("chat_message")
	TABLE_ALERT          = TableName("alert")
	TABLE_PINNED_INSIGHT = TableName("pinned_insight")
)
