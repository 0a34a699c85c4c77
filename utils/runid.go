package utils

import (
	"fmt"
	"time"

	random "github.com/mazen160/go-random"
)

// NewRunID returns a short id tagging every log line of one scrape run.
func NewRunID() string {
	id, err := random.String(8)
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id
}
