// Package cache holds the lookup tables built from one board snapshot. Nothing
// here outlives a run: every Registry is created from a fresh snapshot and
// dropped when the connector finishes.
package cache

import (
	"strings"
	"time"
)

// ListKey builds the lookup key for a list name
func ListKey(name string) string {
	return "list:" + name
}

// LabelKey builds the lookup key for a label name. Label names are matched
// exactly, so the key keeps case.
func LabelKey(name string) string {
	return "label:" + name
}

// IDKey builds the reverse lookup key for a board object id
func IDKey(kind, id string) string {
	return strings.Join([]string{kind, "id", id}, ":")
}

// noExpiration keeps entries for the life of the store
const noExpiration = time.Duration(-1)
