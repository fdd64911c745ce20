// Package changeset holds the change set model produced by history queries.
package changeset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RootMarker prefixes every item path in the repository namespace.
const RootMarker = "$/"

// Item is one file or folder touched by a change set.
type Item struct {
	Path   string `json:"path" yaml:"path"`
	Action string `json:"action" yaml:"action"` // edit, add, delete, "add, edit", ...
}

// ChangeSet is one atomic check-in.
type ChangeSet struct {
	Revision string    `json:"revision" yaml:"revision"`
	Author   string    `json:"author" yaml:"author"`
	Date     time.Time `json:"date" yaml:"date"`
	Comment  string    `json:"comment" yaml:"comment"`
	Items    []Item    `json:"items" yaml:"items"`
}

// Validate checks the change set invariants: a positive numeric revision,
// at least one item, and every item rooted at "$/".
func (c ChangeSet) Validate() error {
	n, err := strconv.ParseUint(c.Revision, 10, 64)
	if err != nil || n == 0 {
		return fmt.Errorf("revision %q is not a positive integer", c.Revision)
	}
	if len(c.Items) == 0 {
		return errors.New("change set has no items")
	}
	for _, it := range c.Items {
		if !strings.HasPrefix(it.Path, RootMarker) {
			return fmt.Errorf("item path %q does not begin with %q", it.Path, RootMarker)
		}
	}
	return nil
}

// LogSet is the ordered list of change sets for one build.
type LogSet struct {
	ChangeSets []ChangeSet `json:"changesets" yaml:"changesets"`
}

// NewLogSet wraps change sets into a log set, keeping their order.
func NewLogSet(changeSets []ChangeSet) LogSet {
	return LogSet{ChangeSets: changeSets}
}

// IsEmpty reports whether the log set holds no change sets.
func (l LogSet) IsEmpty() bool {
	return len(l.ChangeSets) == 0
}

// Len returns the number of change sets.
func (l LogSet) Len() int {
	return len(l.ChangeSets)
}

// Authors returns the distinct authors in order of first appearance.
func (l LogSet) Authors() []string {
	seen := make(map[string]bool)
	var authors []string
	for _, cs := range l.ChangeSets {
		if !seen[cs.Author] {
			seen[cs.Author] = true
			authors = append(authors, cs.Author)
		}
	}
	return authors
}
