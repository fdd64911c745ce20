package history

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/raphi011/tfsync/internal/changeset"
	"github.com/raphi011/tfsync/internal/log"
)

// SeparatorToken is the shortest dash run recognised as a record separator.
const SeparatorToken = "------------"

const itemIndent = "  "

var (
	fieldLine   = regexp.MustCompile(`^[^:]*:[ \t](.*)$`)
	sectionLine = regexp.MustCompile(`^[^:]*:(.*)$`)
	itemsHeader = regexp.MustCompile(`^[^ :]*:$`)
	revisionNum = regexp.MustCompile(`^[0-9]+$`)
)

// ParseError reports a record that does not match the history grammar.
type ParseError struct {
	Record string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse history: %s; change set data:\n%s", e.Reason, e.Record)
}

// Parser turns detailed history output into change sets.
type Parser struct {
	Dates DateParser
	// SkipDateCheck keeps records older than the lower bound, trusting
	// the time window of the history query instead.
	SkipDateCheck bool
}

// Parse reads the listing from r and returns its change sets oldest first.
// Records dated before since are dropped unless SkipDateCheck is set.
func (p Parser) Parse(ctx context.Context, r io.Reader, since time.Time) ([]changeset.ChangeSet, error) {
	records, err := splitRecords(ctx, r)
	if err != nil {
		return nil, err
	}

	l := log.FromContext(ctx)
	var result []changeset.ChangeSet
	for _, rec := range records {
		if strings.TrimSpace(rec) == "" {
			continue
		}
		cs, err := p.parseRecord(rec, since)
		if err != nil {
			return nil, err
		}
		if cs == nil {
			l.Debug("dropping change set before lower bound", "since", since.Format(time.RFC3339))
			continue
		}
		result = append(result, *cs)
	}

	slices.Reverse(result)
	return result, nil
}

// splitRecords segments the listing at separator lines.
func splitRecords(ctx context.Context, r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	var (
		records []string
		buf     strings.Builder
		seen    bool
	)

	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read history: %w", err)
		}
		if line != "" || err == nil {
			line = strings.TrimRight(line, "\r\n")
			if isSeparator(line) {
				if seen {
					records = append(records, buf.String())
				} else if strings.TrimSpace(buf.String()) != "" {
					log.FromContext(ctx).Debug("ignoring text before first separator", "bytes", buf.Len())
				}
				buf.Reset()
				seen = true
			} else {
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
		}
		if err != nil {
			break
		}
	}

	if seen {
		records = append(records, buf.String())
	}
	return records, nil
}

func isSeparator(line string) bool {
	return strings.HasPrefix(line, SeparatorToken) && strings.Trim(line, "-") == ""
}

// parseRecord parses one record. It returns nil without error when the
// record is dated before since and the date check is enabled.
func (p Parser) parseRecord(rec string, since time.Time) (*changeset.ChangeSet, error) {
	fail := func(format string, args ...any) error {
		return &ParseError{Record: rec, Reason: fmt.Sprintf(format, args...)}
	}

	lines := strings.Split(strings.TrimSuffix(rec, "\n"), "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if len(lines) < 4 {
		return nil, fail("record has %d lines, want at least 4", len(lines))
	}

	var fields [3]string
	for i := range fields {
		m := fieldLine.FindStringSubmatch(lines[i])
		if m == nil {
			return nil, fail("line %d %q is not a field", i+1, lines[i])
		}
		fields[i] = m[1]
	}

	revision := strings.TrimSpace(fields[0])
	if !revisionNum.MatchString(revision) {
		return nil, fail("revision %q is not a number", revision)
	}
	if n, err := strconv.ParseUint(revision, 10, 64); err != nil || n == 0 {
		return nil, fail("revision %q is not a positive integer", revision)
	}
	author := strings.TrimSpace(fields[1])

	if p.Dates == nil {
		return nil, errors.New("parse history: no date parser configured")
	}
	date, err := p.Dates.ParseDate(fields[2])
	if err != nil {
		return nil, fail("%v", err)
	}
	if !p.SkipDateCheck && date.Before(since) {
		return nil, nil
	}

	// Comment section label, possibly after blank lines.
	commentAt := 3
	for commentAt < len(lines) && strings.TrimSpace(lines[commentAt]) == "" {
		commentAt++
	}
	if commentAt >= len(lines) {
		return nil, fail("missing comment section")
	}
	cm := sectionLine.FindStringSubmatch(lines[commentAt])
	if cm == nil {
		return nil, fail("line %q is not a comment label", lines[commentAt])
	}

	itemsAt := -1
	for i := len(lines) - 2; i > commentAt+1; i-- {
		if lines[i-1] == "" && itemsHeader.MatchString(lines[i]) && strings.HasPrefix(lines[i+1], itemIndent) {
			itemsAt = i
			break
		}
	}
	if itemsAt < 0 {
		return nil, fail("unable to find an item within the change set")
	}

	comment := normalizeComment(cm[1], lines[commentAt+1:itemsAt])

	var items []changeset.Item
	for _, line := range lines[itemsAt+1:] {
		if !strings.HasPrefix(line, itemIndent) {
			break
		}
		item, err := parseItem(line)
		if err != nil {
			return nil, fail("%v", err)
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fail("unable to find an item within the change set")
	}

	return &changeset.ChangeSet{
		Revision: revision,
		Author:   author,
		Date:     date,
		Comment:  comment,
		Items:    items,
	}, nil
}

// normalizeComment joins the comment lines and strips the client's indentation.
func normalizeComment(inline string, lines []string) string {
	parts := make([]string, 0, len(lines)+1)
	parts = append(parts, inline)
	for _, line := range lines {
		parts = append(parts, strings.TrimPrefix(line, itemIndent))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// parseItem splits "  <action> $/<path>" into its parts.
func parseItem(line string) (changeset.Item, error) {
	content := strings.TrimPrefix(line, itemIndent)
	i := strings.Index(content, " "+changeset.RootMarker)
	if i < 0 {
		return changeset.Item{}, fmt.Errorf("mistakenly identified %q as an item, but it is not a repository path", strings.TrimSpace(content))
	}
	action := strings.TrimSpace(content[:i])
	if action == "" {
		return changeset.Item{}, fmt.Errorf("item %q has no change type", strings.TrimSpace(content))
	}
	return changeset.Item{Path: content[i+1:], Action: action}, nil
}
