// Package history parses the detailed history listing of the tf client
// into change sets.
//
// # Record Segmentation
//
// The listing is a newest-first sequence of records separated by lines of
// dashes. Text before the first separator is ignored. Each following
// separator closes the record accumulated since the previous one, and the
// text after the last separator is the final record. Output without any
// separator is an empty history.
//
// # Record Grammar
//
//	Changeset: 12472
//	User: DOMAIN\alice
//	Date: 2008-jun-27 11:16:06
//
//	Comment:
//	  Fixed the build
//	  on two lines
//
//	Items:
//	  edit $/proj/main/build.xml
//	  add $/proj/main/new.txt
//
//	Check-in Notes:
//	  Code Reviewer:
//
// The first three lines are "label: value" fields in fixed order. The
// comment section runs up to the last single-word label that follows a
// blank line and is followed by an indented line; that label opens the
// item section. Anything after the item section is ignored.
//
// A record that does not fit the grammar is a [*ParseError]. Records
// older than the lower bound are dropped unless [Parser.SkipDateCheck]
// is set.
package history
