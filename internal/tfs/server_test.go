package tfs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/raphi011/tfsync/internal/cmd"
	"github.com/raphi011/tfsync/internal/history"
	"github.com/raphi011/tfsync/internal/log"
)

func newTestServer(f *fakeTF, user, password string) *Server {
	parser := history.Parser{Dates: history.NewDateParser(nil, time.UTC)}
	return NewServer(f.exe, "http://tfs:8080/tfs", user, password, f.dir, parser)
}

const historyOutput = `-------------------------------------------------------------------------------
Changeset: 12
User: DOMAIN\bob
Date: 2008-Sep-25 09:00:00

Comment:
  second

Items:
  edit $/proj/b.txt

-------------------------------------------------------------------------------
Changeset: 11
User: DOMAIN\alice
Date: 2008-Sep-24 09:00:00

Comment:
  first

Items:
  add $/proj/a.txt

`

func TestNewServer_DefaultExecutable(t *testing.T) {
	t.Parallel()
	s := NewServer("", "http://tfs", "", "", "", history.Parser{})
	if s.Executable != DefaultExecutable {
		t.Errorf("Executable = %q, want %q", s.Executable, DefaultExecutable)
	}
}

func TestDetailedHistory(t *testing.T) {
	t.Parallel()

	f := newFakeTF(t)
	f.respond(t, "history", historyOutput)
	s := newTestServer(f, "", "")

	from := time.Date(2008, 9, 24, 0, 0, 0, 0, time.UTC)
	to := time.Date(2008, 9, 26, 12, 30, 0, 0, time.UTC)
	got, err := s.DetailedHistory(context.Background(), "$/proj", from, to)
	if err != nil {
		t.Fatalf("DetailedHistory() error = %v", err)
	}
	if len(got) != 2 || got[0].Revision != "11" || got[1].Revision != "12" {
		t.Errorf("DetailedHistory() = %+v, want revisions 11, 12", got)
	}

	calls := f.calls(t)
	if len(calls) != 1 {
		t.Fatalf("calls = %v, want one", calls)
	}
	want := "history $/proj -noprompt -version:D2008-09-24T00:00:00Z~D2008-09-26T12:30:00Z -recursive -format:detailed -server:http://tfs:8080/tfs"
	if calls[0] != want {
		t.Errorf("args = %q\nwant   %q", calls[0], want)
	}
}

func TestDetailedHistory_ParseError(t *testing.T) {
	t.Parallel()

	f := newFakeTF(t)
	f.respond(t, "history", "------------\nChangeset: 1\nUser: a\nDate: 2008-09-24\n\nComment:\n  c\n\nItems:\n  edit proj/a.txt\n\n")
	s := newTestServer(f, "", "")

	_, err := s.DetailedHistory(context.Background(), "$/proj", time.Time{}, time.Now())
	var pe *history.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("DetailedHistory() error = %v, want ParseError", err)
	}
}

func TestGetFiles(t *testing.T) {
	t.Parallel()

	f := newFakeTF(t)
	s := newTestServer(f, "DOMAIN\\builder", "")

	if err := s.GetFiles(context.Background(), "$/proj", "./src"); err != nil {
		t.Fatalf("GetFiles() error = %v", err)
	}
	calls := f.calls(t)
	if want := `get ./src -recursive -noprompt -login:DOMAIN\builder`; len(calls) != 1 || calls[0] != want {
		t.Errorf("calls = %v, want [%q]", calls, want)
	}
}

func TestExecute_TransportError(t *testing.T) {
	t.Parallel()

	f := newFakeTF(t)
	f.fail(t, "get", "TF30063: You are not authorized to access tfs.")
	s := newTestServer(f, "", "")

	err := s.GetFiles(context.Background(), "$/proj", ".")
	if err == nil {
		t.Fatal("GetFiles() = nil, want error")
	}
	var cmdErr *cmd.Error
	if !errors.As(err, &cmdErr) {
		t.Fatalf("GetFiles() error = %T, want wrapped *cmd.Error", err)
	}
	want := "tf get . -recursive -noprompt: TF30063: You are not authorized to access tfs."
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestExecute_ErrorMasksPassword(t *testing.T) {
	t.Parallel()

	f := newFakeTF(t)
	f.fail(t, "get", "TF30063: You are not authorized to access tfs.")
	s := newTestServer(f, "builder@corp", "hunter2")

	err := s.GetFiles(context.Background(), "$/proj", ".")
	if err == nil {
		t.Fatal("GetFiles() = nil, want error")
	}
	if strings.Contains(err.Error(), "hunter2") {
		t.Errorf("error leaked password: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "-login:builder@corp,"+Mask) {
		t.Errorf("error = %q, want masked command line", err.Error())
	}
}

func TestExecute_Cancelled(t *testing.T) {
	t.Parallel()

	f := newFakeTF(t)
	s := newTestServer(f, "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.GetFiles(ctx, "$/proj", ".")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GetFiles() error = %v, want context.Canceled", err)
	}
}

func TestLogin_MaskedInLog(t *testing.T) {
	t.Parallel()

	f := newFakeTF(t)
	s := newTestServer(f, "builder@corp", "hunter2")

	var buf bytes.Buffer
	ctx := log.WithLogger(context.Background(), log.New(&buf, true, false))
	if err := s.GetFiles(ctx, "$/proj", "."); err != nil {
		t.Fatalf("GetFiles() error = %v", err)
	}

	if calls := f.calls(t); !strings.Contains(calls[0], "-login:builder@corp,hunter2") {
		t.Errorf("tf did not receive the password: %v", calls)
	}
	if strings.Contains(buf.String(), "hunter2") {
		t.Errorf("verbose log leaked password: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "-login:builder@corp,"+Mask) {
		t.Errorf("verbose log = %q, want masked login", buf.String())
	}
}

func TestArguments(t *testing.T) {
	t.Parallel()

	a := new(Arguments).Add("workfolder", "-map", "$/proj/my folder").AddMasked("-login:u,p", "-login:u,"+Mask)
	if got := a.Args(); len(got) != 4 || got[3] != "-login:u,p" {
		t.Errorf("Args() = %v", got)
	}
	if got := a.String(); got != `workfolder -map '$/proj/my folder' -login:u,MASKED` {
		t.Errorf("String() = %q", got)
	}
}
