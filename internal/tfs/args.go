package tfs

import "github.com/kballard/go-shellquote"

// Mask replaces secrets in displayed command lines.
const Mask = "MASKED"

// Arguments collects tf command-line arguments together with the form
// they are shown in logs.
type Arguments struct {
	args    []string
	display []string
}

// Add appends arguments shown as-is.
func (a *Arguments) Add(args ...string) *Arguments {
	a.args = append(a.args, args...)
	a.display = append(a.display, args...)
	return a
}

// AddMasked appends arg, showing display in its place.
func (a *Arguments) AddMasked(arg, display string) *Arguments {
	a.args = append(a.args, arg)
	a.display = append(a.display, display)
	return a
}

// Args returns the real arguments.
func (a *Arguments) Args() []string {
	return a.args
}

// Display returns the arguments with secrets masked.
func (a *Arguments) Display() []string {
	return a.display
}

// String renders the masked command line. Errors from the client are
// labelled with it.
func (a *Arguments) String() string {
	return shellquote.Join(a.display...)
}
