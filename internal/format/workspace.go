package format

import (
	"os"
	"os/user"
	"regexp"
	"strings"
)

// DefaultWorkspaceName is the template used when a job configures none.
const DefaultWorkspaceName = "Hudson-${JOB_NAME}"

// MaxWorkspaceNameLength is the longest workspace name the server accepts.
const MaxWorkspaceNameLength = 64

// variableRegex matches ${NAME} and $NAME.
var variableRegex = regexp.MustCompile(`\$\{(\w+)\}|\$(\w+)`)

// Variables resolves the build variables of one job.
type Variables struct {
	JobName  string
	NodeName string
	UserName string
	// Env looks up other names; nil means os.LookupEnv.
	Env func(string) (string, bool)
}

// LocalVariables returns the variables of jobName on this machine.
func LocalVariables(jobName string) Variables {
	v := Variables{JobName: jobName}
	if host, err := os.Hostname(); err == nil {
		v.NodeName = host
	}
	if u, err := user.Current(); err == nil {
		v.UserName = u.Username
	}
	return v
}

// Lookup returns the value of a variable.
func (v Variables) Lookup(name string) (string, bool) {
	switch name {
	case "JOB_NAME":
		return v.JobName, v.JobName != ""
	case "NODE_NAME":
		return v.NodeName, v.NodeName != ""
	case "USER_NAME":
		return v.UserName, v.UserName != ""
	}
	env := v.Env
	if env == nil {
		env = os.LookupEnv
	}
	return env(name)
}

// ExpandWorkspaceName expands the variables in template.
// An empty template expands DefaultWorkspaceName.
func ExpandWorkspaceName(template string, vars Variables) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultWorkspaceName
	}
	name := variableRegex.ReplaceAllStringFunc(template, func(match string) string {
		sub := variableRegex.FindStringSubmatch(match)
		key := sub[1]
		if key == "" {
			key = sub[2]
		}
		if val, ok := vars.Lookup(key); ok {
			return SanitizeWorkspaceName(val)
		}
		return match
	})
	if len(name) > MaxWorkspaceNameLength {
		name = name[:MaxWorkspaceNameLength]
	}
	return name
}

// UnresolvedVariables lists the variables of template that vars cannot resolve.
func UnresolvedVariables(template string, vars Variables) []string {
	var missing []string
	for _, sub := range variableRegex.FindAllStringSubmatch(template, -1) {
		key := sub[1]
		if key == "" {
			key = sub[2]
		}
		if _, ok := vars.Lookup(key); !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// SanitizeWorkspaceName replaces characters the server rejects in workspace names.
// Replaces: / \ : < > | * ? ; " with -
func SanitizeWorkspaceName(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"<", "-",
		">", "-",
		"|", "-",
		"*", "-",
		"?", "-",
		";", "-",
		"\"", "-",
	)
	return replacer.Replace(name)
}
