// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a troubleshooting guide.
type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	CatalogLoadFailedId
	ComponentsDirMissingId
	ServerStartFailedId
	ServerUnreachableId
	BuildFailedId
	OutputWriteFailedId
)

type (
	// MarkdownMsg is guide text rendered through glamour.
	MarkdownMsg string

	// HttpLink is an external reference appended to a guide.
	HttpLink string

	// Issue is a troubleshooting guide.
	Issue struct {
		id    Id
		title string
		mdMsg MarkdownMsg
		links []HttpLink
	}
)

// Id returns the guide id.
func (i *Issue) Id() Id { return i.id }

// Title returns the guide's one-line title.
func (i *Issue) Title() string { return i.title }

// MarkdownMsg returns the raw guide text.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Links returns a copy of the external references.
func (i *Issue) Links() []HttpLink { return slices.Clone(i.links) }

// Markdown returns the full guide including the title and links.
func (i *Issue) Markdown() string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(i.title)
	b.WriteString("\n")
	b.WriteString(string(i.mdMsg))
	if len(i.links) > 0 {
		b.WriteString("\n\n## See also\n")
		for _, link := range i.links {
			b.WriteString("\n- <")
			b.WriteString(string(link))
			b.WriteString(">")
		}
	}
	b.WriteString("\n")
	return b.String()
}

// Render renders the guide with a glamour style name ("dark", "light",
// "notty", ...) or a path to a JSON style file.
func (i *Issue) Render(style string) (string, error) {
	return render(i.Markdown(), style)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id:    ConfigLoadFailedId,
		title: "The configuration could not be loaded",
		mdMsg: `
chatpack reads ` + "`config.cue`" + ` from the user config directory, then from the
current directory. A file passed with ` + "`--config`" + ` must exist.

## Things you can try
- Print the location being used:
~~~
$ chatpack config path
~~~
- Write a fresh file with the defaults and edit from there:
~~~
$ chatpack config init
~~~
- Check the values against the schema: ports are 0-65535, the compression
  level is -2..9 and durations look like ` + "`10s`" + ` or ` + "`1m`" + `.`,
		links: []HttpLink{"https://cuelang.org/docs/"},
	}

	catalogLoadFailedIssue = &Issue{
		id:    CatalogLoadFailedId,
		title: "The component catalog is invalid",
		mdMsg: `
A catalog lists components by id. Every id must be a positive, unique integer,
every name non-empty, and every file a relative path inside the components
directory. Two files may not share a base name, since both would land on the
same archive entry.

## Example (YAML)
~~~yaml
components:
  - id: 1
    name: Response Handler
    description: Generates replies
    file: response_handler.py
~~~

Catalogs may also be written in CUE, TOML or JSON; the format follows the
file extension.`,
	}

	componentsDirMissingIssue = &Issue{
		id:    ComponentsDirMissingId,
		title: "The components directory does not exist",
		mdMsg: `
Component files are read from the components directory on every build.

## Things you can try
- Pass the directory explicitly:
~~~
$ chatpack serve --components-dir ./components
~~~
- Or set ` + "`catalog.components_dir`" + ` in your config file, or the
  ` + "`CHATPACK_CATALOG_COMPONENTS_DIR`" + ` environment variable.
- Leave the directory unset to serve the component files shipped with
  chatpack.`,
	}

	serverStartFailedIssue = &Issue{
		id:    ServerStartFailedId,
		title: "The server could not start",
		mdMsg: `
The most common cause is another process already listening on the port.

## Things you can try
- Pick another port:
~~~
$ chatpack serve --port 3001
~~~
- Use ` + "`--port 0`" + ` to let the system choose a free port.
- Binding ports below 1024 usually needs elevated privileges.`,
	}

	serverUnreachableIssue = &Issue{
		id:    ServerUnreachableId,
		title: "The chatpack server is unreachable",
		mdMsg: `
Client commands talk to a running server over HTTP.

## Things you can try
- Start a server in another terminal:
~~~
$ chatpack serve
~~~
- Point the client at it with ` + "`--server`" + ` or ` + "`client.server_url`" + `.
- Build without a server:
~~~
$ chatpack build --local 1 2
~~~`,
	}

	buildFailedIssue = &Issue{
		id:    BuildFailedId,
		title: "The package could not be built",
		mdMsg: `
A build fails as a whole: no partial archive is produced.

- **400**: the request was empty, malformed or repeated an id.
- **404**: an id is not in the catalog. List valid ids with
  ` + "`chatpack components`" + `.
- **500**: a component file could not be read on the server. Check that it
  exists in the components directory and is readable.`,
	}

	outputWriteFailedIssue = &Issue{
		id:    OutputWriteFailedId,
		title: "The archive could not be saved",
		mdMsg: `
## Things you can try
- Check that the output directory exists and is writable.
- Pass a different location with ` + "`-o`" + `.`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		catalogLoadFailedIssue.Id():    catalogLoadFailedIssue,
		componentsDirMissingIssue.Id(): componentsDirMissingIssue,
		serverStartFailedIssue.Id():    serverStartFailedIssue,
		serverUnreachableIssue.Id():    serverUnreachableIssue,
		buildFailedIssue.Id():          buildFailedIssue,
		outputWriteFailedIssue.Id():    outputWriteFailedIssue,
	}
)

// Values returns every guide ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for i := range maps.Values(issues) {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Get returns the guide for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
