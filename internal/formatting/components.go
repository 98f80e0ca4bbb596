package formatting

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"odosync/internal/kubeconfig"
	"odosync/internal/odo"
)

// componentView is the serialized form of a component.
type componentView struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
	Legacy   bool   `json:"legacy" yaml:"legacy"`
	Deployed bool   `json:"deployed" yaml:"deployed"`
}

// contextView is the serialized form of a kubeconfig snapshot. The token is
// reduced to its presence.
type contextView struct {
	Context   string `json:"context" yaml:"context"`
	Cluster   string `json:"cluster" yaml:"cluster"`
	Server    string `json:"server,omitempty" yaml:"server,omitempty"`
	User      string `json:"user" yaml:"user"`
	Namespace string `json:"namespace" yaml:"namespace"`
	LoggedIn  bool   `json:"loggedIn" yaml:"loggedIn"`
}

// createTable creates a new table with standard styling
func createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// WriteComponents renders components to w.
func WriteComponents(w io.Writer, components []odo.ComponentDescriptor, format OutputFormat) error {
	views := make([]componentView, 0, len(components))
	for _, c := range components {
		views = append(views, componentView{Name: c.Name, Path: c.Path, Legacy: c.Legacy, Deployed: c.Deployed})
	}

	switch format {
	case FormatJSON:
		_, err := fmt.Fprintln(w, PrettyJSON(views))
		return err
	case FormatYAML:
		_, err := fmt.Fprint(w, PrettyYAML(views))
		return err
	}

	if len(views) == 0 {
		_, err := fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No components found"))
		return err
	}

	t := createTable(w)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("NAME"),
		text.FgHiCyan.Sprint("PATH"),
		text.FgHiCyan.Sprint("STATE"),
	})
	for _, v := range views {
		t.AppendRow(table.Row{v.Name, v.Path, componentState(v)})
	}
	t.Render()

	_, err := fmt.Fprintf(w, "\n%s %s\n", text.FgHiBlue.Sprint("Total:"), text.FgHiWhite.Sprint(len(views)))
	return err
}

func componentState(v componentView) string {
	switch {
	case v.Legacy:
		return text.FgYellow.Sprint("Needs migration")
	case v.Deployed:
		return text.FgGreen.Sprint("Deployed")
	default:
		return text.FgHiBlack.Sprint("Not deployed")
	}
}

// WriteContext renders the current kubeconfig context to w.
func WriteContext(w io.Writer, snapshot *kubeconfig.Snapshot, format OutputFormat) error {
	if snapshot == nil {
		if format == FormatTable {
			_, err := fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No current context"))
			return err
		}
		snapshot = &kubeconfig.Snapshot{}
	}

	view := contextView{
		Context:   snapshot.ContextName,
		Cluster:   snapshot.Cluster,
		Server:    snapshot.Server,
		User:      snapshot.User,
		Namespace: snapshot.Namespace,
		LoggedIn:  snapshot.HasToken(),
	}

	switch format {
	case FormatJSON:
		_, err := fmt.Fprintln(w, PrettyJSON(view))
		return err
	case FormatYAML:
		_, err := fmt.Fprint(w, PrettyYAML(view))
		return err
	}

	t := createTable(w)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})
	t.AppendRow(table.Row{"Context", view.Context})
	t.AppendRow(table.Row{"Cluster", view.Cluster})
	t.AppendRow(table.Row{"Server", view.Server})
	t.AppendRow(table.Row{"User", view.User})
	t.AppendRow(table.Row{"Namespace", view.Namespace})
	if view.LoggedIn {
		t.AppendRow(table.Row{"Status", text.FgGreen.Sprint("Logged in")})
	} else {
		t.AppendRow(table.Row{"Status", text.FgYellow.Sprint("Not logged in")})
	}
	t.Render()
	return nil
}
