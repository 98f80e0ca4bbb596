package events

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"odosync/pkg/logging"
)

// MessageTemplateEngine provides dynamic message generation for events.
type MessageTemplateEngine struct {
	templates map[EventReason]*template.Template
}

// NewMessageTemplateEngine creates a new message template engine with default templates.
func NewMessageTemplateEngine() *MessageTemplateEngine {
	engine := &MessageTemplateEngine{
		templates: make(map[EventReason]*template.Template),
	}
	engine.loadDefaultTemplates()
	return engine
}

func (e *MessageTemplateEngine) loadDefaultTemplates() {
	e.mustAdd(ReasonModelChanged, "Component model changed")
	e.mustAdd(ReasonMigrationCompleted, "The component {{.Name}} has been migrated to odo 3.x")
	e.mustAdd(ReasonMigrationFailed, "Migration of component {{.Name}}{{if .Path}} at {{.Path}}{{end}} failed{{if .Error}}: {{.Error | trunc 300}}{{end}}")
	e.mustAdd(ReasonLoginSucceeded, "Logged in{{if .Server}} to {{.Server}}{{end}}")
	e.mustAdd(ReasonLogoutSucceeded, "Logged out{{if .Server}} from {{.Server}}{{end}}")
	e.mustAdd(ReasonError, "{{.Error | default \"unknown error\" | trunc 300}}")
}

func (e *MessageTemplateEngine) mustAdd(reason EventReason, text string) {
	e.templates[reason] = template.Must(template.New(string(reason)).Funcs(sprig.TxtFuncMap()).Parse(text))
}

// AddTemplate registers or replaces the template used for reason.
func (e *MessageTemplateEngine) AddTemplate(reason EventReason, text string) error {
	tmpl, err := template.New(string(reason)).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return err
	}
	e.templates[reason] = tmpl
	return nil
}

// Render produces the message for reason. Unknown reasons render as the reason itself.
func (e *MessageTemplateEngine) Render(reason EventReason, data EventData) string {
	tmpl, ok := e.templates[reason]
	if !ok {
		return string(reason)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		logging.Warn("Events", "Failed to render message for %s: %v", reason, err)
		return string(reason)
	}
	return buf.String()
}
