// Package prompt provides the interactive terminal forms used by the
// schemactl editor.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/reglet-dev/schemactl/editor"
	"github.com/reglet-dev/schemactl/editor/entities"
	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/reglet-dev/schemactl/schema"
)

// ErrNotInteractive is returned when a form is requested without a terminal.
var ErrNotInteractive = errors.New("not running in an interactive terminal")

// Action is a step chosen from the edit menu.
type Action string

const (
	ActionEditGeneral Action = "general"
	ActionAddField    Action = "add-field"
	ActionRemoveField Action = "remove-field"
	ActionPreview     Action = "preview"
	ActionSave        Action = "save"
	ActionQuit        Action = "quit"
)

// NewSchema is the input collected by the create form.
type NewSchema struct {
	ID          string
	Description string
}

// NewField is the input collected by the add-field form.
type NewField struct {
	Name string
	Kind schema.FieldKind
}

// Terminal runs huh forms on the controlling terminal.
type Terminal struct{}

// NewTerminal creates a Terminal.
func NewTerminal() *Terminal {
	return &Terminal{}
}

// IsInteractive checks if stdin is a terminal.
func (t *Terminal) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// CreateSchema asks for the ID and description of a new schema.
func (t *Terminal) CreateSchema() (NewSchema, error) {
	if !t.IsInteractive() {
		return NewSchema{}, ErrNotInteractive
	}

	var in NewSchema
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Schema ID").
				Description("Letters, digits, dot, dash and underscore").
				Value(&in.ID).
				Validate(ValidateSchemaID),
			huh.NewText().
				Title("Description").
				Placeholder(schema.NewObjectDescription).
				Value(&in.Description),
		),
	).Run()
	if err != nil {
		return NewSchema{}, err
	}
	in.ID = strings.TrimSpace(in.ID)
	in.Description = strings.TrimSpace(in.Description)
	return in, nil
}

// AddField asks for a field name and kind. Names already in the session are
// rejected by the form.
func (t *Terminal) AddField(session *editor.Session) (NewField, error) {
	if !t.IsInteractive() {
		return NewField{}, ErrNotInteractive
	}

	existing := fieldNames(session)
	var (
		name string
		kind schema.FieldKind
	)
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Field name").
				Value(&name).
				Validate(func(s string) error { return ValidateFieldName(s, existing) }),
			huh.NewSelect[schema.FieldKind]().
				Title("Type").
				Options(KindOptions()...).
				Value(&kind),
		),
	).Run()
	if err != nil {
		return NewField{}, err
	}
	return NewField{Name: strings.TrimSpace(name), Kind: kind}, nil
}

// RemoveField asks which field to remove.
func (t *Terminal) RemoveField(session *editor.Session) (string, error) {
	if !t.IsInteractive() {
		return "", ErrNotInteractive
	}
	fields := session.Fields()
	if len(fields) == 0 {
		return "", errors.New("schema has no fields")
	}

	options := make([]huh.Option[string], 0, len(fields))
	for _, f := range fields {
		options = append(options, huh.NewOption(fieldLabel(f), f.Name))
	}

	var name string
	err := huh.NewSelect[string]().
		Title("Remove field").
		Description("Removing a field is a breaking change").
		Options(options...).
		Value(&name).
		Run()
	return name, err
}

// EditGeneral edits the title and description of the draft in place.
func (t *Terminal) EditGeneral(session *editor.Session) error {
	if !t.IsInteractive() {
		return ErrNotInteractive
	}

	draft := session.Draft()
	title, description := draft.Title, draft.Description
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&title),
			huh.NewText().Title("Description").Value(&description),
		),
	).Run()
	if err != nil {
		return err
	}
	session.SetTitle(strings.TrimSpace(title))
	session.SetDescription(strings.TrimSpace(description))
	return nil
}

// SelectVersion asks which version to open. The last entry is preselected.
func (t *Terminal) SelectVersion(versions []entities.Version) (string, error) {
	if len(versions) == 0 {
		return "", errors.New("no versions to choose from")
	}
	if !t.IsInteractive() {
		return "", ErrNotInteractive
	}

	selected := versions[len(versions)-1].Version
	err := huh.NewSelect[string]().
		Title("Version").
		Options(VersionOptions(versions)...).
		Value(&selected).
		Run()
	return selected, err
}

// ChooseAction shows the edit menu.
func (t *Terminal) ChooseAction(session *editor.Session) (Action, error) {
	if !t.IsInteractive() {
		return "", ErrNotInteractive
	}

	var action Action
	err := huh.NewSelect[Action]().
		Title(fmt.Sprintf("Editing %s@%s", session.Ref(), session.Version())).
		Description(describeFields(session.Fields())).
		Options(
			huh.NewOption("Edit title and description", ActionEditGeneral),
			huh.NewOption("Add field", ActionAddField),
			huh.NewOption("Remove field", ActionRemoveField),
			huh.NewOption("Preview changes", ActionPreview),
			huh.NewOption("Save", ActionSave),
			huh.NewOption("Quit without saving", ActionQuit),
		).
		Value(&action).
		Run()
	return action, err
}

// ConfirmSave shows the pending change and asks whether to save it. Breaking
// changes are shown with a warning and default to no.
func (t *Terminal) ConfirmSave(preview editor.Preview) (bool, error) {
	if !t.IsInteractive() {
		return false, ErrNotInteractive
	}

	if preview.Change == schema.ChangeBreaking {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "\033[1;33mBreaking change\033[0m\n\n")
		fmt.Fprintf(os.Stderr, "  Consumers of %s may fail to read data written with %s.\n\n", preview.From, preview.To)
	}

	confirmed := preview.Change != schema.ChangeBreaking
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Save %s as %s?", preview.From, preview.To)).
		Description(DescribePreview(preview)).
		Affirmative("Save").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if err != nil {
		return false, err
	}
	return confirmed, nil
}

// ValidateSchemaID checks a schema ID the way the registry refs do.
func ValidateSchemaID(id string) error {
	_, err := values.NewArtifactID(strings.TrimSpace(id))
	return err
}

// ValidateFieldName rejects blank names and names in existing.
func ValidateFieldName(name string, existing []string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.ErrEmptyFieldName
	}
	for _, e := range existing {
		if e == name {
			return fmt.Errorf("%w: %s", schema.ErrFieldExists, name)
		}
	}
	return nil
}

// KindOptions returns the field kinds as select options.
func KindOptions() []huh.Option[schema.FieldKind] {
	kinds := schema.FieldKinds()
	options := make([]huh.Option[schema.FieldKind], 0, len(kinds))
	for _, k := range kinds {
		options = append(options, huh.NewOption(string(k), k))
	}
	return options
}

// VersionOptions returns versions as select options labeled with their
// creation date.
func VersionOptions(versions []entities.Version) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(versions))
	for _, v := range versions {
		label := v.Version
		if !v.CreatedOn.IsZero() {
			label += "  (" + v.CreatedOn.Format("2006-01-02 15:04") + ")"
		}
		options = append(options, huh.NewOption(label, v.Version))
	}
	return options
}

// DescribePreview summarizes a pending change in one line per difference.
func DescribePreview(p editor.Preview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Change: %s (%s -> %s, %s bump)", p.Change, p.From, p.To, p.Change.Bump())
	for _, name := range p.Report.Added {
		fmt.Fprintf(&b, "\n  + %s", name)
	}
	for _, name := range p.Report.Removed {
		fmt.Fprintf(&b, "\n  - %s", name)
	}
	for _, c := range p.Report.Retyped {
		fmt.Fprintf(&b, "\n  ~ %s: %s -> %s", c.Name, c.From, c.To)
	}
	return b.String()
}

func fieldNames(session *editor.Session) []string {
	fields := session.Fields()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.Name)
	}
	return names
}

func fieldLabel(f editor.Field) string {
	if f.Format != "" {
		return fmt.Sprintf("%s (%s, %s)", f.Name, f.Type, f.Format)
	}
	return fmt.Sprintf("%s (%s)", f.Name, f.Type)
}

func describeFields(fields []editor.Field) string {
	if len(fields) == 0 {
		return "No fields"
	}
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		labels = append(labels, fieldLabel(f))
	}
	return strings.Join(labels, ", ")
}
