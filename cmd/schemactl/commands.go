package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/reglet-dev/schemactl/config"
	"github.com/reglet-dev/schemactl/editor"
	"github.com/reglet-dev/schemactl/editor/values"
	"github.com/reglet-dev/schemactl/prompt"
	"github.com/reglet-dev/schemactl/schema"
)

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// ref parses the single positional schema ID of a command.
func (a *app) ref(fs *flag.FlagSet) (values.ArtifactRef, error) {
	if fs.NArg() != 1 {
		return values.ArtifactRef{}, fmt.Errorf("%s: expected one schema id, got %d arguments", fs.Name(), fs.NArg())
	}
	return a.svc.Ref(fs.Arg(0))
}

func (a *app) runList(ctx context.Context, args []string) error {
	fs := a.newFlagSet("list")
	match := fs.String("match", "", "glob filter on schema IDs, e.g. 'order*'")
	if err := fs.Parse(args); err != nil {
		return err
	}

	artifacts, err := a.svc.ListSchemas(ctx, *match)
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		fmt.Fprintln(a.stderr, "no schemas found")
		return nil
	}
	return writeArtifacts(a.stdout, artifacts, now())
}

func (a *app) runCreate(ctx context.Context, args []string) error {
	fs := a.newFlagSet("create")
	description := fs.String("description", "", "artifact description")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var id string
	switch fs.NArg() {
	case 0:
		in, err := a.terminal.CreateSchema()
		if err != nil {
			if errors.Is(err, prompt.ErrNotInteractive) {
				return errors.New("create: schema id is required when not running interactively")
			}
			return err
		}
		id = in.ID
		if *description == "" {
			*description = in.Description
		}
	case 1:
		id = fs.Arg(0)
	default:
		return fmt.Errorf("create: expected at most one schema id, got %d arguments", fs.NArg())
	}

	v, err := a.svc.CreateSchema(ctx, id, *description)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "created %s version %s\n", v.Ref, v.Version)
	return nil
}

func (a *app) runShow(ctx context.Context, args []string) error {
	fs := a.newFlagSet("show")
	version := fs.String("version", "", "exact version or semver constraint (default latest)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := a.ref(fs)
	if err != nil {
		return err
	}

	session, err := a.svc.Open(ctx, ref, *version)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(session.Original(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "%s@%s\n", session.Ref(), session.Version())
	fmt.Fprintf(a.stdout, "%s\n", data)
	return nil
}

func (a *app) runVersions(ctx context.Context, args []string) error {
	fs := a.newFlagSet("versions")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := a.ref(fs)
	if err != nil {
		return err
	}

	versions, err := a.svc.Versions(ctx, ref)
	if err != nil {
		return err
	}
	return writeVersions(a.stdout, versions, now())
}

func (a *app) runAddField(ctx context.Context, args []string) error {
	fs := a.newFlagSet("add-field")
	name := fs.String("name", "", "field name")
	kind := fs.String("type", string(schema.KindString), "field type")
	version := fs.String("version", "", "version to start from (default latest)")
	dryRun := fs.Bool("dry-run", false, "show the result without saving")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := a.ref(fs)
	if err != nil {
		return err
	}
	k, err := schema.ParseFieldKind(*kind)
	if err != nil {
		return err
	}

	session, err := a.svc.Open(ctx, ref, *version)
	if err != nil {
		return err
	}
	if err := session.AddField(*name, k); err != nil {
		return err
	}
	result, err := a.svc.Save(ctx, session, editor.SaveOptions{DryRun: *dryRun})
	if result != nil {
		writeSaveResult(a.stdout, session.Ref().String(), result)
	}
	return err
}

func (a *app) runRemoveField(ctx context.Context, args []string) error {
	fs := a.newFlagSet("remove-field")
	name := fs.String("name", "", "field name")
	version := fs.String("version", "", "version to start from (default latest)")
	allowBreaking := fs.Bool("allow-breaking", false, "save the breaking change as a new major version")
	dryRun := fs.Bool("dry-run", false, "show the result without saving")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := a.ref(fs)
	if err != nil {
		return err
	}

	session, err := a.svc.Open(ctx, ref, *version)
	if err != nil {
		return err
	}
	if err := session.RemoveField(*name); err != nil {
		return err
	}
	result, err := a.svc.Save(ctx, session, editor.SaveOptions{AllowBreaking: *allowBreaking, DryRun: *dryRun})
	if result != nil {
		writeSaveResult(a.stdout, session.Ref().String(), result)
	}
	return err
}

func (a *app) runEdit(ctx context.Context, args []string) error {
	fs := a.newFlagSet("edit")
	version := fs.String("version", "", "version to start from (prompts when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := a.ref(fs)
	if err != nil {
		return err
	}
	if !a.terminal.IsInteractive() {
		return fmt.Errorf("edit: %w; use add-field or push instead", prompt.ErrNotInteractive)
	}

	if *version == "" {
		versions, err := a.svc.Versions(ctx, ref)
		if err != nil {
			return err
		}
		if *version, err = a.terminal.SelectVersion(versions); err != nil {
			return err
		}
	}

	session, err := a.svc.Open(ctx, ref, *version)
	if err != nil {
		return err
	}

	for {
		action, err := a.terminal.ChooseAction(session)
		if err != nil {
			return err
		}

		switch action {
		case prompt.ActionEditGeneral:
			err = a.terminal.EditGeneral(session)
		case prompt.ActionAddField:
			var f prompt.NewField
			if f, err = a.terminal.AddField(session); err == nil {
				err = session.AddField(f.Name, f.Kind)
			}
		case prompt.ActionRemoveField:
			var name string
			if name, err = a.terminal.RemoveField(session); err == nil {
				err = session.RemoveField(name)
			}
		case prompt.ActionPreview:
			var p editor.Preview
			if p, err = session.Preview(); err == nil {
				fmt.Fprintln(a.stdout, prompt.DescribePreview(p))
			}
		case prompt.ActionSave:
			err = a.saveInteractive(ctx, session)
		case prompt.ActionQuit:
			return nil
		}
		if err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", err)
		}
	}
}

func (a *app) saveInteractive(ctx context.Context, session *editor.Session) error {
	preview, err := session.Preview()
	if err != nil {
		return err
	}
	ok, err := a.terminal.ConfirmSave(preview)
	if err != nil || !ok {
		return err
	}
	result, err := a.svc.Save(ctx, session, editor.SaveOptions{
		AllowBreaking: preview.Change == schema.ChangeBreaking,
	})
	if result != nil {
		writeSaveResult(a.stdout, session.Ref().String(), result)
	}
	return err
}

func (a *app) runPull(ctx context.Context, args []string) error {
	fs := a.newFlagSet("pull")
	version := fs.String("version", "", "exact version or semver constraint (default latest)")
	dir := fs.String("dir", ".", "directory to write the schema file to")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ref, err := a.ref(fs)
	if err != nil {
		return err
	}

	result, err := a.svc.Pull(ctx, ref, *version, *dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "pulled %s@%s to %s (%s)\n", result.Ref, result.Version, result.Path, result.Digest)
	return nil
}

func (a *app) runPush(ctx context.Context, args []string) error {
	fs := a.newFlagSet("push")
	allowBreaking := fs.Bool("allow-breaking", false, "save a breaking change as a new major version")
	dryRun := fs.Bool("dry-run", false, "show the result without saving")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("push: expected one file, got %d arguments", fs.NArg())
	}

	result, err := a.svc.Push(ctx, fs.Arg(0), editor.SaveOptions{AllowBreaking: *allowBreaking, DryRun: *dryRun})
	if result != nil {
		writeSaveResult(a.stdout, fs.Arg(0), result)
	}
	return err
}

// errUnexpectedChange is returned by diff --expect when the versions differ
// by another kind of change.
var errUnexpectedChange = errors.New("unexpected change")

func (a *app) runDiff(ctx context.Context, args []string) error {
	fs := a.newFlagSet("diff")
	expect := fs.String("expect", "", "fail unless the change is none, additive (minor) or breaking (major)")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("diff: expected <id> <from> <to>, got %d arguments", fs.NArg())
	}
	ref, err := a.svc.Ref(fs.Arg(0))
	if err != nil {
		return err
	}
	var want schema.ChangeType
	if *expect != "" {
		if want, err = schema.ParseChangeType(*expect); err != nil {
			return fmt.Errorf("diff: %w", err)
		}
	}

	report, err := a.svc.Compare(ctx, ref, fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}
	if *asJSON {
		if err := writeReportJSON(a.stdout, report); err != nil {
			return err
		}
	} else {
		writeReport(a.stdout, report)
	}

	if *expect != "" && report.Change() != want {
		return fmt.Errorf("%w: %s %s -> %s is %s, expected %s",
			errUnexpectedChange, ref, fs.Arg(1), fs.Arg(2), report.Change(), want)
	}
	return nil
}

func (a *app) runConfig(args []string) error {
	if len(args) != 1 || args[0] != "schema" {
		return errors.New("usage: schemactl config schema")
	}
	data, err := config.Schema()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "%s\n", data)
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
