package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/docme/internal/client/models"
)

// AddDocument asks for the document details and stores it in the current
// folder.
func (a *App) AddDocument(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "Title", a.out)
	if err != nil {
		return err
	}
	description, err := getMultiline(a.reader, "Description (optional)", a.out)
	if err != nil {
		return err
	}
	icon, err := a.askIcon(models.IconTag)
	if err != nil {
		return err
	}
	color, err := a.askColor(models.ColorNone)
	if err != nil {
		return err
	}
	fields, err := a.askFields()
	if err != nil {
		return err
	}

	nd := models.NewDocument{
		Title:    title,
		Icon:     icon,
		Color:    color,
		FolderID: a.cwd,
		Fields:   fields,
	}
	if description != "" {
		nd.Description = &description
	}

	d, err := a.docs.CreateLocalDocument(ctx, nd)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Created document %s (%s)\n", d.Title, shortID(d.ID))
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("show <document>")
	}
	d, err := a.resolveDocument(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	all, err := a.docs.FetchLocalFolders(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%s\n", d.Title)
	fmt.Fprintf(a.out, "  id:       %s\n", d.ID)
	fmt.Fprintf(a.out, "  folder:   %s\n", folderPath(all, d.FolderID))
	fmt.Fprintf(a.out, "  icon:     %s\n", d.Icon)
	fmt.Fprintf(a.out, "  color:    %s\n", d.Color)
	if d.IsFavorite {
		fmt.Fprintln(a.out, "  favorite: yes")
	}
	if d.Description != nil {
		fmt.Fprintf(a.out, "  description: %s\n", *d.Description)
	}
	if d.ImagePath != nil {
		fmt.Fprintf(a.out, "  image:    %s\n", *d.ImagePath)
	} else if d.RemoteImageURL != nil {
		fmt.Fprintln(a.out, "  image:    not downloaded yet")
	}
	for _, f := range d.Fields {
		fmt.Fprintf(a.out, "  %s = %s\n", f.Name, f.Value)
	}
	fmt.Fprintf(a.out, "  created:  %s\n", d.CreatedAt.Local().Format(time.DateTime))
	fmt.Fprintf(a.out, "  updated:  %s%s\n", d.UpdatedAt.Local().Format(time.DateTime), pendingMark(d.IsDirty))
	return nil
}

// Edit prompts for each attribute with the current value as default. An
// empty answer keeps it; "-" clears the description.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("edit <document>")
	}
	d, err := a.resolveDocument(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	title, err := getSimpleText(a.reader, fmt.Sprintf("Title [%s]", d.Title), a.out)
	if err != nil {
		return err
	}
	if title != "" {
		d.Title = title
	}

	current := ""
	if d.Description != nil {
		current = *d.Description
	}
	description, err := getSimpleText(a.reader, fmt.Sprintf("Description [%s] (- to clear)", current), a.out)
	if err != nil {
		return err
	}
	switch description {
	case "":
	case "-":
		d.Description = nil
	default:
		d.Description = &description
	}

	if d.Icon, err = a.askIcon(d.Icon); err != nil {
		return err
	}
	if d.Color, err = a.askColor(d.Color); err != nil {
		return err
	}

	return a.docs.SaveDocument(ctx, d)
}

// Fields replaces the document's whole field set.
func (a *App) Fields(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("fields <document>")
	}
	d, err := a.resolveDocument(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if len(d.Fields) > 0 {
		fmt.Fprintln(a.out, "Current fields (all of them are replaced):")
		for _, f := range d.Fields {
			fmt.Fprintf(a.out, "  %s=%s\n", f.Name, f.Value)
		}
	}
	fields, err := a.askFields()
	if err != nil {
		return err
	}
	return a.docs.SetFields(ctx, d.ID, fields)
}

func (a *App) Image(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("image <document> <file.png|url|-rm>")
	}
	d, err := a.resolveDocument(ctx, args[0])
	if err != nil {
		return err
	}
	if args[1] == "-rm" {
		return a.docs.RemoveImage(ctx, d.ID)
	}
	return a.docs.SetImage(ctx, d.ID, args[1])
}

func (a *App) Favorite(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("fav <document>")
	}
	d, err := a.resolveDocument(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	on, err := a.docs.ToggleFavorite(ctx, d.ID)
	if err != nil {
		return err
	}
	if on {
		fmt.Fprintf(a.out, "%s added to favorites\n", d.Title)
	} else {
		fmt.Fprintf(a.out, "%s removed from favorites\n", d.Title)
	}
	return nil
}

func (a *App) Move(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageError("mv <document> <folder|/>")
	}
	d, err := a.resolveDocument(ctx, args[0])
	if err != nil {
		return err
	}
	target, err := a.folderTarget(ctx, args[1])
	if err != nil {
		return err
	}
	return a.docs.MoveDocument(ctx, d.ID, target)
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("rm <document>")
	}
	d, err := a.resolveDocument(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	if err := a.docs.DeleteDocument(ctx, d.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Deleted %s\n", d.Title)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("search <text>")
	}
	docs, err := a.docs.Search(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return a.printDocuments(ctx, docs)
}

func (a *App) Color(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("color <" + strings.Join(colorNames(), "|") + ">")
	}
	c, err := models.ParseColor(args[0])
	if err != nil {
		return err
	}
	docs, err := a.docs.FilterByColor(ctx, c)
	if err != nil {
		return err
	}
	return a.printDocuments(ctx, docs)
}

func (a *App) Favorites(ctx context.Context) error {
	docs, err := a.docs.Favorites(ctx)
	if err != nil {
		return err
	}
	return a.printDocuments(ctx, docs)
}

// printDocuments lists documents from anywhere with their folder path.
func (a *App) printDocuments(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		fmt.Fprintln(a.out, "Nothing found")
		return nil
	}
	all, err := a.docs.FetchLocalFolders(ctx)
	if err != nil {
		return err
	}
	for _, d := range docs {
		fmt.Fprintf(a.out, "%s  in %s\n", documentLine(d), folderPath(all, d.FolderID))
	}
	return nil
}

func documentLine(d models.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s  %s", shortID(d.ID), d.Title)
	if d.IsFavorite {
		b.WriteString(" *")
	}
	if d.Color != models.ColorNone && d.Color != "" {
		fmt.Fprintf(&b, " [%s]", d.Color)
	}
	b.WriteString(pendingMark(d.IsDirty))
	return b.String()
}

func (a *App) askIcon(current models.Icon) (models.Icon, error) {
	names := make([]string, len(models.Icons))
	for i, ic := range models.Icons {
		names[i] = string(ic)
	}
	s, err := getSimpleText(a.reader, fmt.Sprintf("Icon (%s) [%s]", strings.Join(names, ", "), current), a.out)
	if err != nil || s == "" {
		return current, err
	}
	return models.ParseIcon(s)
}

func (a *App) askColor(current models.Color) (models.Color, error) {
	s, err := getSimpleText(a.reader, fmt.Sprintf("Color (%s) [%s]", strings.Join(colorNames(), ", "), current), a.out)
	if err != nil || s == "" {
		return current, err
	}
	return models.ParseColor(s)
}

// getFields and getMultiline are test seams like getSimpleText.
var (
	getFields    = GetFields
	getMultiline = GetMultiline
)

func (a *App) askFields() ([]models.Field, error) {
	lines, err := getFields(a.reader, a.out)
	if err != nil {
		return nil, err
	}
	return models.FieldsFromStrings(lines)
}

func colorNames() []string {
	names := make([]string, len(models.Colors))
	for i, c := range models.Colors {
		names[i] = string(c)
	}
	return names
}
