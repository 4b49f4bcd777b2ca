package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matteuzdev/VerbAI-Studio/content"
	"github.com/matteuzdev/VerbAI-Studio/internal/errors"
	"github.com/matteuzdev/VerbAI-Studio/store"
	"github.com/spf13/cobra"
)

func newContentCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "content",
		Aliases: []string{"contents", "posts"},
		Short:   "Manage posts and pages of the active tenant",
	}

	var listType string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List contents",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			items := a.Store.Contents()
			if listType != "" {
				items = content.FilterByType(items, content.Type(listType))
			}
			rows := make([][]string, 0, len(items))
			for _, c := range items {
				rows = append(rows, []string{c.ID, string(c.Type), string(c.Status), c.Slug, c.Title, c.UpdatedAt.Format("2006-01-02 15:04")})
			}
			return o.printer(cmd).table(items, []string{"ID", "TYPE", "STATUS", "SLUG", "TITLE", "UPDATED"}, rows)
		},
	}
	listCmd.Flags().StringVar(&listType, "type", "", "post or page")

	showCmd := &cobra.Command{
		Use:   "show ID|SLUG",
		Short: "Print one content item as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			c, err := findContent(a.Store, args[0])
			if err != nil {
				return err
			}
			return o.printer(cmd).value(c)
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Store.DeleteContent(cmd.Context(), args[0]); err != nil {
				return err
			}
			return o.printer(cmd).message("Deleted %s", args[0])
		},
	}

	importCmd := &cobra.Command{
		Use:   "import FILE.md...",
		Short: "Import markdown files with front matter as posts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			p := o.printer(cmd)
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				c, err := a.Store.ImportMarkdown(cmd.Context(), f, filepath.Base(path))
				f.Close()
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := p.message("Imported %s as %s (%s)", path, c.Slug, c.ID); err != nil {
					return err
				}
			}
			return nil
		},
	}

	tagCmd := &cobra.Command{
		Use:   "tag ID TAG...",
		Short: "Attach tags to a content item, creating missing ones",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			terms, err := a.Store.AttachTags(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			names := make([]string, len(terms))
			for i, t := range terms {
				names[i] = t.Name
			}
			return o.printer(cmd).message("Tagged %s with %s", args[0], strings.Join(names, ", "))
		},
	}

	cmd.AddCommand(listCmd, showCmd, newContentSaveCommand(o), deleteCmd, importCmd, tagCmd)
	return cmd
}

type contentFlags struct {
	item     content.Content
	bodyFile string
	regen    bool
}

func newContentSaveCommand(o *options) *cobra.Command {
	var f contentFlags
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Create a content item, or update the one given by --id",
		Long: `save creates a post or page. With --id only the flags given on the
command line change the stored item. The slug is re-derived on every save and
suffixed with -1, -2, ... when taken.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			item, err := f.merge(cmd, a.Store)
			if err != nil {
				return err
			}
			var opts []store.UpsertOption
			if f.regen {
				opts = append(opts, store.RegenerateSlug())
			}
			saved, err := a.Store.UpsertContent(cmd.Context(), item, opts...)
			if err != nil {
				return err
			}
			p := o.printer(cmd)
			if p.json {
				return p.value(saved)
			}
			return p.message("Saved %s %q as /%s (%s)", saved.Type, saved.Title, saved.Slug, saved.ID)
		},
	}

	fl := saveCmd.Flags()
	fl.StringVar(&f.item.ID, "id", "", "id of the item to update")
	fl.StringVar((*string)(&f.item.Type), "type", string(content.TypePost), "post or page")
	fl.StringVar(&f.item.Title, "title", "", "title")
	fl.StringVar(&f.item.Slug, "slug", "", "slug (derived from the title when empty)")
	fl.StringVar(&f.item.Excerpt, "excerpt", "", "excerpt")
	fl.StringVar(&f.item.Body, "body", "", "body HTML or markdown")
	fl.StringVar(&f.bodyFile, "body-file", "", "read the body from a file")
	fl.StringVar((*string)(&f.item.Status), "status", string(content.StatusDraft), "draft, published or scheduled")
	fl.StringVar(&f.item.FeaturedImage, "image", "", "featured image URL")
	fl.StringVar(&f.item.AuthorName, "author", "", "author name")
	fl.StringVar(&f.item.SeoTitle, "seo-title", "", "SEO title")
	fl.StringVar(&f.item.SeoDescription, "seo-description", "", "SEO description")
	fl.StringVar(&f.item.Keywords, "keywords", "", "comma separated SEO keywords")
	fl.StringSliceVar(&f.item.CategoryIDs, "category", nil, "category term ids")
	fl.BoolVar(&f.regen, "regenerate-slug", false, "derive the slug from the title again")
	return saveCmd
}

// merge applies the flags set on the command line to the stored item, or
// returns the flag values for a new item.
func (f *contentFlags) merge(cmd *cobra.Command, st *store.Store) (content.Content, error) {
	if f.bodyFile != "" {
		raw, err := os.ReadFile(f.bodyFile)
		if err != nil {
			return content.Content{}, err
		}
		f.item.Body = string(raw)
	}
	if f.item.ID == "" {
		if f.item.Title == "" {
			return content.Content{}, errors.Wrapf(errors.ErrInvalidContent, "--title is required")
		}
		return f.item, nil
	}

	existing, ok := st.ContentByID(f.item.ID)
	if !ok {
		return content.Content{}, errors.Wrapf(errors.ErrNotFound, "content %s", f.item.ID)
	}
	changed := cmd.Flags().Changed
	set := func(name string, dst *string, v string) {
		if changed(name) {
			*dst = v
		}
	}
	set("title", &existing.Title, f.item.Title)
	set("slug", &existing.Slug, f.item.Slug)
	set("excerpt", &existing.Excerpt, f.item.Excerpt)
	set("body", &existing.Body, f.item.Body)
	set("body-file", &existing.Body, f.item.Body)
	set("image", &existing.FeaturedImage, f.item.FeaturedImage)
	set("author", &existing.AuthorName, f.item.AuthorName)
	set("seo-title", &existing.SeoTitle, f.item.SeoTitle)
	set("seo-description", &existing.SeoDescription, f.item.SeoDescription)
	set("keywords", &existing.Keywords, f.item.Keywords)
	if changed("type") {
		existing.Type = f.item.Type
	}
	if changed("status") {
		existing.Status = f.item.Status
	}
	if changed("category") {
		existing.CategoryIDs = f.item.CategoryIDs
	}
	return existing, nil
}

func findContent(st *store.Store, ref string) (content.Content, error) {
	if c, ok := st.ContentByID(ref); ok {
		return c, nil
	}
	for _, t := range []content.Type{content.TypePost, content.TypePage} {
		if c, ok := st.ContentBySlug(t, ref); ok {
			return c, nil
		}
	}
	return content.Content{}, errors.Wrapf(errors.ErrNotFound, "content %s", ref)
}
