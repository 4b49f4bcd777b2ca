package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matteuzdev/VerbAI-Studio/site"
	"github.com/spf13/cobra"
)

func newSectionsCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sections",
		Aliases: []string{"section"},
		Short:   "Edit the landing page sections of the active tenant",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List sections in page order",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			sections := a.Store.Sections()
			rows := make([][]string, 0, len(sections))
			for _, s := range sections {
				rows = append(rows, []string{s.ID, string(s.Type), yesNo(s.IsEnabled), s.Title})
			}
			return o.printer(cmd).table(sections, []string{"ID", "TYPE", "ENABLED", "TITLE"}, rows)
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle ID",
		Short: "Enable or disable a section",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Store.ToggleSection(cmd.Context(), args[0]); err != nil {
				return err
			}
			return o.printer(cmd).message("Toggled %s", args[0])
		},
	}

	setCmd := &cobra.Command{
		Use:   "set ID KEY=VALUE...",
		Short: "Merge values into a section's content",
		Long: `set merges KEY=VALUE pairs into the content of a section. Values that
parse as JSON (numbers, booleans, arrays, objects) are stored as such, anything
else as a string.`,
		Example: `  verbai sections set hero title="Grow faster" ctaText=Start
  verbai sections set stats items='[{"value":"99%","label":"Uptime"}]'`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Store.UpdateSection(cmd.Context(), args[0], patch); err != nil {
				return err
			}
			return o.printer(cmd).message("Updated %s", args[0])
		},
	}

	cmd.AddCommand(listCmd, toggleCmd, setCmd)
	return cmd
}

func parseAssignments(pairs []string) (map[string]any, error) {
	patch := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected KEY=VALUE, got %q", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		patch[key] = v
	}
	return patch, nil
}

func newBrandCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brand",
		Short: "Show or change the brand kit of the active tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			return o.printer(cmd).value(a.Store.Brand())
		},
	}

	var patch site.BrandPatch
	var b site.BrandConfig
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change brand values; omitted flags keep their value",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			fl := cmd.Flags()
			patch.PrimaryColor = changedString(fl.Changed("primary-color"), b.PrimaryColor)
			patch.SecondaryColor = changedString(fl.Changed("secondary-color"), b.SecondaryColor)
			patch.FontHeadings = changedString(fl.Changed("font-headings"), b.FontHeadings)
			patch.FontBody = changedString(fl.Changed("font-body"), b.FontBody)
			patch.ToneOfVoice = changedString(fl.Changed("tone"), b.ToneOfVoice)
			patch.LogoURL = changedString(fl.Changed("logo"), b.LogoURL)
			patch.FaviconURL = changedString(fl.Changed("favicon"), b.FaviconURL)
			if err := a.Store.SetBrandConfig(cmd.Context(), patch); err != nil {
				return err
			}
			return o.printer(cmd).value(a.Store.Brand())
		},
	}
	fl := setCmd.Flags()
	fl.StringVar(&b.PrimaryColor, "primary-color", "", "primary colour, e.g. #4f46e5")
	fl.StringVar(&b.SecondaryColor, "secondary-color", "", "secondary colour")
	fl.StringVar(&b.FontHeadings, "font-headings", "", "heading font family")
	fl.StringVar(&b.FontBody, "font-body", "", "body font family")
	fl.StringVar(&b.ToneOfVoice, "tone", "", "tone of voice used by the assistant")
	fl.StringVar(&b.LogoURL, "logo", "", "logo URL")
	fl.StringVar(&b.FaviconURL, "favicon", "", "favicon URL")

	cmd.AddCommand(setCmd)
	return cmd
}

func newSeoCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seo",
		Short: "Show or change the landing page SEO of the active tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			return o.printer(cmd).value(a.Store.PageSeo())
		},
	}

	var v site.PageSeoConfig
	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change SEO values; omitted flags keep their value",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			fl := cmd.Flags()
			patch := site.PageSeoPatch{
				Title:       changedString(fl.Changed("title"), v.Title),
				Description: changedString(fl.Changed("description"), v.Description),
				Keywords:    changedString(fl.Changed("keywords"), v.Keywords),
				OgImage:     changedString(fl.Changed("og-image"), v.OgImage),
			}
			if err := a.Store.SetPageSeo(cmd.Context(), patch); err != nil {
				return err
			}
			return o.printer(cmd).value(a.Store.PageSeo())
		},
	}
	setCmd.Flags().StringVar(&v.Title, "title", "", "page title")
	setCmd.Flags().StringVar(&v.Description, "description", "", "meta description")
	setCmd.Flags().StringVar(&v.Keywords, "keywords", "", "comma separated keywords")
	setCmd.Flags().StringVar(&v.OgImage, "og-image", "", "social preview image URL")

	cmd.AddCommand(setCmd)
	return cmd
}

func newSiteCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "site",
		Short: "Show or replace the header, footer and robots.txt of the active tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			return o.printer(cmd).value(a.Store.SiteConfig())
		},
	}

	var file string
	setCmd := &cobra.Command{
		Use:   "set --file site.json",
		Short: "Replace the site config with the contents of a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var cfg site.SiteConfig
			if err := json.Unmarshal(raw, &cfg); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.Store.SetSiteConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			return o.printer(cmd).message("Site config replaced")
		},
	}
	setCmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with {header, footer, robotsTxt}")
	_ = setCmd.MarkFlagRequired("file")

	cmd.AddCommand(setCmd)
	return cmd
}

func newSitemapCommand(o *options) *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Print the sitemap.xml of the active tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			if domain == "" {
				if t, err := a.Tenants.Get(a.Store.TenantID()); err == nil {
					domain = t.Domain
				}
			}
			sitemap, err := a.Store.Sitemap(domain)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), sitemap)
			return err
		},
	}
	cmd.Flags().StringVar(&domain, "domain", "", "site domain (default is the tenant's domain)")
	return cmd
}

func changedString(changed bool, v string) *string {
	if !changed {
		return nil
	}
	return &v
}
