package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/matteuzdev/VerbAI-Studio/assistant"
	"github.com/matteuzdev/VerbAI-Studio/internal/utils"
	"github.com/spf13/cobra"
)

func newAssistCommand(o *options) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:     "assist",
		Aliases: []string{"ai"},
		Short:   "Generate copy, images and SEO metadata",
		Long: `assist calls the configured generative model. Without a Gemini API key
text commands print empty results and images use the public fallback service.`,
	}
	cmd.PersistentFlags().StringVar(&language, "lang", assistant.DefaultLanguage, "output language")

	var tone string
	textCmd := &cobra.Command{
		Use:   "text PROMPT",
		Short: "Write plain text copy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			out := a.Assistant.GenerateText(cmd.Context(), strings.Join(args, " "), utils.FirstNonEmpty(tone, a.Store.Brand().ToneOfVoice), language)
			return o.printer(cmd).message("%s", out)
		},
	}
	textCmd.Flags().StringVar(&tone, "tone", "", "tone of voice (default is the brand tone)")

	imageCmd := &cobra.Command{
		Use:   "image PROMPT",
		Short: "Generate an image and print its URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			return o.printer(cmd).message("%s", a.Assistant.GenerateImage(cmd.Context(), strings.Join(args, " ")))
		},
	}

	var apply bool
	seoCmd := &cobra.Command{
		Use:   "seo ID|SLUG",
		Short: "Generate SEO title, description and keywords for a content item",
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
			tags := a.Assistant.GenerateSeoTags(cmd.Context(), c.Title+". "+c.Excerpt, c.Type, language)
			if apply {
				assistant.ApplySeoTags(&c, tags)
				if _, err := a.Store.UpsertContent(cmd.Context(), c); err != nil {
					return err
				}
			}
			return o.printer(cmd).value(tags)
		},
	}
	seoCmd.Flags().BoolVar(&apply, "apply", false, "store the generated tags on the item")

	var attach bool
	tagsCmd := &cobra.Command{
		Use:   "tags ID|SLUG",
		Short: "Suggest taxonomy tags for a content item",
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
			names := a.Assistant.SuggestTags(cmd.Context(), c.Body, language)
			if attach && len(names) > 0 {
				if _, err := a.Store.AttachTags(cmd.Context(), c.ID, names); err != nil {
					return err
				}
			}
			if o.jsonOut {
				return o.printer(cmd).value(names)
			}
			return o.printer(cmd).message("%s", strings.Join(names, ", "))
		},
	}
	tagsCmd.Flags().BoolVar(&attach, "apply", false, "attach the suggested tags to the item")

	auditCmd := &cobra.Command{
		Use:   "audit ID|SLUG",
		Short: "Score the SEO quality of a content item",
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
			audit := a.Assistant.AnalyzeSeoQuality(cmd.Context(), c.Body, utils.FirstNonEmpty(c.SeoTitle, c.Title), utils.FirstNonEmpty(c.SeoDescription, c.Excerpt))
			if o.jsonOut {
				return o.printer(cmd).value(audit)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d/100 %s\n%s\n", audit.Score, audit.Verdict, audit.Proof)
			for _, p := range audit.Positive {
				fmt.Fprintf(w, "  + %s\n", p)
			}
			for _, n := range audit.Negative {
				fmt.Fprintf(w, "  - %s\n", n)
			}
			return nil
		},
	}

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant; one message per line, EOF to quit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.app(cmd.Context())
			if err != nil {
				return err
			}
			var history []assistant.Message
			w := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				msg := strings.TrimSpace(scanner.Text())
				if msg == "" {
					continue
				}
				reply := a.Assistant.Chat(cmd.Context(), history, msg, language)
				fmt.Fprintln(w, reply)
				history = append(history,
					assistant.Message{Role: assistant.RoleUser, Text: msg},
					assistant.Message{Role: assistant.RoleModel, Text: reply},
				)
			}
			return scanner.Err()
		},
	}

	cmd.AddCommand(textCmd, imageCmd, seoCmd, tagsCmd, auditCmd, chatCmd)
	return cmd
}
