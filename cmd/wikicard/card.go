package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aretw0/wikicard"
	"github.com/aretw0/wikicard/internal/cli"
	"github.com/aretw0/wikicard/internal/presentation/tui"
	"github.com/aretw0/wikicard/pkg/domain"
)

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Render a card for a random article that was never distributed",
	Long: `Fetches random summaries until one is not in the history, renders its card
and records it. The PNG goes to --out, or to stdout when it is redirected.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCard(cmd, "")
	},
}

var wikiCmd = &cobra.Command{
	Use:   "wiki <title>",
	Short: "Render a card for a named article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCard(cmd, args[0])
	},
}

func init() {
	for _, c := range []*cobra.Command{randomCmd, wikiCmd} {
		c.Flags().String("theme", "", "Card theme: light or dark (defaults to render.theme)")
		c.Flags().StringP("out", "o", "", "Write the PNG to this file ('-' for stdout)")
		c.Flags().Bool("html", false, "Print the card HTML instead of rendering it")
		c.Flags().Bool("preview", false, "Print a terminal preview instead of rendering it")
		c.Flags().Bool("no-record", false, "Do not add the article to the history")
		rootCmd.AddCommand(c)
	}
}

// runCard serves both card commands. An empty title draws a random article.
func runCard(cmd *cobra.Command, title string) error {
	themeName, _ := cmd.Flags().GetString("theme")
	out, _ := cmd.Flags().GetString("out")
	asHTML, _ := cmd.Flags().GetBool("html")
	preview, _ := cmd.Flags().GetBool("preview")
	noRecord, _ := cmd.Flags().GetBool("no-record")

	if asHTML && preview {
		return fmt.Errorf("--html and --preview are mutually exclusive")
	}

	sc := cli.NewSignalContext(cmd.Context())
	defer sc.Cancel()

	app, err := newApp(sc, cmd, cli.AppOptions{Theme: themeName, NoRecord: noRecord})
	if err != nil {
		return err
	}
	defer app.Close()

	traceID := uuid.NewString()
	stdout := cmd.OutOrStdout()

	// Neither preview nor HTML output renders, so nothing is recorded.
	if asHTML || preview {
		article, err := fetch(sc, app.Bot, title, traceID)
		if err != nil {
			return err
		}
		if preview {
			text, err := tui.Preview(*article, app.Bot.Spec(*article, nil))
			if err != nil {
				return err
			}
			fmt.Fprint(stdout, text)
			return nil
		}
		doc, err := app.Bot.HTML(*article, nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, doc)
		return nil
	}

	var c *wikicard.Card
	if title == "" {
		c, err = app.Bot.RandomCard(sc, nil, traceID)
	} else {
		c, err = app.Bot.TitleCard(sc, title, nil, traceID)
	}
	if err != nil {
		if sig := sc.Signal(); sig != nil && cli.IsInterrupted(err) {
			cli.PrintSystemMessage(cmd.ErrOrStderr(), "Interrupted (%v)", sig)
		}
		return err
	}

	if err := cli.WritePNG(stdout, out, c.PNG); err != nil {
		return err
	}
	if out != "" && out != "-" {
		cli.PrintSystemMessage(cmd.ErrOrStderr(), "%s (%s, %s) -> %s", c.Article.Title, c.Spec.Layout, c.Spec.Theme, out)
	}
	return nil
}

func fetch(ctx context.Context, bot *wikicard.Bot, title, traceID string) (*domain.Article, error) {
	if title == "" {
		return bot.RandomArticle(ctx, traceID)
	}
	return bot.Article(ctx, title, traceID)
}
