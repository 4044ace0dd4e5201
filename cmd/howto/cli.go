package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/howto/internal/errors"
	"github.com/hpungsan/howto/internal/i18n"
	"github.com/hpungsan/howto/internal/ops"
	"github.com/hpungsan/howto/internal/prefs"
	"github.com/hpungsan/howto/internal/search"
	"github.com/hpungsan/howto/internal/web"
)

// maxStdinBytes bounds summaries piped into "saved save".
const maxStdinBytes = 1 << 20

// newCLIApp creates the CLI application with all commands.
// env may be nil when only help or version output is needed.
func newCLIApp(env *appEnv) *cli.App {
	app := &cli.App{
		Name:    "howto",
		Usage:   "Videos, articles and an AI guide for any \"how to\" question",
		Version: Version,
		Commands: []*cli.Command{
			serveCmd(env),
			searchCmd(env),
			askCmd(env),
			savedCmd(env),
			settingsCmd(env),
			languagesCmd(env),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// serveCmd creates the serve command.
func serveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Aliases: []string{"b"}, Usage: "Listen address (overrides server.bind)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides server.port)"},
		},
		Action: func(c *cli.Context) error {
			if bind := c.String("bind"); bind != "" {
				env.cfg.Server.Bind = bind
			}
			if c.IsSet("port") {
				env.cfg.Server.Port = c.Int("port")
			}
			return web.Run(web.NewServer(env.webDeps()))
		},
	}
}

// searchCmd creates the search command.
func searchCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Find videos, articles and an AI guide for a query",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "Answer language code (default: saved preference)"},
			&cli.BoolFlag{Name: "text", Aliases: []string{"t"}, Usage: "Print a readable summary instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			resp, err := env.searcher.Search(c.Context, search.SearchRequest{
				Query:    strings.Join(c.Args().Slice(), " "),
				Language: env.language(c.String("language")),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("text") {
				return outputSearchText(c.App.Writer, resp)
			}
			return outputJSON(c.App.Writer, resp)
		},
	}
}

// askCmd creates the ask command.
func askCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a follow-up question about an earlier query",
		ArgsUsage: "<follow-up question>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Required: true, Usage: "The original query"},
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "Answer language code (default: saved preference)"},
			&cli.BoolFlag{Name: "text", Aliases: []string{"t"}, Usage: "Print only the answer text"},
		},
		Action: func(c *cli.Context) error {
			resp, err := env.searcher.FollowUp(c.Context, search.FollowUpRequest{
				OriginalQuery: c.String("query"),
				FollowUpQuery: strings.Join(c.Args().Slice(), " "),
				Language:      env.language(c.String("language")),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("text") {
				_, err := fmt.Fprintln(c.App.Writer, resp.Answer)
				return err
			}
			return outputJSON(c.App.Writer, resp)
		},
	}
}

// savedCmd groups the saved tutorial commands.
func savedCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "saved",
		Usage: "Manage saved tutorials",
		Subcommands: []*cli.Command{
			savedListCmd(env),
			savedShowCmd(env),
			savedSaveCmd(env),
			savedDeleteCmd(env),
			savedExportCmd(env),
			savedImportCmd(env),
		},
	}
}

func savedListCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List saved tutorials in save order",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "include-summary", Usage: "Include each guide's full text"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("include-summary") {
				return outputJSON(c.App.Writer, ops.ListSaved(c.Context, env.db))
			}
			items := ops.ListSummaries(c.Context, env.db)
			return outputJSON(c.App.Writer, map[string]any{"items": items, "total": len(items)})
		},
	}
}

func savedShowCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a saved tutorial by ID or query",
		ArgsUsage: "[id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Saved query (case-insensitive)"},
		},
		Action: func(c *cli.Context) error {
			input := ops.FetchInput{Query: c.String("query")}
			if c.NArg() > 0 {
				input.ID = c.Args().First()
			}

			output, err := ops.FetchSaved(c.Context, env.db, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

func savedSaveCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Save a tutorial (summary from --summary or stdin)",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Usage: "Guide text"},
			&cli.StringFlag{Name: "title", Usage: "Title (default: \"How to <query>\")"},
			&cli.StringFlag{Name: "tools", Usage: "Comma-separated tools needed"},
			&cli.StringFlag{Name: "time", Usage: "Time estimate"},
			&cli.StringFlag{Name: "difficulty", Usage: "Difficulty"},
		},
		Action: func(c *cli.Context) error {
			input := ops.SaveInput{
				Query:        strings.Join(c.Args().Slice(), " "),
				Summary:      c.String("summary"),
				Title:        c.String("title"),
				Tools:        parseList(c.String("tools")),
				TimeEstimate: c.String("time"),
				Difficulty:   c.String("difficulty"),
			}

			if !c.IsSet("summary") && stdinHasData() {
				text, err := readStdin(c.App.Reader)
				if err != nil {
					return outputError(errors.NewInvalidRequest(err.Error()))
				}
				input.Summary = text
			}

			output, err := ops.SaveTutorial(c.Context, env.db, input)
			if err != nil {
				return outputError(err)
			}
			if output.Tutorial == nil {
				return outputError(errors.NewStorage(nil))
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

func savedDeleteCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a saved tutorial",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewInvalidRequest("id is required"))
			}
			return outputJSON(c.App.Writer, ops.DeleteSaved(c.Context, env.db, c.Args().First()))
		},
	}
}

func savedExportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export saved tutorials to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.howto/exports/saved-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, env.db, env.exportsDir(), ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

func savedImportCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import saved tutorials from a JSONL export",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "skip", Usage: "Collision mode: skip|error"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Import(c.Context, env.db, env.exportsDir(), ops.ImportInput{
				Path: c.Args().First(),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// settingsCmd groups the preference commands.
func settingsCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change preferences",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the current preferences",
				Action: func(c *cli.Context) error {
					return outputJSON(c.App.Writer, env.prefs.Get())
				},
			},
			{
				Name:  "set",
				Usage: "Change preferences",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "Language code"},
					&cli.StringFlag{Name: "dark-mode", Usage: "true|false"},
				},
				Action: func(c *cli.Context) error {
					var u prefs.Update
					if c.IsSet("language") {
						lang := c.String("language")
						u.Language = &lang
					}
					if c.IsSet("dark-mode") {
						dark, err := strconv.ParseBool(c.String("dark-mode"))
						if err != nil {
							return outputError(errors.NewInvalidRequest("dark-mode must be true or false"))
						}
						u.DarkMode = &dark
					}
					if u.Language == nil && u.DarkMode == nil {
						return outputError(errors.NewInvalidRequest("nothing to change: pass --language and/or --dark-mode"))
					}

					p, err := env.prefs.Apply(c.Context, u)
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c.App.Writer, p)
				},
			},
		},
	}
}

// languagesCmd creates the languages command.
func languagesCmd(env *appEnv) *cli.Command {
	return &cli.Command{
		Name:  "languages",
		Usage: "List supported languages",
		Action: func(c *cli.Context) error {
			return outputJSON(c.App.Writer, map[string]any{
				"languages": i18n.Languages(),
				"default":   i18n.Resolve(env.cfg.DefaultLanguage),
			})
		},
	}
}

// language returns the explicit code if given, else the saved preference.
func (e *appEnv) language(explicit string) string {
	if explicit != "" {
		return i18n.Resolve(explicit)
	}
	return e.prefs.Language()
}

// Helper functions

// outputJSON writes v to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputSearchText prints the summary followed by the video and article links.
func outputSearchText(w io.Writer, resp *search.SearchResponse) error {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(resp.Summary))
	b.WriteString("\n\nVideos:\n")
	for _, v := range resp.Videos {
		fmt.Fprintf(&b, "  - %s (%s)\n    %s\n", v.Title, v.Channel, v.URL)
	}
	b.WriteString("\nArticles:\n")
	for _, a := range resp.Articles {
		fmt.Fprintf(&b, "  - %s (%s)\n    %s\n", a.Title, a.Website, a.URL)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// outputError formats error for CLI.
func outputError(err error) error {
	if hErr, ok := errors.As(err); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", hErr.Code, hErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads at most maxStdinBytes from r.
func readStdin(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxStdinBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > maxStdinBytes {
		return "", fmt.Errorf("input exceeds %d bytes", maxStdinBytes)
	}
	return strings.TrimSpace(string(data)), nil
}

// parseList splits a comma-separated string, dropping empty entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
