// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/urfave/cli/v3"
)

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func songFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "composer",
			Aliases: []string{"by"},
			Usage:   "Composer or author",
		},
		&cli.StringFlag{
			Name:  "lyrics",
			Usage: "Lyrics text",
		},
		&cli.StringFlag{
			Name:  "lyrics-file",
			Usage: "Read lyrics from a file (- for stdin)",
		},
		&cli.StringFlag{
			Name:  "tags",
			Usage: "Comma-separated tags",
		},
		&cli.StringFlag{
			Name:  "demo-text",
			Usage: "Label shown next to the audio player",
		},
		&cli.StringFlag{
			Name:  "audio-file",
			Usage: "Attach a local audio file",
		},
		&cli.StringFlag{
			Name:  "audio-url",
			Usage: "Attach an audio link (YouTube, Google Drive, SoundCloud or a direct file)",
		},
	}
}

func idArg() []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{Name: "id"},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a config file, initialize the database and seed the catalog",
		Action: r.Setup,
	}
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List songs",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Match name, composer, lyrics or tags",
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort order: az or za",
				Value: string(repositories.SortAZ),
			},
			&cli.StringSliceFlag{
				Name:    "tag",
				Aliases: []string{"t"},
				Usage:   "Only songs with a matching tag (repeatable)",
			},
			&cli.StringFlag{
				Name:  "view",
				Usage: "Layout: " + strings.Join(repositories.ViewModes, " or ") + " (default: viewMode preference)",
			},
		}, outputFlags()...),
		Action: r.ListSongs,
	}
}

func showCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a song with its lyrics and audio",
		Arguments: idArg(),
		Flags:     outputFlags(),
		Action:    r.ShowSong,
	}
}

func tagsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tags",
		Usage:  "List every tag in the catalog",
		Flags:  outputFlags(),
		Action: r.ListTags,
	}
}

func addCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "name",
			Aliases:  []string{"n"},
			Usage:    "Song name",
			Required: true,
		},
	}
	flags = append(flags, songFlags()...)
	flags = append(flags, outputFlags()...)

	return &cli.Command{
		Name:   "add",
		Usage:  "Add a song (admin)",
		Flags:  append(flags, adminFlags()...),
		Before: r.requireAdmin,
		Action: r.AddSong,
	}
}

func updateCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "name",
			Aliases: []string{"n"},
			Usage:   "Song name",
		},
	}
	flags = append(flags, songFlags()...)

	return &cli.Command{
		Name:      "update",
		Aliases:   []string{"edit"},
		Usage:     "Update the given fields of a song (admin)",
		Arguments: idArg(),
		Flags:     append(flags, adminFlags()...),
		Before:    r.requireAdmin,
		Action:    r.UpdateSong,
	}
}

func deleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Delete a song and its audio (admin)",
		Arguments: idArg(),
		Flags:     adminFlags(),
		Before:    r.requireAdmin,
		Action:    r.DeleteSong,
	}
}

func audioCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "audio",
		Usage: "Manage a song's audio",
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Attach a file or link to a song (admin)",
				Arguments: idArg(),
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Local audio file",
					},
					&cli.StringFlag{
						Name:    "url",
						Aliases: []string{"u"},
						Usage:   "Audio link",
					},
				}, adminFlags()...),
				Before: r.requireAdmin,
				Action: r.SetAudio,
			},
			{
				Name:      "clear",
				Usage:     "Remove a song's audio (admin)",
				Arguments: idArg(),
				Flags:     adminFlags(),
				Before:    r.requireAdmin,
				Action:    r.ClearAudio,
			},
		},
	}
}

func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the catalog as a JSON snapshot or a songbook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "json, " + formatList() + " (default: from --output, else json)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file, or directory with --per-song (default: stdout)",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Songbook title for markdown output",
			},
			&cli.BoolFlag{
				Name:  "per-song",
				Usage: "Write one file per song plus a manifest",
			},
			&cli.StringSliceFlag{
				Name:  "id",
				Usage: "Song IDs to export with --per-song (default: all)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent writers for --per-song",
				Value: 4,
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON",
				Value: true,
			},
		},
		Action: r.Export,
	}
}

func formatList() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import songs from a JSON snapshot (admin)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "path"},
		},
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "overwrite",
				Usage: "Replace songs whose ID already exists",
			},
		}, adminFlags()...),
		Before: r.requireAdmin,
		Action: r.Import,
	}
}

func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Read or change display preferences",
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show preferences (theme, viewMode)",
				Arguments: []cli.Argument{&cli.StringArg{Name: "key"}},
				Flags:     outputFlags(),
				Action:    r.PrefsGet,
			},
			{
				Name:  "set",
				Usage: "Set a preference, e.g. prefs set theme midnight",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
					&cli.StringArg{Name: "value"},
				},
				Action: r.PrefsSet,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse the catalog in an interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the UI is running",
				Value: "./tmp/songbook-tui.log",
			},
		},
		Action: r.TUI,
	}
}

func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the read-only catalog preview server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: [server] host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: [server] port)",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Page heading",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the catalog in the default browser",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reload the catalog when the database file changes",
			},
		},
		Action: r.Serve,
	}
}
