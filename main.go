package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"eventhorizon/src-server/draft"
	"eventhorizon/src-server/model"
	"eventhorizon/src-server/route"
	"eventhorizon/src-server/store"
	"eventhorizon/src-server/suggest"
	"eventhorizon/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      utils.ParseLogLevel(os.Getenv("LOG_LEVEL")),
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	app := &cli.App{
		Name:  "eventhorizon",
		Usage: "Plan events, optionally with an AI-written description and agenda.",
		Commands: []*cli.Command{
			listCommand(),
			showCommand(),
			createCommand(),
			deleteCommand(),
			suggestCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("eventhorizon failed", "error", err)
		os.Exit(1)
	}
}

// withAppState builds the AppState for one command and tears it down after.
func withAppState(action func(c *cli.Context, as *utils.AppState) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		as, err := utils.NewAppState(c.Context, utils.NewConfig())
		if err != nil {
			return err
		}
		defer as.GracefulShutdown()
		return action(c, as)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// persistence failures don't undo the change, so they're only reported
func warnIfNotPersisted(err error) error {
	var persistErr *store.PersistenceError
	if errors.As(err, &persistErr) {
		slog.Warn("change applied but not saved to disk", "error", persistErr)
		return nil
	}
	return err
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List planned events, most recent first.",
		Action: withAppState(func(c *cli.Context, as *utils.AppState) error {
			events := as.Store.List()
			if len(events) == 0 {
				fmt.Println("No events yet. Plan one with `eventhorizon create`.")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tTYPE\tTITLE\tLOCATION\tAGENDA")
			for _, event := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n",
					event.ID, event.Date, event.Type, event.Title, event.DisplayLocation(), len(event.Agenda))
			}
			return tw.Flush()
		}),
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Print one event as JSON.",
		ArgsUsage: "<id>",
		Action: withAppState(func(c *cli.Context, as *utils.AppState) error {
			id := c.Args().First()
			event, ok := as.Store.FindByID(id)
			if !ok {
				return fmt.Errorf("event %q not found", id)
			}
			return printJSON(route.EventRespBody{Event: event, DisplayLocation: event.DisplayLocation()})
		}),
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an event. Unknown ids are ignored.",
		ArgsUsage: "<id>",
		Action: withAppState(func(c *cli.Context, as *utils.AppState) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("an event id is required")
			}
			return warnIfNotPersisted(as.Store.Delete(c.Context, id))
		}),
	}
}

func draftFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Event title."},
		&cli.StringFlag{Name: "date", Value: "today", Usage: "YYYY-MM-DD or natural language, e.g. \"next friday\"."},
		&cli.StringFlag{Name: "type", Value: string(model.EventTypeMeeting), Usage: "Conference, Party, Meeting, Workshop, Wedding or Other."},
		&cli.StringFlag{Name: "location", Usage: "Where it happens, empty for TBD."},
	}
}

// draftFromFlags fills a blank draft from the shared flags.
func draftFromFlags(c *cli.Context, as *utils.AppState) (*draft.Draft, error) {
	d := draft.New(as.Now())
	d.Title = c.String("title")
	d.Location = c.String("location")

	date, err := as.ParseDate(c.String("date"))
	if err != nil {
		return nil, err
	}
	d.Date = date

	eventType, err := model.ParseEventType(c.String("type"))
	if err != nil {
		return nil, err
	}
	d.Type = eventType
	return d, nil
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Plan a new event.",
		Flags: append(draftFlags(),
			&cli.StringFlag{Name: "description", Usage: "Free-text description."},
			&cli.StringFlag{Name: "color", Usage: "Theme color as #rrggbb."},
			&cli.StringSliceFlag{Name: "agenda", Usage: "Agenda slot as \"09:00=Keynote\", repeatable."},
			&cli.BoolFlag{Name: "suggest", Usage: "Let the AI write the description, color and agenda."},
		),
		Action: withAppState(func(c *cli.Context, as *utils.AppState) error {
			d, err := draftFromFlags(c, as)
			if err != nil {
				return err
			}
			if description := c.String("description"); description != "" {
				d.Description = description
			}
			if color := c.String("color"); color != "" {
				d.ThemeColor = color
			}
			for _, slot := range c.StringSlice("agenda") {
				at, activity, _ := strings.Cut(slot, "=")
				d.Agenda = append(d.Agenda, model.NewAgendaItem(strings.TrimSpace(at), strings.TrimSpace(activity)))
			}

			session := draft.NewSession(d, as.Suggester)
			switch {
			case !c.Bool("suggest"):
			case !as.Suggester.Available():
				slog.Warn("skipping AI suggestions", "error", suggest.ErrMissingCredential)
			default:
				tagline, err := session.AutoGenerate(c.Context)
				if err != nil {
					return err
				}
				slog.Info("suggestions applied", "tagline", tagline)
			}

			event, err := session.Save(c.Context, as.Store)
			if err := warnIfNotPersisted(err); err != nil {
				return err
			}
			return printJSON(event)
		}),
	}
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Print AI suggestions for an event without saving anything.",
		Flags: draftFlags(),
		Action: withAppState(func(c *cli.Context, as *utils.AppState) error {
			d, err := draftFromFlags(c, as)
			if err != nil {
				return err
			}
			if err := d.Ready(); err != nil {
				return fmt.Errorf("please provide at least a title and date: %w", err)
			}
			if !as.Suggester.Available() {
				return suggest.ErrMissingCredential
			}
			suggestion, err := as.Suggester.GenerateSuggestions(c.Context, suggest.Input{
				Title:    d.Title,
				Type:     d.Type,
				Date:     d.Date,
				Location: d.Location,
			})
			if err != nil {
				return err
			}
			return printJSON(suggestion)
		}),
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API and Prometheus metrics.",
		Action: withAppState(func(c *cli.Context, as *utils.AppState) error {
			muxer := http.NewServeMux()
			route.Events(muxer, as)
			route.Metrics(muxer, as)
			server := &http.Server{
				Addr:    ":" + as.Config.GetPort(),
				Handler: route.LogMiddleware(muxer),
			}

			ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort(), "events", as.Store.Len(), "ai_suggestions", as.Suggester.Available())
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("cannot start HTTP server: %w", err)
				}
			case <-ctx.Done():
			}

			slog.Info("gracefully shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}),
	}
}
