package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"github.com/sarankoundinya2000/alfie/internal/assistant"
	"github.com/sarankoundinya2000/alfie/internal/attendee"
	"github.com/sarankoundinya2000/alfie/internal/booking"
	"github.com/sarankoundinya2000/alfie/internal/caldav"
	"github.com/sarankoundinya2000/alfie/internal/clock"
	"github.com/sarankoundinya2000/alfie/internal/conflict"
	"github.com/sarankoundinya2000/alfie/internal/google"
	"github.com/sarankoundinya2000/alfie/internal/intent"
	"github.com/sarankoundinya2000/alfie/internal/llm"
	"github.com/sarankoundinya2000/alfie/internal/models"
	"github.com/sarankoundinya2000/alfie/internal/notify"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "alfie",
		Usage: "Schedule meetings and list calendar events with natural language.",
		Commands: []*cli.Command{
			authCommand(),
			askCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account to get an API token.",
		Action: func(c *cli.Context) error {
			logger := setupLogger("info")
			logger.Info("Starting Google authentication flow.")

			config, err := google.GetOAuthConfigForAuthFlow(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			reader := bufio.NewReader(os.Stdin)
			authCode := promptLine(reader, "Enter Authorization Code: ")

			token, err := google.TokenFromWeb(config, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			accountName := promptLine(reader, "Enter a name for this account (e.g., 'personal', 'work'): ")
			tokenFile := "token-" + accountName + ".json"

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Handle one scheduling request, e.g. \"Book a meeting with Aaron at 2pm tomorrow\".",
		ArgsUsage: "<utterance>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "account", Usage: "Name of the authenticated Google account to use."},
		},
		Action: func(c *cli.Context) error {
			utterance := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if utterance == "" {
				return fmt.Errorf("no request given. Usage: alfie ask \"Book a meeting with Aaron at 2pm tomorrow\"")
			}

			logLevel := os.Getenv("LOG_LEVEL")
			if logLevel == "" {
				logLevel = "info"
			}
			logger := setupLogger(logLevel)

			tzStr := os.Getenv("PRIMARY_TIMEZONE")
			if tzStr == "" {
				tzStr = clock.DefaultZoneName
			}
			zone, err := time.LoadLocation(tzStr)
			if err != nil {
				return fmt.Errorf("invalid timezone '%s': %w", tzStr, err)
			}

			accountName := c.String("account")
			if accountName == "" {
				accounts, err := google.GetTokenAccounts()
				if err != nil || len(accounts) == 0 {
					return fmt.Errorf("no google accounts found. Run the 'auth' command first")
				}
				accountName = accounts[0]
			}

			ctx := c.Context
			httpClient, err := google.NewHTTPClient(ctx, os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"), accountName)
			if err != nil {
				return fmt.Errorf("failed to create google client for account %s: %w", accountName, err)
			}

			calClient, err := google.NewCalendarClient(ctx, logger, httpClient)
			if err != nil {
				return fmt.Errorf("failed to create calendar client: %w", err)
			}
			peopleClient, err := google.NewPeopleClient(ctx, logger, httpClient)
			if err != nil {
				return fmt.Errorf("failed to create people client: %w", err)
			}

			userEmail, err := google.UserEmail(ctx, httpClient)
			if err != nil {
				return fmt.Errorf("failed to identify authenticated account: %w", err)
			}

			llmClient := llm.New(llm.Config{
				APIKey:  os.Getenv("GROQ_API_KEY"),
				BaseURL: os.Getenv("LLM_BASE_URL"),
				Model:   os.Getenv("LLM_MODEL"),
			}, logger)

			eventSource := conflict.EventSource(calClient)
			if os.Getenv("ICLOUD_USERNAME") != "" {
				caldavClient, err := caldav.NewClient(logger,
					os.Getenv("CALDAV_ENDPOINT"),
					os.Getenv("ICLOUD_USERNAME"),
					os.Getenv("ICLOUD_APP_SPECIFIC_PASSWORD"),
					os.Getenv("ICLOUD_CALENDAR_NAME"))
				if err != nil {
					return fmt.Errorf("failed to create caldav client: %w", err)
				}
				eventSource = conflict.MultiSource{calClient, caldavClient}
			}

			checker := conflict.NewChecker(eventSource, zone, logger)
			resolver := attendee.NewResolver(peopleClient, calClient, logger)
			booker := booking.NewOrchestrator(checker, calClient, zone, logger)

			var notifier assistant.Notifier
			if os.Getenv("SMTP_HOST") != "" {
				port := 587
				if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil {
					port = p
				}
				from := os.Getenv("SMTP_FROM")
				if from == "" {
					from = os.Getenv("SMTP_USERNAME")
				}
				notifier = notify.NewMailer(notify.Config{
					Host:     os.Getenv("SMTP_HOST"),
					Port:     port,
					Username: os.Getenv("SMTP_USERNAME"),
					Password: os.Getenv("SMTP_PASSWORD"),
					From:     from,
				}, logger)
			}

			a := assistant.New(intent.NewExtractor(llmClient, logger), resolver, checker, booker, notifier, logger)
			sess := assistant.Session{UserEmail: userEmail, Today: time.Now().In(zone)}

			return ask(ctx, a, sess, utterance)
		},
	}
}

// ask runs one utterance through the pipeline, prompting on stdin whenever
// attendee resolution needs a human choice.
func ask(ctx context.Context, a *assistant.Assistant, sess assistant.Session, utterance string) error {
	mi, err := a.Interpret(ctx, sess, utterance)
	if err != nil {
		return err
	}

	if mi.Kind == models.IntentEventsQuery {
		title, events, err := a.ListEvents(ctx, mi)
		if err != nil {
			return err
		}
		printEvents(title, mi.Date, events)
		return nil
	}

	fmt.Println("Meeting details:")
	fmt.Printf("  Date: %s\n  Time: %s\n  Summary: %s\n", mi.Date, mi.Time, mi.Summary)

	var emails []string
	if mi.ExplicitEmail != "" {
		emails = []string{mi.ExplicitEmail}
	} else {
		if len(mi.PersonNames) == 0 {
			return fmt.Errorf("no attendee could be determined from the request")
		}
		reader := bufio.NewReader(os.Stdin)
		for _, res := range a.ResolveAttendees(ctx, mi) {
			email, err := collectEmail(reader, res)
			if err != nil {
				return err
			}
			emails = append(emails, email)
		}
	}

	result := a.Book(ctx, sess, mi, emails)
	printBookingResult(result)
	return nil
}

// collectEmail turns one attendee resolution into a committed email,
// prompting the user when the resolver paused for disambiguation or found
// nobody.
func collectEmail(reader *bufio.Reader, res assistant.Resolution) (string, error) {
	if res.Resolved() {
		fmt.Printf("Resolved %s to %s\n", res.Name, res.Email)
		return res.Email, nil
	}

	if len(res.Candidates) > 0 {
		fmt.Printf("Multiple contacts found for %q:\n", res.Name)
		for i, c := range res.Candidates {
			switch c.Source {
			case models.SourceCalendarHistory:
				fmt.Printf("  %d. %s (%s) - %d meetings\n", i+1, c.Name, c.Email, c.MeetingCount)
			default:
				fmt.Printf("  %d. %s (%s) - %s\n", i+1, c.Name, c.Email, c.Source)
			}
		}
		for {
			answer := promptLine(reader, fmt.Sprintf("Select contact for %s [1-%d]: ", res.Name, len(res.Candidates)))
			n, err := strconv.Atoi(answer)
			if err == nil && n >= 1 && n <= len(res.Candidates) {
				return res.Candidates[n-1].Email, nil
			}
			fmt.Println("Please enter a number from the list.")
		}
	}

	// Nothing matched: a manual email is required. Booking never proceeds
	// with a made-up address.
	email := promptLine(reader, fmt.Sprintf("No contact found for %s. Please enter an email: ", res.Name))
	if !strings.Contains(email, "@") {
		return "", fmt.Errorf("cannot book without a valid email for %s", res.Name)
	}
	return email, nil
}

func printEvents(title, date string, events []models.CalendarEvent) {
	if len(events) == 0 {
		fmt.Printf("No events found for %s\n", date)
		return
	}
	fmt.Println(title)
	for _, ev := range events {
		fmt.Printf("  %s - %s\n", ev.Time, ev.Summary)
		for _, a := range ev.Attendees {
			name := a.Name
			if name == "" {
				name = "No name"
			}
			fmt.Printf("    %s (%s)\n", name, a.Email)
		}
		if ev.MeetLink != "" {
			fmt.Printf("    Meet: %s\n", ev.MeetLink)
		}
	}
}

func printBookingResult(result models.BookingResult) {
	switch result.Status {
	case models.BookingBooked:
		fmt.Println(result.Confirmation)
		if result.MeetLink != "" {
			fmt.Printf("Meeting Link: %s\n", result.MeetLink)
		}
	case models.BookingConflict:
		fmt.Println("There is already a meeting scheduled at this time:")
		fmt.Printf("  Time: %s\n  Meeting: %s\n  Attendees: %s\n",
			result.Conflict.Time, result.Conflict.Summary, strings.Join(result.Conflict.Attendees, ", "))
		fmt.Println("Please choose a different time.")
	case models.BookingInvalidTime:
		fmt.Println(result.Reason)
	default:
		fmt.Printf("Booking failed: %s\n", result.Reason)
	}
}

func promptLine(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
