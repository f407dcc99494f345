package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"chat-sync/auth"
	"chat-sync/client"
	"chat-sync/contract"
	"chat-sync/domain"
	"chat-sync/presence"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `envconfig:"SERVER_URL" default:"http://localhost:8080"`
	RelayURL  string `envconfig:"RELAY_URL" default:"ws://localhost:8080/ws"`
	Room      string `envconfig:"ROOM"`
	Name      string `envconfig:"NAME" required:"true"`
	Password  string `envconfig:"PASSWORD" required:"true"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Load configuration from environment variables.
	var config Config
	if err := envconfig.Process("chat", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Authenticate: login, or register on first run.
	rest := client.NewRestClient(config.ServerURL)
	user, token, err := rest.Login(ctx, config.Name, config.Password)
	if err != nil {
		user, token, err = rest.Register(ctx, auth.RegisterRequest{
			Name:     config.Name,
			Password: config.Password,
		})
		if err != nil {
			return exitRuntime, fmt.Errorf("authentication failed: %w", err)
		}
	}
	rest.SetToken(token)

	session := auth.NewSession()
	session.Authenticate(user, token)
	self, status := session.CurrentUser()
	if status != contract.StatusAuthenticated {
		return exitRuntime, fmt.Errorf("not authenticated")
	}

	// 3. Pick a room, creating a default one when none exists yet.
	rooms, err := rest.ListRooms(ctx)
	if err != nil {
		return exitRuntime, fmt.Errorf("listing rooms failed: %w", err)
	}
	if len(rooms) == 0 {
		room, err := rest.CreateRoom(ctx, "general", "default room")
		if err != nil {
			return exitRuntime, fmt.Errorf("creating default room failed: %w", err)
		}
		rooms = append(rooms, room)
	}
	printRooms(rooms)

	roomID := domain.RoomID(config.Room)
	if roomID == "" {
		roomID = rooms[0].ID
	}
	room, err := rest.GetRoom(ctx, roomID)
	if err != nil {
		return exitRuntime, fmt.Errorf("room lookup failed: %w", err)
	}
	color.Green.Printf(">>> Joined %q as %s (Ctrl+C to quit)\n", room.Name, self.DisplayName)

	// 4. Start the sync coordinator for the room view.
	linkCfg := client.DefaultLinkConfig()
	linkCfg.URL = config.RelayURL
	linkCfg.Token = token
	link := client.NewLink(linkCfg, room.ID, log)
	coordinator := client.NewCoordinator(log, room.ID, self, link, rest, rest, presence.DefaultTTL)
	go coordinator.Run(ctx)

	// 5. Stdin loop: each line is a message submission. The Enter key that
	// submits never emits a typing event.
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()
	printed := 0

	for {
		select {
		case <-ctx.Done():
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			if line == "" {
				continue
			}
			if err := coordinator.SubmitMessage(ctx, line); err != nil {
				color.Red.Printf("send failed, message kept: %v\n", err)
			}
		case <-ticker.C:
			printed = render(coordinator, self, printed)
		}
	}
}

// render prints messages not yet shown plus the current typing line.
func render(c *client.Coordinator, self domain.User, printed int) int {
	messages, flags := c.Messages()
	for i := printed; i < len(messages); i++ {
		m := messages[i]
		if flags[i].ShowHeader {
			color.Gray.Printf("--- %s ---\n", m.SentAt.Local().Format(time.Stamp))
		}
		if m.SenderID == self.ID {
			color.Cyan.Printf("%s: %s\n", m.Sender.DisplayName, m.Content)
		} else {
			color.Yellow.Printf("%s: %s\n", m.Sender.DisplayName, m.Content)
		}
	}

	typing := c.TypingUsers()
	if len(typing) > 0 {
		names := lo.Map(typing, func(e presence.TypingEntry, _ int) string {
			return e.User.DisplayName
		})
		color.Gray.Printf("… typing: %v\n", names)
	}
	return len(messages)
}

func printRooms(rooms []domain.Room) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Description", "Created"})
	for _, room := range rooms {
		table.Append([]string{
			string(room.ID),
			room.Name,
			room.Description,
			room.CreatedAt.Local().Format(time.DateOnly),
		})
	}
	table.Render()
}
