package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"team-hub/client"
	"team-hub/domain"
	"team-hub/domain/chat"
	"team-hub/domain/event"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"HUB_SERVER_URL,default=ws://localhost:8080/ws"`
	Token     string `env:"HUB_TOKEN,required=true"`
	ChannelID string `env:"HUB_CHANNEL_ID,required=true"`
	LogLevel  string `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the client lifecycle: configuration loading, connection with
// automatic reconnection, event rendering, and the interactive input loop.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := client.New(client.Options{
		URL:   config.ServerURL,
		Token: config.Token,
		Log:   log,
	})

	// 3. Event rendering. Membership does not survive a reconnection, so the
	// channel is (re)joined on every connection_established.
	c.On(event.TypeConnectionEstablished, func(data json.RawMessage) {
		var payload struct {
			User domain.PublicUser `json:"user"`
		}
		_ = json.Unmarshal(data, &payload)
		color.Green.Printf(">>> Connected as %s %s\n", payload.User.FirstName, payload.User.LastName)
		c.JoinChannel(config.ChannelID)
	})

	c.On(event.TypeChannelJoined, func(data json.RawMessage) {
		var payload struct {
			ChannelID string           `json:"channelId"`
			Messages  []domain.Message `json:"messages"`
		}
		_ = json.Unmarshal(data, &payload)
		color.Green.Printf(">>> Joined channel %s (%d recent messages)\n",
			payload.ChannelID, len(payload.Messages))
		// History arrives newest first; display it chronologically.
		for i := len(payload.Messages) - 1; i >= 0; i-- {
			printMessage(payload.Messages[i])
		}
	})

	c.On(event.TypeNewMessage, func(data json.RawMessage) {
		var payload struct {
			Message domain.Message `json:"message"`
		}
		_ = json.Unmarshal(data, &payload)
		printMessage(payload.Message)
	})

	c.On(event.TypeUserTyping, func(data json.RawMessage) {
		user := presenceUser(data)
		color.Gray.Printf("... %s is typing\n", user)
	})

	c.On(event.TypeUserJoined, func(data json.RawMessage) {
		color.Cyan.Printf("*** %s joined the channel\n", presenceUser(data))
	})

	c.On(event.TypeUserLeft, func(data json.RawMessage) {
		color.Cyan.Printf("*** %s left the channel\n", presenceUser(data))
	})

	c.On(event.TypeError, func(data json.RawMessage) {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &payload)
		color.Red.Printf("!!! %s\n", payload.Message)
	})

	// 4. Connect; reconnection with backoff happens inside the client.
	if err := c.Connect(ctx); err != nil {
		return exitRuntime, err
	}
	defer c.Disconnect()

	// 5. Interactive input loop: one line per message, /quit to leave.
	inputDone := make(chan struct{})
	go func() {
		defer close(inputDone)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "":
				continue
			case line == "/quit":
				return
			case line == "/leave":
				c.LeaveChannel(config.ChannelID)
			case line == "/join":
				c.JoinChannel(config.ChannelID)
			default:
				c.SendMessage(chat.SendMessageCommand{
					ChannelID: config.ChannelID,
					Content:   line,
				})
			}
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Stopping client...")
	case <-inputDone:
	}
	return exitOK, nil
}

func printMessage(msg domain.Message) {
	color.Yellow.Printf("[%s] ", msg.CreatedAt.Format(time.TimeOnly))
	color.White.Printf("%s: %s\n", msg.AuthorID, msg.Content)
}

func presenceUser(data json.RawMessage) string {
	var payload struct {
		User domain.PublicUser `json:"user"`
	}
	_ = json.Unmarshal(data, &payload)
	name := strings.TrimSpace(payload.User.FirstName + " " + payload.User.LastName)
	if name == "" {
		return payload.User.ID
	}
	return name
}
