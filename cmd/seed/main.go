// Seed creates a demo team with one channel and two accounts, then prints
// the tokens to use with the chat client.
package main

import (
	"fmt"
	"os"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"team-hub/auth"
	"team-hub/internal"
	"team-hub/repositories"
	"team-hub/services"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type account struct {
	email     string
	firstName string
	lastName  string
	password  string
}

var demoAccounts = []account{
	{email: "alice@team-hub.dev", firstName: "Alice", lastName: "Martin", password: "CorrectHorse#42!"},
	{email: "bob@team-hub.dev", firstName: "Bob", lastName: "Durand", password: "CorrectHorse#42!"},
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer db.Close()

	userRepository := repositories.NewUserRepository(db)
	channelRepository := repositories.NewChannelRepository(db)
	tokens := auth.NewTokenService(config.JWTSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(userRepository, tokens)

	team, err := channelRepository.CreateTeam("Demo Team")
	if err != nil {
		return exitRuntime, fmt.Errorf("team creation failed: %w", err)
	}
	channel, err := channelRepository.CreateChannel(team.ID, "general")
	if err != nil {
		return exitRuntime, fmt.Errorf("channel creation failed: %w", err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Email", "User ID", "Token"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, acc := range demoAccounts {
		token, err := authService.Register(acc.email, acc.password, acc.firstName, acc.lastName)
		if err != nil {
			return exitRuntime, fmt.Errorf("registering %s failed: %w", acc.email, err)
		}
		user, err := userRepository.GetUserByEmail(acc.email)
		if err != nil {
			return exitRuntime, err
		}
		if err := channelRepository.AddTeamMember(team.ID, user.ID); err != nil {
			return exitRuntime, fmt.Errorf("adding %s to team failed: %w", acc.email, err)
		}
		table.Append([]string{acc.email, user.ID, string(token)})
	}

	fmt.Printf("Team %q (%s)\nChannel %q (%s)\n\n", team.Name, team.ID, channel.Name, channel.ID)
	table.Render()
	fmt.Printf("\nexport HUB_CHANNEL_ID=%s\n", channel.ID)

	return exitOK, nil
}
