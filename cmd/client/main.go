package main

import (
	"bufio"
	"chat-relay/client"
	"chat-relay/domain"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=http://localhost:8080"`
	RoomID    int64  `env:"CHAT_ROOM_ID,default=1"`
	Token     string `env:"CHAT_TOKEN,required=true"`
	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

// run prints every message of one room and sends each line typed on stdin.
func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	roomID := domain.RoomID(config.RoomID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, err := client.New(config.ServerURL, config.Token).Connect(ctx)
	if err != nil {
		return exitRuntime, err
	}
	if err := stream.Subscribe(roomID); err != nil {
		_ = stream.Close()
		return exitRuntime, err
	}
	log.Info("Connected, type a line to send it (Ctrl+C to quit)", "server", config.ServerURL, "room", roomID)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := stream.Send(roomID, scanner.Text()); err != nil {
				log.Error("Send failed", "error", err)
				stop()
				return
			}
		}
	}()

	go func() {
		<-ctx.Done()
		_ = stream.Close()
	}()

	for {
		frame, err := stream.Next(0)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return exitRuntime, fmt.Errorf("stream error: %w", err)
		}
		switch frame.Type {
		case domain.FrameMessage:
			fmt.Printf("[%s] %s: %s\n", frame.CreatedAt.Local().Format(time.TimeOnly), frame.SenderName, frame.Message)
		case domain.FrameError:
			log.Warn("Rejected", "code", frame.Code, "message", frame.Message)
		}
	}
	log.Info("Stopping client...")
	return exitOK, nil
}
