package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"contentbot/monitor"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("url", "http://localhost:3000", "Content bot server URL")
	flag.Parse()

	program := tea.NewProgram(monitor.NewModel(*serverURL))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
