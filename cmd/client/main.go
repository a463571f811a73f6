/*
Package main is the interactive console client for the Weatherline server.

It dials the server, drives the line protocol from the terminal, and prints
the server's responses: the admin flow uploads weather batch files, the user
flow sets a location and queries weather through the menu.
*/
package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"weatherline/internal/app/protocol"
)

func main() {
	addr := os.Getenv("WX_SERVER_ADDR")
	if addr == "" {
		addr = "localhost:6543"
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to %s: %v\n", addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("Connected to the server.")

	stdin := newConsole()
	writer := protocol.NewWriter(conn)
	reader := protocol.NewReader(conn)

	role := strings.ToLower(stdin.prompt("Select role (admin/user): "))
	switch role {
	case protocol.RoleAdmin:
		runAdmin(stdin, reader, writer)
	case protocol.RoleUser:
		runUser(stdin, reader, writer)
	default:
		fmt.Println("Invalid role selected. Exiting.")
	}
}

// runAdmin loops uploading batch files until the server reports success or exit.
func runAdmin(stdin *console, reader *protocol.Reader, writer *protocol.Writer) {
	first := true
	for {
		path := stdin.prompt("Enter the path to the JSON file to upload (or type 'exit' to quit): ")

		msg := &protocol.Message{FilePath: &path}
		if first {
			role := protocol.RoleAdmin
			msg.Role = &role
			first = false
		}
		if err := writer.WriteMessage(msg); err != nil {
			fmt.Println("Connection closed or error occurred:", err)
			return
		}

		resp, err := reader.ReadMessage()
		if err != nil {
			printReadError(err)
			return
		}
		printResponse(resp)

		if resp.Text != nil && (*resp.Text == protocol.TextUploadSuccess || *resp.Text == protocol.TextExiting) {
			return
		}
		if resp.Error != nil {
			// The server follows an upload failure with a re-prompt line.
			if reprompt, err := reader.ReadMessage(); err == nil {
				printResponse(reprompt)
			}
		}
	}
}

// runUser registers a username, then answers the server's prompts: first the
// location setup, afterwards the numbered options menu.
func runUser(stdin *console, reader *protocol.Reader, writer *protocol.Writer) {
	username := stdin.prompt("Enter your username: ")

	role := protocol.RoleUser
	if err := writer.WriteMessage(&protocol.Message{Role: &role, Username: &username}); err != nil {
		fmt.Println("Connection closed or error occurred:", err)
		return
	}

	for {
		resp, err := reader.ReadMessage()
		if err != nil {
			printReadError(err)
			return
		}
		printResponse(resp)

		var req *protocol.Message
		switch {
		case resp.Header != nil && *resp.Header == protocol.HeaderSetLocation:
			location := stdin.prompt("")
			req = &protocol.Message{CurrentLocation: &location}

		case resp.Option1 != nil && resp.Option2 != nil:
			req = menuChoice(stdin)
			if req == nil {
				return
			}

		default:
			// Informational line (greeting, weather report, error); the next
			// server prompt decides what to send.
			continue
		}

		if err := writer.WriteMessage(req); err != nil {
			fmt.Println("Connection closed or error occurred:", err)
			return
		}
		if req.Type != nil && *req.Type == protocol.TypeDisconnect {
			fmt.Println("Disconnected from server.")
			return
		}
	}
}

// menuChoice turns a numeric console option into a menu request. It returns
// the disconnect request for option 3 and loops until the input is valid.
func menuChoice(stdin *console) *protocol.Message {
	for {
		switch stdin.prompt("") {
		case "1":
			typ := protocol.TypeGetWeather
			return &protocol.Message{Type: &typ}
		case "2":
			location := stdin.prompt("Enter your new current location: ")
			typ := protocol.TypeUpdateLocation
			return &protocol.Message{Type: &typ, CurrentLocation: &location}
		case "3":
			typ := protocol.TypeDisconnect
			return &protocol.Message{Type: &typ}
		default:
			fmt.Println("Invalid option. Please try again.")
		}
	}
}

// printResponse renders a server message on the console, field by field.
func printResponse(msg *protocol.Message) {
	if msg.Header != nil {
		fmt.Printf("\n=== %s ===\n", *msg.Header)
	}
	if msg.Text != nil {
		fmt.Println("Message:", *msg.Text)
	}
	if msg.Error != nil {
		fmt.Println("Error:", *msg.Error)
	}
	if msg.Location != nil {
		fmt.Println("Location:", *msg.Location)
	}
	if msg.CurrentWeather != nil {
		fmt.Println("Current Weather:", *msg.CurrentWeather)
	}
	if msg.CurrentTemperature != nil {
		fmt.Printf("Current temperature: %.1f°C\n", *msg.CurrentTemperature)
	}
	if msg.Forecast != nil {
		printForecast(msg.Forecast)
	}
	if msg.Option1 != nil && msg.Option2 != nil {
		fmt.Println(*msg.Option1)
		fmt.Println(*msg.Option2)
		fmt.Println("3. Exit")
	}
}

// printForecast renders the forecast field, which is either an array of
// forecast entries or a placeholder string.
func printForecast(forecast any) {
	entries, ok := forecast.([]any)
	if !ok {
		if placeholder, ok := forecast.(string); ok {
			fmt.Println(placeholder)
		} else {
			fmt.Println("No forecast available or the format is incorrect.")
		}
		return
	}

	fmt.Println("Forecast:")
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		weather, _ := fields["weather"].(string)
		temperature, _ := fields["temperature"].(float64)
		fmt.Printf("- %s, %.1f°C\n", weather, temperature)
	}
}

func printReadError(err error) {
	if errors.Is(err, protocol.ErrPeerClosed) {
		fmt.Println("Connection closed.")
		return
	}
	fmt.Println("Connection closed or error occurred:", err)
}
