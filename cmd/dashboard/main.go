package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"

	"github.com/arjun/auth-dashboard/internal/client/api"
	"github.com/arjun/auth-dashboard/internal/client/cli"
	"github.com/arjun/auth-dashboard/internal/client/session"
)

func main() {
	serverURL := flag.String("server", "http://localhost:5000", "auth service base URL")
	stateFile := flag.String("state", defaultStatePath(), "session state file")
	flag.Parse()

	client := api.New(*serverURL)
	storage := session.NewFileStorage(*stateFile)
	mgr := session.NewManager(client, storage)
	client.OnUnauthenticated(mgr.HandleUnauthenticated)

	app := cli.NewApp(mgr, os.Stdin, os.Stdout)
	app.Run(context.Background())
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".auth-dashboard-session.json"
	}
	return filepath.Join(dir, "auth-dashboard", "session.json")
}
