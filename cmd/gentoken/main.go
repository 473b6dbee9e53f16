// Command gentoken prints an API token acting for a chat user id, for
// driving the HTTP event endpoints without a chat client.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rohits-web03/sitedrop/internal/api/middleware"
	"github.com/rohits-web03/sitedrop/internal/config"
)

func main() {
	cfg := config.Load()

	userID := flag.Int64("user", 0, "chat user id the token acts for")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	secret := flag.String("secret", cfg.JWTSecret, "signing secret (defaults to JWT_SECRET)")
	flag.Parse()

	if *userID == 0 {
		fmt.Fprintln(os.Stderr, "usage: gentoken -user <id> [-ttl 24h] [-secret s]")
		os.Exit(2)
	}

	token, err := middleware.IssueToken(*secret, *userID, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to issue token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
