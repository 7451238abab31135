// Command useradd provisions or updates a user row in the permission table.
// The app has no self-service registration; operators are added here.
//
//	useradd -secrets /etc/waterapp/secrets.yaml \
//	    -email ops@example.com -name "Sam Field" \
//	    -role "Process Controller" -facilities "Plant A,Plant B" \
//	    -password s3cret
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Garnistarr/water-data-app/internal/auth"
	"github.com/Garnistarr/water-data-app/internal/config"
	"github.com/Garnistarr/water-data-app/internal/directory"
	"github.com/Garnistarr/water-data-app/internal/store"
)

func main() {
	var (
		secretsPath = flag.String("secrets", "/etc/waterapp/secrets.yaml", "path to the secrets file")
		email       = flag.String("email", "", "user email (login key, case-insensitive)")
		name        = flag.String("name", "", "display name")
		role        = flag.String("role", directory.RoleProcessController, "role: Process Controller or Manager")
		facilities  = flag.String("facilities", "", "comma-delimited assigned facility names")
		password    = flag.String("password", "", "plaintext password to hash")
	)
	flag.Parse()

	if strings.TrimSpace(*email) == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *role != directory.RoleProcessController && *role != directory.RoleManager {
		log.Fatalf("unknown role %q", *role)
	}

	sec, err := config.ReadSecrets(*secretsPath)
	if err != nil {
		log.Fatalf("read secrets: %v", err)
	}
	st, err := store.Open(sec.StoreDriver, sec.StoreDSN)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer func() { _ = st.Close() }()

	digest, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	displayName := strings.TrimSpace(*name)
	if displayName == "" {
		displayName = strings.TrimSpace(*email)
	}

	err = st.UpsertUser(context.Background(), store.UserRow{
		Email:          strings.TrimSpace(*email),
		Name:           displayName,
		PasswordDigest: digest,
		Role:           *role,
		FacilitiesRaw:  strings.TrimSpace(*facilities),
	})
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}
	fmt.Printf("user %s saved\n", directory.NormalizeEmail(*email))
}
