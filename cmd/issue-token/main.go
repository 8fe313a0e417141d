// Command issue-token mints an access token for local testing and for the
// gate operators' devices.  It reads JWT_SECRET and ACCESS_TOKEN_TTL_MIN
// from the environment or a local .env file.
//
//	go run ./cmd/issue-token -account 42 -role OPERATOR
package main

import (
	"encoding/json"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/drive-in-checkout/internal/utils"
)

func main() {
	_ = godotenv.Load()

	defaultTTL := 15
	if v, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_TTL_MIN")); err == nil && v > 0 {
		defaultTTL = v
	}
	account := flag.Uint64("account", 0, "account id placed in the subject claim")
	role := flag.String("role", utils.RoleGuest, "GUEST or OPERATOR")
	ttl := flag.Int("ttl", defaultTTL, "lifetime in minutes")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}
	if *account == 0 {
		logrus.Fatal("-account is required")
	}
	r := strings.ToUpper(*role)
	if r != utils.RoleGuest && r != utils.RoleOperator {
		logrus.Fatalf("unknown role %q", *role)
	}

	tok, err := utils.NewAccessToken(secret, *account, r, *ttl)
	if err != nil {
		logrus.WithError(err).Fatal("sign token")
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tok); err != nil {
		logrus.WithError(err).Fatal("write token")
	}
}
