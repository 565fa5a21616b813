// Command hashpw prints the bcrypt hash of a password, for provisioning
// the ADMIN_PASSWORD_HASH environment variable.
//
//	hashpw <password>
//
// The cost is read from BCRYPT_COST and falls back to the bcrypt default.
package main

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/hotel-booking/internal/utils"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpw <password>")
		os.Exit(2)
	}
	cost := bcrypt.DefaultCost
	if v := os.Getenv("BCRYPT_COST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < bcrypt.MinCost || n > bcrypt.MaxCost {
			fmt.Fprintf(os.Stderr, "invalid BCRYPT_COST: %q\n", v)
			os.Exit(2)
		}
		cost = n
	}
	hash, err := utils.HashPassword(os.Args[1], cost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
