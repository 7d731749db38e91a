package main

import (
	"fmt"
	"log"
	"os"

	"cast-deck.backend/pkg/crypto"
)

var (
	printfFn      = fmt.Printf
	generateKeyFn = crypto.GenerateRandomToken
	fatalfFn      = log.Fatalf
)

// resolveTarget picks which secret to mint; both are printed when no
// argument is given
func resolveTarget(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "all"
}

func emit(name string, bytes int) {
	key, err := generateKeyFn(bytes)
	if err != nil {
		fatalfFn("Failed to generate %s: %v", name, err)
	}
	printfFn("%s=%s\n", name, key)
}

func main() {
	switch resolveTarget(os.Args[1:]) {
	case "signer":
		emit("SIGNER_TOKEN_KEY", 32)
	case "jwt":
		emit("JWT_SECRET", 32)
	case "all":
		emit("SIGNER_TOKEN_KEY", 32)
		emit("JWT_SECRET", 32)
	default:
		fatalfFn("Unknown target %q (want signer, jwt, or no argument)", os.Args[1])
	}
}
