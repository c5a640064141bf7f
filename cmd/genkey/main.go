package main

import (
	"fmt"

	"github.com/keyroom-chat/keyroom/internal/cipher"
)

func main() {
	key, err := cipher.GenerateKey()
	if err != nil {
		panic(err)
	}

	fmt.Printf("Session key: %s\n", key)
}
