package main

import "github.com/magic-lib/go-plat-redisbloom/cmd/redisbloom/cmd"

func main() {
	cmd.Execute()
}
