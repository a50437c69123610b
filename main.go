package main

import "github.com/zalogw/gateway/cmd"

func main() {
	cmd.Execute()
}
