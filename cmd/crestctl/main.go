package main

import "github.com/crestapp/crest-go/cmd/crestctl/cmd"

func main() {
	cmd.Execute()
}
