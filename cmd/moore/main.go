package main

import "github.com/MeKo-Tech/moore/cmd/moore/cmd"

func main() {
	cmd.Execute()
}
