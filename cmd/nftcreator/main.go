package main

import "github.com/onchainnft/nftcreator/cmd/nftcreator/cmd"

func main() {
	cmd.Execute()
}
