package main

import "github.com/surge-downloader/halo/cmd"

func main() {
	cmd.Execute()
}
